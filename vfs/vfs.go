package vfs

import (
	"io"
)

// must contain only metadata (filename) until Open is called
type Element interface {
	Name() string
	IsDirectory() bool
}

type File interface {
	Element
	Size() int64
	Open() error
	Close() error
	Reader() (*io.SectionReader, error)
	ModTime() int64
}

type Directory interface {
	Element
	List() ([]string, error)
	GetElement(name string) (Element, error)
}

// NotFoundError is returned by GetElement when the name does not exist
type NotFoundError struct {
	Dir  string
	Name string
}

func (e *NotFoundError) Error() string {
	return "'" + e.Name + "' not found in '" + e.Dir + "'"
}

func (e *NotFoundError) Kind() string { return "NotFoundError" }
