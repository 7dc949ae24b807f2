package vfs

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryDirectory keeps files in memory. Used for uploads and tests.
type MemoryDirectory struct {
	name  string
	lock  sync.RWMutex
	files map[string]*memoryFileData
}

type memoryFileData struct {
	data    []byte
	version int64
}

func NewMemoryDirectory(name string) *MemoryDirectory {
	return &MemoryDirectory{name: name, files: make(map[string]*memoryFileData)}
}

func (md *MemoryDirectory) Name() string      { return md.name }
func (md *MemoryDirectory) IsDirectory() bool { return true }

func (md *MemoryDirectory) Put(name string, data []byte) {
	md.lock.Lock()
	defer md.lock.Unlock()
	if old, ok := md.files[name]; ok {
		md.files[name] = &memoryFileData{data: data, version: old.version + 1}
	} else {
		md.files[name] = &memoryFileData{data: data}
	}
}

func (md *MemoryDirectory) List() ([]string, error) {
	md.lock.RLock()
	defer md.lock.RUnlock()
	result := make([]string, 0, len(md.files))
	for name := range md.files {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

func (md *MemoryDirectory) GetElement(name string) (Element, error) {
	md.lock.RLock()
	defer md.lock.RUnlock()
	fd, ok := md.files[name]
	if !ok {
		return nil, &NotFoundError{Dir: md.name, Name: name}
	}
	return &memoryFile{name: name, fd: fd}, nil
}

type memoryFile struct {
	name   string
	fd     *memoryFileData
	opened bool
}

func (mf *memoryFile) Name() string      { return mf.name }
func (mf *memoryFile) IsDirectory() bool { return false }
func (mf *memoryFile) Size() int64       { return int64(len(mf.fd.data)) }
func (mf *memoryFile) ModTime() int64    { return mf.fd.version }

func (mf *memoryFile) Open() error {
	if mf.opened {
		return fmt.Errorf("File already opened")
	}
	mf.opened = true
	return nil
}

func (mf *memoryFile) Close() error {
	mf.opened = false
	return nil
}

func (mf *memoryFile) Reader() (*io.SectionReader, error) {
	if !mf.opened {
		return nil, fmt.Errorf("First you need to open file")
	}
	return io.NewSectionReader(bytes.NewReader(mf.fd.data), 0, mf.Size()), nil
}
