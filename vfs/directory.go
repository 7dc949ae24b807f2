package vfs

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

type DirectoryDriver struct {
	path string
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) IsDirectory() bool {
	return true
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

func (dd *DirectoryDriver) List() ([]string, error) {
	entries, err := os.ReadDir(dd.path)
	if err != nil {
		return nil, fmt.Errorf("Error getting directory '%s' info: %v", dd.path, err)
	}
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Name())
	}
	sort.Strings(result)
	return result, nil
}

// insideName cleans a slash separated name. Absolute names and names that
// leave the directory are rejected.
func insideName(name string) (string, bool) {
	if path.IsAbs(name) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", false
	}
	clean := path.Clean(filepath.ToSlash(name))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

func (dd *DirectoryDriver) GetElement(name string) (Element, error) {
	clean, ok := insideName(name)
	if !ok {
		return nil, &NotFoundError{Dir: dd.path, Name: name}
	}
	newPath := filepath.Join(dd.path, filepath.FromSlash(clean))
	s, err := os.Stat(newPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Dir: dd.path, Name: name}
		}
		return nil, fmt.Errorf("Stat error: %v", err)
	}
	if s.IsDir() {
		return NewDirectoryDriver(newPath), nil
	}
	return NewDirectoryDriverFile(newPath), nil
}

type DirectoryDriverFile struct {
	path string
	f    *os.File
}

func NewDirectoryDriverFile(path string) *DirectoryDriverFile {
	return &DirectoryDriverFile{path: path}
}

func (ddf *DirectoryDriverFile) Name() string {
	return filepath.Base(ddf.path)
}

func (ddf *DirectoryDriverFile) IsDirectory() bool {
	return false
}

func (ddf *DirectoryDriverFile) Size() int64 {
	if stat, err := os.Stat(ddf.path); err != nil {
		return 0
	} else {
		return stat.Size()
	}
}

func (ddf *DirectoryDriverFile) ModTime() int64 {
	if stat, err := os.Stat(ddf.path); err != nil {
		return 0
	} else {
		return stat.ModTime().UnixNano()
	}
}

func (ddf *DirectoryDriverFile) Open() error {
	if ddf.f != nil {
		return fmt.Errorf("File already opened")
	}
	f, err := os.Open(ddf.path)
	if err != nil {
		return fmt.Errorf("os.Open('%s'): %v", ddf.path, err)
	}
	ddf.f = f
	return nil
}

func (ddf *DirectoryDriverFile) Close() error {
	if ddf.f != nil {
		if err := ddf.f.Close(); err != nil {
			return fmt.Errorf("os.File.Close(): %v", err)
		}
		ddf.f = nil
	}
	return nil
}

func (ddf *DirectoryDriverFile) Reader() (*io.SectionReader, error) {
	if ddf.f == nil {
		return nil, fmt.Errorf("First you need to open file")
	}
	return io.NewSectionReader(ddf.f, 0, ddf.Size()), nil
}
