package vfs

import (
	"fmt"
	"io"
)

func DirectoryGetFile(d Directory, name string) (File, error) {
	e, err := d.GetElement(name)
	if err != nil {
		return nil, err
	}
	f, ok := e.(File)
	if !ok {
		return nil, fmt.Errorf("'%s' is a directory", name)
	}
	return f, nil
}

func OpenFileAndGetReader(f File) (*io.SectionReader, error) {
	if err := f.Open(); err != nil {
		return nil, fmt.Errorf("Cannot open file '%s': %v", f.Name(), err)
	}
	r, err := f.Reader()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("Cannot get file '%s' reader: %v", f.Name(), err)
	}
	return r, nil
}

// ReadFile opens, reads and closes the named file
func ReadFile(d Directory, name string) ([]byte, error) {
	f, err := DirectoryGetFile(d, name)
	if err != nil {
		return nil, err
	}
	r, err := OpenFileAndGetReader(f)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, r.Size())
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("Cannot read file '%s': %v", name, err)
	}
	return data, nil
}
