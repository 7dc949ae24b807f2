package merge

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/an"
	"github.com/mogaika/anmerge/vfs"
)

type ClipStore interface {
	Clip(name string) (*an.Clip, error)
}

// DirStore parses clips from a directory on first use and keeps them for
// its own lifetime
type DirStore struct {
	dir   vfs.Directory
	mu    sync.Mutex
	clips map[string]*an.Clip
}

func NewDirStore(dir vfs.Directory) *DirStore {
	return &DirStore{
		dir:   dir,
		clips: make(map[string]*an.Clip),
	}
}

func (s *DirStore) Clip(name string) (*an.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clips[name]; ok {
		return c, nil
	}

	data, err := vfs.ReadFile(s.dir, name)
	if err != nil {
		return nil, &MissingAssetError{File: name, Err: err}
	}
	c, err := an.NewFromData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "clip %q", name)
	}
	c.Name = name
	s.clips[name] = c
	return c, nil
}

func (s *DirStore) Dir() vfs.Directory { return s.dir }
