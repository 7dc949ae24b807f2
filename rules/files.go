package rules

import (
	"os"

	"github.com/pkg/errors"
)

// LoadFiles returns the builtin registry with every file merged over it in order
func LoadFiles(paths ...string) (*Registry, error) {
	r := Builtin()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to open rules")
		}
		err = r.LoadYAML(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
	}
	return r, nil
}
