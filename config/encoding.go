package config

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// .ani descriptors are written by the russian tool chain
var currentCharMap *charmap.Charmap = charmap.Windows1251

func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}

// TextReader decodes descriptor text into utf-8
func TextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, currentCharMap.NewDecoder())
}

// TextWriter encodes utf-8 back into the descriptor encoding.
// Close flushes, it does not close w.
func TextWriter(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, currentCharMap.NewEncoder())
}
