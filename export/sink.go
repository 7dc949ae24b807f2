// Package export writes assembled timelines to files.
package export

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/merge"
)

// Sink consumes a finished timeline. Keyframes are read through
// Timeline.RotationTrack and Timeline.TranslationTrack.
type Sink interface {
	WriteTimeline(w io.Writer, t *merge.Timeline) error
}

type SinkFunc func(w io.Writer, t *merge.Timeline) error

func (f SinkFunc) WriteTimeline(w io.Writer, t *merge.Timeline) error {
	return f(w, t)
}

var sinks = map[string]Sink{
	"glb":  &GLTFSink{Binary: true},
	"gltf": &GLTFSink{},
	"json": SinkFunc(WriteJSON),
	"an":   SinkFunc(WriteClip),
	"fbx":  FBXSink{},
}

func Formats() []string {
	result := make([]string, 0, len(sinks))
	for name := range sinks {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func Lookup(format string) (Sink, error) {
	if s, ok := sinks[strings.ToLower(format)]; ok {
		return s, nil
	}
	return nil, errors.Errorf("Unknown export format %q, expected one of %v", format, Formats())
}

// FormatFromFileName guesses the format by extension, glb by default
func FormatFromFileName(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := sinks[ext]; ok {
		return ext
	}
	return "glb"
}

// ContentType for http downloads
func ContentType(format string) string {
	switch format {
	case "glb":
		return "model/gltf-binary"
	case "gltf":
		return "model/gltf+json"
	case "json":
		return "application/json"
	}
	return "application/octet-stream"
}
