package export

import (
	"io"

	"github.com/mogaika/anmerge/merge"
)

// WriteClip stores the timeline back as a .an clip
func WriteClip(w io.Writer, t *merge.Timeline) error {
	_, err := w.Write(t.Clip().Marshal())
	return err
}
