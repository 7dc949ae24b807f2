package export

import (
	"encoding/json"
	"io"

	"github.com/mogaika/anmerge/merge"
)

type JSONBone struct {
	Bone   int        `json:"bone"`
	Parent int32      `json:"parent"`
	Rest   [3]float32 `json:"rest"`
	// flat frame, value pairs per x, y, z. Root bone only.
	Location [][]float32 `json:"location,omitempty"`
	// flat frame, value pairs per w, x, y, z
	Rotation [][]float32 `json:"rotation"`
}

type JSONTimeline struct {
	Name     string          `json:"name"`
	FPS      float32         `json:"fps"`
	Frames   int             `json:"frames"`
	Bones    []JSONBone      `json:"bones"`
	Segments []merge.Segment `json:"segments"`
}

func NewJSONTimeline(t *merge.Timeline) *JSONTimeline {
	jt := &JSONTimeline{
		Name:     t.Name,
		FPS:      t.FPS,
		Frames:   t.FrameCount,
		Bones:    make([]JSONBone, t.BoneCount()),
		Segments: t.Segments,
	}
	for bone := range jt.Bones {
		jb := &jt.Bones[bone]
		jb.Bone = bone
		jb.Parent = t.ParentIndex[bone]
		jb.Rest = t.RestPosition[bone]
		if bone == 0 {
			for c := 0; c < 3; c++ {
				jb.Location = append(jb.Location, t.TranslationTrack(c))
			}
		}
		for c := 0; c < 4; c++ {
			jb.Rotation = append(jb.Rotation, t.RotationTrack(bone, c))
		}
	}
	return jt
}

func WriteJSON(w io.Writer, t *merge.Timeline) error {
	return json.NewEncoder(w).Encode(NewJSONTimeline(t))
}
