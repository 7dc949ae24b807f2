package merge

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/anmerge/an"
)

type SegmentKind string

const (
	SegmentBase   SegmentKind = "base"
	SegmentAppend SegmentKind = "append"
	SegmentMerge  SegmentKind = "merge"
	SegmentPatch  SegmentKind = "patch"
	// two frame authoring output of the zero frame patch
	SegmentGenerate SegmentKind = "generate"
)

type Segment struct {
	Kind   SegmentKind `json:"kind"`
	Name   string      `json:"name"`
	Start  int         `json:"start"`
	Length int         `json:"length"`
}

// Timeline is a fully assembled clip. Every channel has FrameCount keys.
type Timeline struct {
	Name              string
	FPS               float32
	FrameCount        int
	ParentIndex       []int32
	RestPosition      []mgl32.Vec3
	WorldRestPosition []mgl32.Vec3
	// root offset from rest, bone 0 only
	Translation []mgl32.Vec3
	// [bone][frame]
	Rotation [][]mgl32.Quat
	Segments []Segment
}

func (t *Timeline) BoneCount() int { return len(t.Rotation) }

func quatComponent(q mgl32.Quat, c int) float32 {
	if c == 0 {
		return q.W
	}
	return q.V[c-1]
}

// RotationTrack returns flat (frame, value) pairs of one quaternion
// component, 0 is w
func (t *Timeline) RotationTrack(bone, component int) []float32 {
	track := t.Rotation[bone]
	out := make([]float32, 0, len(track)*2)
	for f, q := range track {
		out = append(out, float32(f), quatComponent(q, component))
	}
	return out
}

// TranslationTrack returns flat (frame, value) pairs of one root
// translation component
func (t *Timeline) TranslationTrack(component int) []float32 {
	out := make([]float32, 0, len(t.Translation)*2)
	for f, v := range t.Translation {
		out = append(out, float32(f), v[component])
	}
	return out
}

// Clip views the timeline as a clip. Slices are shared.
func (t *Timeline) Clip() *an.Clip {
	return &an.Clip{
		Name:              t.Name,
		FramesPerSecond:   t.FPS,
		ParentIndex:       t.ParentIndex,
		RestPosition:      t.RestPosition,
		WorldRestPosition: t.WorldRestPosition,
		RootTranslation:   t.Translation,
		JointRotation:     t.Rotation,
	}
}

// Report lists where each segment starts in the output
func (t *Timeline) Report() string {
	var b strings.Builder
	for _, s := range t.Segments {
		fmt.Fprintf(&b, "%-8s %q start: %d length: %d\n", s.Kind, s.Name, s.Start, s.Length)
	}
	return b.String()
}
