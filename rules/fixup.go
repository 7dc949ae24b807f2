package rules

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/an"
	"github.com/mogaika/anmerge/utils"
)

type FixupKind string

const (
	FixupSkirt          FixupKind = "skirt"
	FixupLegSpread      FixupKind = "leg_spread"
	FixupHairBlend      FixupKind = "hair_blend"
	FixupHairAlign      FixupKind = "hair_align"
	FixupHandStraighten FixupKind = "hand_straighten"
	FixupRestHold       FixupKind = "rest_hold"
	FixupFixedEuler     FixupKind = "fixed_euler"
	FixupRestDelta      FixupKind = "rest_delta"
)

// Env is the read-only context a fix-up sees. Source is the clip the
// candidate rotation was taken from, Target is the destination clip.
type Env struct {
	Source      *an.Clip
	SourceFrame int
	Target      *an.Clip
}

type Fixup interface {
	Kind() FixupKind
	Apply(q mgl32.Quat, env Env) (mgl32.Quat, error)
	Validate() error
}

// FixupSet is keyed by destination bone
type FixupSet map[int]Fixup

func rotation(c *an.Clip, joint, frame int) (mgl32.Quat, error) {
	if c == nil {
		return mgl32.Quat{}, errors.Errorf("no clip for joint %d", joint)
	}
	return c.Rotation(joint, frame)
}

func checkBones(bones ...int) error {
	for _, b := range bones {
		if b < 0 {
			return errors.Errorf("negative bone index %d", b)
		}
	}
	return nil
}

// stretched scales x and z, used by the skirt and hair conversions
func stretched(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{2 * q.V[0], q.V[1], 2 * q.V[2]}}
}

func degreesToRadians(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{utils.Radians(v[0]), utils.Radians(v[1]), utils.Radians(v[2])}
}

// SkirtFixup carries the swing of a leg bone over to a skirt bone, relative
// to the destination rest pose.
type SkirtFixup struct {
	Reference int `yaml:"reference"`
	Modifier  int `yaml:"modifier"`
	// "f" rests when x > 0, "b" rests when x < 0, "" never rests
	Direction string `yaml:"direction"`
	// degrees, x is scaled by the leg swing against 45°
	Offset *[3]float32 `yaml:"offset,omitempty"`
}

func (f *SkirtFixup) Kind() FixupKind { return FixupSkirt }

func (f *SkirtFixup) Validate() error {
	if f.Direction != "" && f.Direction != "f" && f.Direction != "b" {
		return errors.Errorf("direction %q is not f, b or empty", f.Direction)
	}
	return checkBones(f.Reference, f.Modifier)
}

func (f *SkirtFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	a1, err := rotation(env.Target, f.Reference, 0)
	if err != nil {
		return q, err
	}
	b1, err := rotation(env.Target, f.Modifier, 0)
	if err != nil {
		return q, err
	}

	if (q.V[0] > 0 && f.Direction == "f") || (q.V[0] < 0 && f.Direction == "b") {
		return b1, nil
	}

	b2 := utils.QuatMul(utils.QuatMul(stretched(q), utils.QuatInverted(a1)), b1)
	if f.Offset != nil {
		swing := math32.Abs(utils.QuatToEuler(q)[0]) / utils.Radians(45)
		off := degreesToRadians(*f.Offset)
		b2 = utils.QuatAddEuler(b2, mgl32.Vec3{swing * off[0], off[1], off[2]})
	}
	return b2, nil
}

// LegSpreadFixup widens or narrows the hips by the difference of the two
// legs swing in the source clip
type LegSpreadFixup struct {
	LeftLeg   int  `yaml:"left_leg"`
	LeftShin  int  `yaml:"left_shin"`
	RightLeg  int  `yaml:"right_leg"`
	RightShin int  `yaml:"right_shin"`
	Mirror    bool `yaml:"mirror"`
	// degrees
	YOffset float32 `yaml:"y_offset"`
}

func (f *LegSpreadFixup) Kind() FixupKind { return FixupLegSpread }

func (f *LegSpreadFixup) Validate() error {
	return checkBones(f.LeftLeg, f.LeftShin, f.RightLeg, f.RightShin)
}

func (f *LegSpreadFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	var angles [4]float32
	for i, bone := range [4]int{f.LeftLeg, f.LeftShin, f.RightLeg, f.RightShin} {
		r, err := rotation(env.Source, bone, env.SourceFrame)
		if err != nil {
			return q, err
		}
		angles[i] = -utils.QuatToEuler(r)[0]
	}
	left, leftShin, right, rightShin := angles[0], angles[1], angles[2], angles[3]

	xDiff := (right - left) / 16
	legDiff := math32.Abs(right) + math32.Abs(rightShin) - math32.Abs(left) - math32.Abs(leftShin)
	if f.Mirror {
		legDiff = -legDiff
		xDiff = -xDiff
	}
	legDiff /= 32

	maxDiff := utils.Radians(4)
	legDiff = clamp(legDiff, -maxDiff, maxDiff)
	xDiff = clamp(xDiff, -maxDiff, utils.Radians(6))

	return utils.QuatAddEuler(q, mgl32.Vec3{xDiff, utils.Radians(f.YOffset), legDiff}), nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

// HairBlendFixup averages the candidate pushed forward and backward by the
// relative motion of two reference bones
type HairBlendFixup struct {
	First   int     `yaml:"first"`
	Second  int     `yaml:"second"`
	Divisor float32 `yaml:"divisor"`
}

func (f *HairBlendFixup) Kind() FixupKind { return FixupHairBlend }

func (f *HairBlendFixup) Validate() error {
	if f.Divisor == 0 {
		return errors.New("divisor is zero")
	}
	return checkBones(f.First, f.Second)
}

func motionDelta(c *an.Clip, bone, frame int) (mgl32.Quat, error) {
	rest, err := rotation(c, bone, 0)
	if err != nil {
		return mgl32.Quat{}, err
	}
	cur, err := rotation(c, bone, frame)
	if err != nil {
		return mgl32.Quat{}, err
	}
	return utils.QuatMul(cur, utils.QuatInverted(rest)), nil
}

func (f *HairBlendFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	first, err := motionDelta(env.Source, f.First, env.SourceFrame)
	if err != nil {
		return q, err
	}
	second, err := motionDelta(env.Source, f.Second, env.SourceFrame)
	if err != nil {
		return q, err
	}
	tr := utils.QuatMul(second, utils.QuatInverted(first))

	fwd := utils.QuatToExpMap(utils.QuatMul(tr, q))
	back := utils.QuatToExpMap(utils.QuatMul(utils.QuatInverted(tr), q))
	return utils.ExpMapToQuat(fwd.Add(back).Mul(1 / f.Divisor)), nil
}

// HairAlignFixup moves the bone so its frame 0 lands on Rest
type HairAlignFixup struct {
	Bone int `yaml:"bone"`
	// w, x, y, z
	Rest [4]float32 `yaml:"rest,flow"`
}

func (f *HairAlignFixup) Kind() FixupKind { return FixupHairAlign }

func (f *HairAlignFixup) Validate() error { return checkBones(f.Bone) }

func (f *HairAlignFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	start, err := rotation(env.Source, f.Bone, 0)
	if err != nil {
		return q, err
	}
	transform := utils.QuatMul(utils.QuatFromWXYZ(f.Rest), utils.QuatInverted(start))
	return utils.QuatMul(transform, q), nil
}

// HandWindow re-bases a frame range onto a known good pose
type HandWindow struct {
	From      int `yaml:"from"`
	To        int `yaml:"to"`
	BaseBone  int `yaml:"base_bone"`
	BaseFrame int `yaml:"base_frame"`
	// w, x, y, z
	Base [4]float32 `yaml:"base,flow"`
}

func (w *HandWindow) contains(frame int) bool {
	return frame >= w.From && frame <= w.To
}

// HandStraightenFixup applies half of the middle finger drift from its rest
// pose to the candidate
type HandStraightenFixup struct {
	Middle int         `yaml:"middle"`
	Window *HandWindow `yaml:"window,omitempty"`
}

func (f *HandStraightenFixup) Kind() FixupKind { return FixupHandStraighten }

func (f *HandStraightenFixup) Validate() error {
	if w := f.Window; w != nil {
		if w.From > w.To {
			return errors.Errorf("window from %d > to %d", w.From, w.To)
		}
		if w.BaseFrame < 0 {
			return errors.Errorf("negative base frame %d", w.BaseFrame)
		}
		if err := checkBones(w.BaseBone); err != nil {
			return err
		}
	}
	return checkBones(f.Middle)
}

func (f *HandStraightenFixup) straighten(q mgl32.Quat, c *an.Clip, frame int) (mgl32.Quat, error) {
	needed, err := rotation(c, f.Middle, 0)
	if err != nil {
		return q, err
	}
	cur, err := rotation(c, f.Middle, frame)
	if err != nil {
		return q, err
	}
	t := utils.QuatMul(cur, utils.QuatInverted(needed))
	avg := utils.QuatToExpMap(t).Add(utils.QuatToExpMap(needed)).Mul(0.5)
	return utils.QuatMul(utils.ExpMapToQuat(avg), q), nil
}

func (f *HandStraightenFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	if env.SourceFrame == 0 {
		return q, nil
	}
	result, err := f.straighten(q, env.Source, env.SourceFrame)
	if err != nil {
		return q, err
	}

	if w := f.Window; w != nil && w.contains(env.SourceFrame) {
		baseQ, err := rotation(env.Source, w.BaseBone, w.BaseFrame)
		if err != nil {
			return q, err
		}
		calc, err := f.straighten(baseQ, env.Source, w.BaseFrame)
		if err != nil {
			return q, err
		}
		transform := utils.QuatMul(utils.QuatFromWXYZ(w.Base), utils.QuatInverted(calc))
		result = utils.QuatMul(transform, result)
	}
	return result, nil
}

// RestHoldFixup pins the bone to its frame 0 pose
type RestHoldFixup struct {
	Bone int `yaml:"bone"`
}

func (f *RestHoldFixup) Kind() FixupKind { return FixupRestHold }

func (f *RestHoldFixup) Validate() error { return checkBones(f.Bone) }

func (f *RestHoldFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	if env.SourceFrame == 0 {
		return q, nil
	}
	return rotation(env.Source, f.Bone, 0)
}

// FrameWindow is an inclusive source frame range
type FrameWindow struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// FixedEulerFixup adds a constant euler offset inside the windows. The
// windows are hand tuned against specific source clips.
type FixedEulerFixup struct {
	Degrees [3]float32    `yaml:"degrees,flow"`
	Windows []FrameWindow `yaml:"windows"`
}

func (f *FixedEulerFixup) Kind() FixupKind { return FixupFixedEuler }

func (f *FixedEulerFixup) Validate() error {
	for _, w := range f.Windows {
		if w.From > w.To {
			return errors.Errorf("window from %d > to %d", w.From, w.To)
		}
	}
	return nil
}

func (f *FixedEulerFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	for _, w := range f.Windows {
		if env.SourceFrame >= w.From && env.SourceFrame <= w.To {
			return utils.QuatAddEuler(q, degreesToRadians(f.Degrees)), nil
		}
	}
	return q, nil
}

// RestDeltaFixup re-bases a stretched candidate from the source rest pose of
// SourceBone onto the destination rest pose of TargetBone
type RestDeltaFixup struct {
	SourceBone int `yaml:"source_bone"`
	TargetBone int `yaml:"target_bone"`
}

func (f *RestDeltaFixup) Kind() FixupKind { return FixupRestDelta }

func (f *RestDeltaFixup) Validate() error { return checkBones(f.SourceBone, f.TargetBone) }

func (f *RestDeltaFixup) Apply(q mgl32.Quat, env Env) (mgl32.Quat, error) {
	src, err := rotation(env.Source, f.SourceBone, 0)
	if err != nil {
		return q, err
	}
	dst, err := rotation(env.Target, f.TargetBone, 0)
	if err != nil {
		return q, err
	}
	return utils.QuatMul(utils.QuatMul(dst, utils.QuatInverted(src)), stretched(q)), nil
}

func newFixup(kind FixupKind) (Fixup, error) {
	switch kind {
	case FixupSkirt:
		return &SkirtFixup{}, nil
	case FixupLegSpread:
		return &LegSpreadFixup{}, nil
	case FixupHairBlend:
		return &HairBlendFixup{}, nil
	case FixupHairAlign:
		return &HairAlignFixup{}, nil
	case FixupHandStraighten:
		return &HandStraightenFixup{}, nil
	case FixupRestHold:
		return &RestHoldFixup{}, nil
	case FixupFixedEuler:
		return &FixedEulerFixup{}, nil
	case FixupRestDelta:
		return &RestDeltaFixup{}, nil
	}
	return nil, fmt.Errorf("unknown fixup kind %q", kind)
}
