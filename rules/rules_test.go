package rules

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/anmerge/an"
	"github.com/mogaika/anmerge/utils"
)

func strp(s string) *string { return &s }

func quat(w, x, y, z float32) mgl32.Quat {
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// clipOf builds a clip whose joint j has the rotations tracks[j]
func clipOf(tracks ...[]mgl32.Quat) *an.Clip {
	c := &an.Clip{
		FramesPerSecond: 30,
		ParentIndex:     make([]int32, len(tracks)),
		RestPosition:    make([]mgl32.Vec3, len(tracks)),
		JointRotation:   tracks,
	}
	if len(tracks) > 0 {
		c.RootTranslation = make([]mgl32.Vec3, len(tracks[0]))
	}
	return c
}

func constTrack(q mgl32.Quat, frames int) []mgl32.Quat {
	t := make([]mgl32.Quat, frames)
	for i := range t {
		t[i] = q
	}
	return t
}

func TestResolve(t *testing.T) {
	reg := Builtin()

	for _, bone := range []int{0, 1, 17, 127} {
		target, err := reg.Resolve(nil, bone)
		require.NoError(t, err)
		assert.Equal(t, Index(bone), target)
	}

	for _, tc := range []struct {
		rule   string
		bone   int
		expect Target
	}{
		{"woman_to_man", 0, Index(1)},
		{"woman_to_man", 11, NoEquivalent},
		{"woman_to_man", 100, NoEquivalent},
		{"danny_to_jess", 24, Skip},
		{"danny_to_jess", 68, Index(48)},
		{"jess_to_woman", 37, Index(32)},
		{"danny_to_woman", 12, Index(18)},
	} {
		target, err := reg.Resolve(strp(tc.rule), tc.bone)
		require.NoError(t, err)
		assert.Equal(t, tc.expect, target, "%s[%d]", tc.rule, tc.bone)
	}
}

func TestResolveUnknownRule(t *testing.T) {
	_, err := Builtin().Resolve(strp("pirate_to_parrot"), 3)
	require.Error(t, err)

	var ure *UnknownRuleError
	require.True(t, errors.As(err, &ure))
	assert.Equal(t, "pirate_to_parrot", ure.Rule)
	assert.Equal(t, "UnknownRuleError", ure.Kind())

	assert.Error(t, Builtin().CheckFixup(strp("nope")))
	assert.NoError(t, Builtin().CheckFixup(strp("hand_make_straight")))
	assert.NoError(t, Builtin().CheckRemap(nil))
}

func TestBuiltinIsIndependent(t *testing.T) {
	a, b := Builtin(), Builtin()
	a.Remaps["woman_to_man"][0] = Skip
	delete(a.Fixups, "danny_to_man")

	assert.Equal(t, Index(1), b.Remaps["woman_to_man"][0])
	assert.Contains(t, b.Fixups, "danny_to_man")
}

func TestBuiltinValidates(t *testing.T) {
	assert.NoError(t, Builtin().Validate())
}

func TestValidateRejectsBadParameters(t *testing.T) {
	for name, f := range map[string]Fixup{
		"divisor":   &HairBlendFixup{First: 1, Second: 2},
		"window":    &FixedEulerFixup{Windows: []FrameWindow{{From: 5, To: 1}}},
		"bone":      &RestHoldFixup{Bone: -1},
		"direction": &SkirtFixup{Direction: "x"},
		"hand":      &HandStraightenFixup{Middle: 1, Window: &HandWindow{From: 9, To: 2}},
	} {
		reg := NewRegistry()
		reg.Fixups["bad"] = FixupSet{3: f}
		assert.Error(t, reg.Validate(), name)
	}
}

func TestApplyFixupPassThrough(t *testing.T) {
	reg := Builtin()
	q := quat(0.5, 0.5, 0.5, 0.5)

	for _, set := range []*string{nil, strp("man_to_woman"), strp("woman_to_man")} {
		res, err := reg.ApplyFixup(set, 77, q, Env{})
		require.NoError(t, err)
		assert.Equal(t, q, res)
	}
}

func TestApplyFixupReportsBone(t *testing.T) {
	reg := Builtin()
	// joint 56 does not exist in a one joint clip
	main := clipOf(constTrack(mgl32.QuatIdent(), 3))
	_, err := reg.ApplyFixup(strp("hand_make_straight"), 56, mgl32.QuatIdent(), Env{Source: main, SourceFrame: 2, Target: main})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bone 56")
}

func TestRestHold(t *testing.T) {
	rest := quat(0.8, 0.6, 0, 0)
	c := clipOf(constTrack(mgl32.QuatIdent(), 4), []mgl32.Quat{rest, quat(0, 1, 0, 0), quat(0, 0, 1, 0), quat(0, 0, 0, 1)})
	f := &RestHoldFixup{Bone: 1}
	q := quat(0, 0, 0, 1)

	res, err := f.Apply(q, Env{Source: c, SourceFrame: 0})
	require.NoError(t, err)
	assert.Equal(t, q, res)

	res, err = f.Apply(q, Env{Source: c, SourceFrame: 3})
	require.NoError(t, err)
	assert.Equal(t, rest, res)
}

func TestFixedEulerWindows(t *testing.T) {
	f := fixedDrift(10, 0, 0)
	q := utils.EulerToQuat(mgl32.Vec3{utils.Radians(20), 0, 0})

	for _, frame := range []int{0, 24532, 24594, 32688, 32721} {
		res, err := f.Apply(q, Env{SourceFrame: frame})
		require.NoError(t, err)
		assert.Equal(t, q, res, "frame %d", frame)
	}

	for _, frame := range []int{24533, 24593, 32689, 32720} {
		res, err := f.Apply(q, Env{SourceFrame: frame})
		require.NoError(t, err)
		e := utils.QuatToEuler(res)
		assert.InDelta(t, utils.Radians(30), e[0], 1e-5, "frame %d", frame)
		assert.InDelta(t, 0, e[1], 1e-5)
		assert.InDelta(t, 0, e[2], 1e-5)
	}
}

func TestSkirtDirection(t *testing.T) {
	modRest := quat(0.6, 0, 0.8, 0)
	target := clipOf(
		constTrack(mgl32.QuatIdent(), 1),
		constTrack(modRest, 1),
	)
	f := &SkirtFixup{Reference: 0, Modifier: 1, Direction: "f"}

	// positive x with forward direction rests on the modifier pose
	res, err := f.Apply(quat(0.9, 0.1, 0, 0), Env{Target: target})
	require.NoError(t, err)
	assert.Equal(t, modRest, res)

	// negative x composes the stretched candidate onto the modifier rest
	q := quat(0.9, -0.1, 0.2, 0.1)
	res, err = f.Apply(q, Env{Target: target})
	require.NoError(t, err)
	expect := utils.QuatMul(quat(0.9, -0.2, 0.2, 0.2), modRest)
	assert.InDelta(t, expect.W, res.W, 1e-6)
	assert.InDeltaSlice(t, expect.V[:], res.V[:], 1e-6)
}

func TestRestDeltaIdentityRest(t *testing.T) {
	ident := constTrack(mgl32.QuatIdent(), 1)
	src := clipOf(ident, ident)
	dst := clipOf(ident, ident)
	f := &RestDeltaFixup{SourceBone: 1, TargetBone: 0}

	res, err := f.Apply(quat(0.5, 0.1, 0.2, 0.3), Env{Source: src, Target: dst})
	require.NoError(t, err)
	assert.Equal(t, quat(0.5, 0.2, 0.2, 0.6), res)
}

func TestHairAlignRebasesFrameZero(t *testing.T) {
	rest := [4]float32{-0.340719, -0.606968, 0.338404, 0.633232}
	start := quat(0.6, 0.8, 0, 0)
	c := clipOf(constTrack(start, 2))
	f := &HairAlignFixup{Bone: 0, Rest: rest}

	res, err := f.Apply(start, Env{Source: c})
	require.NoError(t, err)
	got := utils.QuatToWXYZ(res)
	assert.InDeltaSlice(t, rest[:], got[:], 1e-5)
}

func TestHandStraighten(t *testing.T) {
	c := clipOf(constTrack(mgl32.QuatIdent(), 5))
	f := &HandStraightenFixup{Middle: 0}
	q := quat(0.6, 0, 0.8, 0)

	res, err := f.Apply(q, Env{Source: c, SourceFrame: 0})
	require.NoError(t, err)
	assert.Equal(t, q, res)

	// a middle bone that never moves leaves the candidate alone
	res, err = f.Apply(q, Env{Source: c, SourceFrame: 3})
	require.NoError(t, err)
	assert.InDelta(t, q.W, res.W, 1e-6)
	assert.InDeltaSlice(t, q.V[:], res.V[:], 1e-6)
}

func TestHandStraightenWindowRebases(t *testing.T) {
	c := clipOf(constTrack(mgl32.QuatIdent(), 12))
	base := [4]float32{0.527591, -0.425861, -0.734265, -0.033846}
	f := &HandStraightenFixup{Middle: 0, Window: &HandWindow{From: 4, To: 8, BaseBone: 0, BaseFrame: 6, Base: base}}

	res, err := f.Apply(mgl32.QuatIdent(), Env{Source: c, SourceFrame: 6})
	require.NoError(t, err)
	got := utils.QuatToWXYZ(res)
	assert.InDeltaSlice(t, base[:], got[:], 1e-5)

	res, err = f.Apply(mgl32.QuatIdent(), Env{Source: c, SourceFrame: 10})
	require.NoError(t, err)
	assert.InDelta(t, 1, res.W, 1e-6)
}

func TestHairBlendStillReferences(t *testing.T) {
	c := clipOf(constTrack(mgl32.QuatIdent(), 3), constTrack(mgl32.QuatIdent(), 3))
	f := &HairBlendFixup{First: 0, Second: 1, Divisor: 2}
	q := utils.EulerToQuat(mgl32.Vec3{0.3, 0.1, -0.2})

	// with no reference motion both terms equal q and the average is q
	res, err := f.Apply(q, Env{Source: c, SourceFrame: 2})
	require.NoError(t, err)
	assert.InDelta(t, q.W, res.W, 1e-5)
	assert.InDeltaSlice(t, q.V[:], res.V[:], 1e-5)
}

func TestLegSpreadClamps(t *testing.T) {
	frames := 2
	tracks := make([][]mgl32.Quat, 10)
	for i := range tracks {
		tracks[i] = constTrack(mgl32.QuatIdent(), frames)
	}
	// right leg swung far back, left still
	tracks[4][1] = utils.EulerToQuat(mgl32.Vec3{utils.Radians(-170), 0, 0})
	c := clipOf(tracks...)

	res, err := legSpread(false, 0).Apply(mgl32.QuatIdent(), Env{Source: c, SourceFrame: 1})
	require.NoError(t, err)
	e := utils.QuatToEuler(res)
	assert.InDelta(t, utils.Radians(6), e[0], 1e-4)
	assert.InDelta(t, utils.Radians(4), e[2], 1e-4)

	res, err = legSpread(true, -4).Apply(mgl32.QuatIdent(), Env{Source: c, SourceFrame: 1})
	require.NoError(t, err)
	e = utils.QuatToEuler(res)
	assert.InDelta(t, utils.Radians(-4), e[0], 1e-4)
	assert.InDelta(t, utils.Radians(-4), e[1], 1e-4)
	assert.InDelta(t, utils.Radians(-4), e[2], 1e-4)
}

func TestYAMLRoundTrip(t *testing.T) {
	reg := Builtin()
	data, err := yaml.Marshal(reg)
	require.NoError(t, err)

	loaded := NewRegistry()
	require.NoError(t, loaded.LoadYAML(bytes.NewReader(data)))
	assert.Equal(t, reg.Remaps, loaded.Remaps)
	assert.Equal(t, reg.Fixups, loaded.Fixups)
}

func TestLoadYAML(t *testing.T) {
	reg := Builtin()
	src := `
remaps:
  my_rule: {0: 0, 5: null, 7: skip}
fixups:
  my_rule:
    3: {kind: rest_hold, bone: 3}
    4: {kind: fixed_euler, degrees: [1, 2, 3], windows: [{from: 1, to: 2}]}
`
	require.NoError(t, reg.LoadYAML(strings.NewReader(src)))

	table := reg.Remaps["my_rule"]
	assert.Equal(t, RemapTable{0: Index(0), 5: NoEquivalent, 7: Skip}, table)
	assert.Equal(t, &RestHoldFixup{Bone: 3}, reg.Fixups["my_rule"][3])
	assert.Equal(t, &FixedEulerFixup{Degrees: [3]float32{1, 2, 3}, Windows: []FrameWindow{{1, 2}}}, reg.Fixups["my_rule"][4])
	// stock tables survive
	assert.Contains(t, reg.Remaps, "danny_to_man")
}

func TestLoadYAMLErrors(t *testing.T) {
	for _, src := range []string{
		"remaps: {r: {1: maybe}}",
		"remaps: {r: {1: -3}}",
		"fixups: {r: {1: {kind: teleport}}}",
		"fixups: {r: {1: {kind: hair_blend, first: 1, second: 2}}}",
	} {
		reg := NewRegistry()
		assert.Error(t, reg.LoadYAML(strings.NewReader(src)), src)
	}
}
