package an

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleClip() *Clip {
	return &Clip{
		FramesPerSecond: 30,
		ParentIndex:     []int32{0, 0, 1},
		RestPosition:    []mgl32.Vec3{{0.5, 1, 0}, {0, 2, 0}, {0.25, 0, 1}},
		RootTranslation: []mgl32.Vec3{{0, 0, 0}, {1, 0.5, -2}},
		JointRotation: [][]mgl32.Quat{
			{{W: 1}, {W: 0.5, V: mgl32.Vec3{0.5, 0.5, 0.5}}},
			{{W: 0, V: mgl32.Vec3{1, 0, 0}}, {W: 0, V: mgl32.Vec3{0, 1, 0}}},
			{{W: 0.25, V: mgl32.Vec3{-1, 2, -3}}, {W: -1}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	c := sampleClip()
	parsed, err := NewFromData(c.Marshal())
	require.NoError(t, err)

	assert.Equal(t, c.FramesPerSecond, parsed.FramesPerSecond)
	assert.Equal(t, c.ParentIndex, parsed.ParentIndex)
	assert.Equal(t, c.RestPosition, parsed.RestPosition)
	assert.Equal(t, c.RootTranslation, parsed.RootTranslation)
	assert.Equal(t, c.JointRotation, parsed.JointRotation)
	assert.Equal(t, 2, parsed.FrameCount())
	assert.Equal(t, 3, parsed.JointCount())

	assert.Equal(t, c.Marshal(), parsed.Marshal())
}

func le(values ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func TestFileLayout(t *testing.T) {
	data := le(
		int32(1), int32(1), float32(24),
		int32(0),
		[3]float32{1, 2, 3},
		[3]float32{1.5, 2, 4},
		[4]float32{0.1, 0.2, 0.3, 0.9},
	)
	c, err := NewFromData(data)
	require.NoError(t, err)

	assert.Equal(t, float32(24), c.FramesPerSecond)
	assert.Equal(t, mgl32.Vec3{0.5, 0, 1}, c.RootTranslation[0])
	assert.Equal(t, mgl32.Quat{W: 0.9, V: mgl32.Vec3{0.1, 0.2, 0.3}}, c.JointRotation[0][0])
	assert.Equal(t, data, c.Marshal())
}

func randomClipData(rnd *rand.Rand) []byte {
	frames := rnd.Intn(6)
	joints := 1 + rnd.Intn(5)
	coord := func() float32 { return (rnd.Float32() - 0.5) * float32(math.Pow(10, float64(rnd.Intn(7)-3))) }

	values := []interface{}{int32(frames), int32(joints), float32(1 + rnd.Intn(60))}
	values = append(values, int32(0))
	for j := 1; j < joints; j++ {
		values = append(values, int32(rnd.Intn(j)))
	}
	for i := 0; i < joints+frames; i++ {
		values = append(values, [3]float32{coord(), coord(), coord()})
	}
	for i := 0; i < joints*frames; i++ {
		values = append(values, [4]float32{rnd.Float32(), rnd.Float32(), rnd.Float32(), rnd.Float32()})
	}
	return le(values...)
}

func TestRandomRoundTripIsExact(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		data := randomClipData(rnd)
		c, err := NewFromData(data)
		require.NoError(t, err)
		require.Equal(t, data, c.Marshal(), "clip %d", i)
	}
}

func TestRootPositionFollowsEdits(t *testing.T) {
	data := le(
		int32(1), int32(1), float32(30),
		int32(0),
		[3]float32{-123.37582, 0, 0},
		[3]float32{-0.0012634752, 0, 0},
		[4]float32{0, 0, 0, 1},
	)
	c, err := NewFromData(data)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{-0.0012634752, 0, 0}, c.RootPosition(0))
	assert.Equal(t, data, c.Marshal())

	c.RootTranslation[0] = mgl32.Vec3{1, 2, 3}
	assert.Equal(t, mgl32.Vec3{-122.37582, 2, 3}, c.RootPosition(0))

	sub, err := c.SubClip(0, 1)
	require.NoError(t, err)
	assert.Equal(t, c.RootPosition(0), sub.RootPosition(0))
}

func TestTrailingBytesIgnored(t *testing.T) {
	data := append(sampleClip().Marshal(), 0xde, 0xad, 0xbe, 0xef)
	_, err := NewFromData(data)
	assert.NoError(t, err)
}

func TestEmptyClip(t *testing.T) {
	c, err := NewFromData(le(int32(0), int32(0), float32(30)))
	require.NoError(t, err)
	assert.Equal(t, 0, c.FrameCount())
	assert.Equal(t, 0, c.JointCount())
}

func TestTruncated(t *testing.T) {
	data := sampleClip().Marshal()
	for _, n := range []int{0, 4, 11, 12, 20, len(data) - 1} {
		_, err := NewFromData(data[:n])
		var fe *FormatError
		require.True(t, errors.As(err, &fe), "cut at %d: %v", n, err)
		assert.Equal(t, "FormatError", fe.Kind())
	}
}

func TestNegativeCounts(t *testing.T) {
	for _, data := range [][]byte{
		le(int32(-1), int32(1), float32(30)),
		le(int32(1), int32(-5), float32(30)),
	} {
		_, err := NewFromData(data)
		var fe *FormatError
		assert.True(t, errors.As(err, &fe), "%v", err)
	}
}

func TestHugeCountsDoNotAllocate(t *testing.T) {
	_, err := NewFromData(le(int32(math.MaxInt32), int32(math.MaxInt32), float32(30)))
	var fe *FormatError
	assert.True(t, errors.As(err, &fe), "%v", err)
}

func TestWorldRest(t *testing.T) {
	c, err := NewFromData(sampleClip().Marshal())
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec3{
		{0.5, 1, 0},
		{0.5, 3, 0},
		{0.75, 3, 1},
	}, c.WorldRestPosition)
}

func TestWorldRestParentAfterChild(t *testing.T) {
	world, err := computeWorldRest([]int32{0, 2, 0}, []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, world[1])
}

func TestWorldRestBadParents(t *testing.T) {
	for name, parents := range map[string][]int32{
		"cycle":        {0, 2, 1},
		"self":         {0, 1},
		"out of range": {0, 7},
		"negative":     {0, -1},
	} {
		rest := make([]mgl32.Vec3, len(parents))
		_, err := computeWorldRest(parents, rest)
		var fe *FormatError
		assert.True(t, errors.As(err, &fe), "%s: %v", name, err)
	}
}

func TestRotationBounds(t *testing.T) {
	c := sampleClip()
	q, err := c.Rotation(2, 1)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Quat{W: -1}, q)

	_, err = c.Rotation(3, 0)
	assert.Error(t, err)
	_, err = c.Rotation(0, 2)
	assert.Error(t, err)
	_, err = c.Rotation(-1, 0)
	assert.Error(t, err)
}

func TestSubClip(t *testing.T) {
	c := sampleClip()
	sub, err := c.SubClip(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.FrameCount())
	assert.Equal(t, c.JointRotation[2][1], sub.JointRotation[2][0])
	assert.Equal(t, c.RootTranslation[1], sub.RootTranslation[0])

	_, err = c.SubClip(1, 3)
	assert.Error(t, err)
	_, err = c.SubClip(2, 1)
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	c, err := Read(bytes.NewReader(sampleClip().Marshal()))
	require.NoError(t, err)
	assert.Equal(t, 3, c.JointCount())
	assert.Equal(t, Header{Frames: 2, Joints: 3, FramesPerSecond: 30}, c.Header())
}

func TestReadHeader(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(sampleClip().Marshal()))
	require.NoError(t, err)
	assert.Equal(t, Header{Frames: 2, Joints: 3, FramesPerSecond: 30}, h)

	_, err = ReadHeader(bytes.NewReader([]byte{1, 2, 3}))
	var fe *FormatError
	assert.True(t, errors.As(err, &fe), "%v", err)

	_, err = ReadHeader(bytes.NewReader(le(int32(-2), int32(1), float32(30))))
	assert.True(t, errors.As(err, &fe), "%v", err)
}
