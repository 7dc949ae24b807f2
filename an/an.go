// Package an reads and writes Sea Dogs skeletal animation clips (.an).
//
// Layout, little-endian, no magic and no version:
//
//	int32   frames
//	int32   joints
//	float32 fps
//	int32   parent[joints]
//	vec3    rest[joints]            joint rest translation relative to parent
//	vec3    root[frames]            absolute root position
//	quat    rot[joints][frames]     x, y, z, w
package an

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const headerSize = 12

type Clip struct {
	Name            string
	FramesPerSecond float32
	ParentIndex     []int32
	RestPosition    []mgl32.Vec3
	// accumulated up the parent chain, not stored in the file
	WorldRestPosition []mgl32.Vec3
	// root offset from RestPosition[0] per frame
	RootTranslation []mgl32.Vec3
	// [joint][frame], w-first quaternions
	JointRotation [][]mgl32.Quat

	// absolute root positions as read, RootTranslation is derived from them
	rootPosition []mgl32.Vec3
}

// FormatError reports a malformed clip stream
type FormatError struct {
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("an format error at 0x%x: %s", e.Offset, e.Msg)
}

func (e *FormatError) Kind() string { return "FormatError" }

func (c *Clip) FrameCount() int { return len(c.RootTranslation) }
func (c *Clip) JointCount() int { return len(c.ParentIndex) }

// Rotation is a bounds checked JointRotation lookup
func (c *Clip) Rotation(joint, frame int) (mgl32.Quat, error) {
	if joint < 0 || joint >= len(c.JointRotation) {
		return mgl32.Quat{}, fmt.Errorf("clip %q: joint %d out of range [0,%d)", c.Name, joint, len(c.JointRotation))
	}
	track := c.JointRotation[joint]
	if frame < 0 || frame >= len(track) {
		return mgl32.Quat{}, fmt.Errorf("clip %q: frame %d of joint %d out of range [0,%d)", c.Name, frame, joint, len(track))
	}
	return track[frame], nil
}

type reader struct {
	data []byte
	pos  int64
}

func (r *reader) need(n int64, what string) error {
	if r.pos+n > int64(len(r.data)) {
		return &FormatError{Offset: r.pos, Msg: fmt.Sprintf("truncated %s: need %d bytes, have %d", what, n, int64(len(r.data))-r.pos)}
	}
	return nil
}

func (r *reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.f32(), r.f32(), r.f32()}
}

func NewFromData(data []byte) (*Clip, error) {
	r := &reader{data: data}
	if err := r.need(headerSize, "header"); err != nil {
		return nil, err
	}

	frames := int32(r.u32())
	joints := int32(r.u32())
	fps := r.f32()
	if frames < 0 {
		return nil, &FormatError{Offset: 0, Msg: fmt.Sprintf("negative frame count %d", frames)}
	}
	if joints < 0 {
		return nil, &FormatError{Offset: 4, Msg: fmt.Sprintf("negative joint count %d", joints)}
	}

	// bound the counts by the data size before multiplying them
	avail := int64(len(data)) - headerSize
	if int64(frames)*12 > avail || int64(joints)*16 > avail {
		return nil, &FormatError{Offset: headerSize, Msg: fmt.Sprintf("truncated body: %d frames and %d joints do not fit in %d bytes", frames, joints, avail)}
	}

	body := int64(joints)*4 + int64(joints)*12 + int64(frames)*12 + int64(joints)*int64(frames)*16
	if err := r.need(body, "body"); err != nil {
		return nil, err
	}

	c := &Clip{
		FramesPerSecond: fps,
		ParentIndex:     make([]int32, joints),
		RestPosition:    make([]mgl32.Vec3, joints),
		RootTranslation: make([]mgl32.Vec3, frames),
		JointRotation:   make([][]mgl32.Quat, joints),
		rootPosition:    make([]mgl32.Vec3, frames),
	}

	for i := range c.ParentIndex {
		c.ParentIndex[i] = int32(r.u32())
	}
	for i := range c.RestPosition {
		c.RestPosition[i] = r.vec3()
	}

	var rootRest mgl32.Vec3
	if joints > 0 {
		rootRest = c.RestPosition[0]
	}
	for i := range c.RootTranslation {
		c.rootPosition[i] = r.vec3()
		c.RootTranslation[i] = c.rootPosition[i].Sub(rootRest)
	}

	for j := range c.JointRotation {
		track := make([]mgl32.Quat, frames)
		for f := range track {
			x, y, z, w := r.f32(), r.f32(), r.f32(), r.f32()
			track[f] = mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
		}
		c.JointRotation[j] = track
	}

	world, err := computeWorldRest(c.ParentIndex, c.RestPosition)
	if err != nil {
		return nil, err
	}
	c.WorldRestPosition = world

	return c, nil
}

func Read(rd io.Reader) (*Clip, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return NewFromData(data)
}

// computeWorldRest accumulates rest translations up the parent chain.
// Joint 0 is the root and its parent entry is ignored.
func computeWorldRest(parents []int32, rest []mgl32.Vec3) ([]mgl32.Vec3, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	world := make([]mgl32.Vec3, len(rest))
	state := make([]uint8, len(rest))

	var visit func(j int) error
	visit = func(j int) error {
		switch state[j] {
		case done:
			return nil
		case visiting:
			return &FormatError{Offset: headerSize + int64(j)*4, Msg: fmt.Sprintf("joint %d is its own ancestor", j)}
		}
		if j == 0 {
			world[0] = rest[0]
			state[0] = done
			return nil
		}
		p := int(parents[j])
		if p < 0 || p >= len(rest) {
			return &FormatError{Offset: headerSize + int64(j)*4, Msg: fmt.Sprintf("joint %d has parent %d out of range", j, p)}
		}
		state[j] = visiting
		if err := visit(p); err != nil {
			return err
		}
		world[j] = rest[j].Add(world[p])
		state[j] = done
		return nil
	}

	for j := range rest {
		if err := visit(j); err != nil {
			return nil, err
		}
	}
	return world, nil
}

// RootPosition is the absolute root position of frame f as stored in the
// file. Frames whose translation or root rest was changed after parsing are
// recomputed from RestPosition[0] + RootTranslation.
func (c *Clip) RootPosition(f int) mgl32.Vec3 {
	var rootRest mgl32.Vec3
	if len(c.RestPosition) > 0 {
		rootRest = c.RestPosition[0]
	}
	if f < len(c.rootPosition) && c.rootPosition[f].Sub(rootRest) == c.RootTranslation[f] {
		return c.rootPosition[f]
	}
	return c.RootTranslation[f].Add(rootRest)
}

// Marshal writes the clip back in file layout. For a parsed clip the bytes
// are identical to the input up to the end of the rotation block.
func (c *Clip) Marshal() []byte {
	frames, joints := c.FrameCount(), c.JointCount()
	buf := make([]byte, 0, headerSize+joints*16+frames*12+joints*frames*16)

	u32 := func(v uint32) {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	f32 := func(v float32) {
		u32(math.Float32bits(v))
	}
	vec3 := func(v mgl32.Vec3) {
		f32(v[0])
		f32(v[1])
		f32(v[2])
	}

	u32(uint32(int32(frames)))
	u32(uint32(int32(joints)))
	f32(c.FramesPerSecond)
	for _, p := range c.ParentIndex {
		u32(uint32(p))
	}
	for _, p := range c.RestPosition {
		vec3(p)
	}

	for f := range c.RootTranslation {
		vec3(c.RootPosition(f))
	}
	for _, track := range c.JointRotation {
		for _, q := range track {
			vec3(q.V)
			f32(q.W)
		}
	}
	return buf
}

// SubClip returns frames [start, end) sharing the skeleton of c
func (c *Clip) SubClip(start, end int) (*Clip, error) {
	if start < 0 || end > c.FrameCount() || start > end {
		return nil, fmt.Errorf("clip %q: range [%d,%d) outside [0,%d)", c.Name, start, end, c.FrameCount())
	}
	sub := &Clip{
		Name:              c.Name,
		FramesPerSecond:   c.FramesPerSecond,
		ParentIndex:       append([]int32(nil), c.ParentIndex...),
		RestPosition:      append([]mgl32.Vec3(nil), c.RestPosition...),
		WorldRestPosition: append([]mgl32.Vec3(nil), c.WorldRestPosition...),
		RootTranslation:   append([]mgl32.Vec3(nil), c.RootTranslation[start:end]...),
		JointRotation:     make([][]mgl32.Quat, len(c.JointRotation)),
	}
	if len(c.rootPosition) == c.FrameCount() {
		sub.rootPosition = append([]mgl32.Vec3(nil), c.rootPosition[start:end]...)
	}
	for j, track := range c.JointRotation {
		sub.JointRotation[j] = append([]mgl32.Quat(nil), track[start:end]...)
	}
	return sub, nil
}

// Header is the summary shown in listings
type Header struct {
	Name            string
	Frames          int
	Joints          int
	FramesPerSecond float32
}

func (c *Clip) Header() Header {
	return Header{
		Name:            c.Name,
		Frames:          c.FrameCount(),
		Joints:          c.JointCount(),
		FramesPerSecond: c.FramesPerSecond,
	}
}

// ReadHeader reads only the fixed header, for listings of large clips
func ReadHeader(rd io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(rd, buf[:]); err != nil {
		return Header{}, &FormatError{Offset: 0, Msg: fmt.Sprintf("truncated header: %v", err)}
	}
	r := &reader{data: buf[:]}
	h := Header{
		Frames:          int(int32(r.u32())),
		Joints:          int(int32(r.u32())),
		FramesPerSecond: r.f32(),
	}
	if h.Frames < 0 || h.Joints < 0 {
		return Header{}, &FormatError{Offset: 0, Msg: fmt.Sprintf("negative counts %d frames %d joints", h.Frames, h.Joints)}
	}
	return h, nil
}
