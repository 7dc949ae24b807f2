// Package merge builds one output timeline from a cookbook: the main clip
// followed by appended, merged and patch segments, with every bone remapped
// and fixed up for the destination skeleton.
package merge

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/an"
	"github.com/mogaika/anmerge/cookbook"
	"github.com/mogaika/anmerge/rules"
	"github.com/mogaika/anmerge/utils"
)

type Option func(*assembler)

// WithLogger prints the segment report while assembling
func WithLogger(l *utils.Logger) Option {
	return func(a *assembler) { a.log = l }
}

// WithProgress is called after each bone is finished
func WithProgress(fn func(done, total int)) Option {
	return func(a *assembler) { a.progress = fn }
}

type assembler struct {
	cb       *cookbook.Cookbook
	reg      *rules.Registry
	clips    map[string]*an.Clip
	main     *an.Clip
	top      map[int]bool
	log      *utils.Logger
	progress func(done, total int)

	out *Timeline
}

func cookbookErr(cb *cookbook.Cookbook, entry, field, format string, args ...interface{}) error {
	return &cookbook.CookbookError{Cookbook: cb.Name, Entry: entry, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Assemble interprets cb against the clips in store. Nothing is returned
// unless every bone of every frame was computed.
func Assemble(cb *cookbook.Cookbook, store ClipStore, reg *rules.Registry, opts ...Option) (*Timeline, error) {
	if err := cb.Validate(); err != nil {
		return nil, err
	}

	a := &assembler{
		cb:    cb,
		reg:   reg,
		clips: make(map[string]*an.Clip),
		top:   cb.TopSet(),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, name := range cb.Files() {
		c, err := store.Clip(name)
		if err != nil {
			return nil, err
		}
		a.clips[name] = c
	}
	a.main = a.clips[cb.MainFile]

	for _, use := range cb.Rules() {
		if err := reg.CheckRemap(use.Rule); err != nil {
			return nil, errors.Wrapf(err, "cookbook %q %s %s (%s)", cb.Name, use.Entry, use.Field, use.File)
		}
	}
	if err := reg.CheckFixup(cb.FixRule); err != nil {
		return nil, errors.Wrapf(err, "cookbook %q fix_rule", cb.Name)
	}
	if err := a.checkRanges(); err != nil {
		return nil, err
	}

	a.out = &Timeline{
		Name:              strings.TrimSuffix(path.Base(cb.MainFile), path.Ext(cb.MainFile)),
		FPS:               a.main.FramesPerSecond,
		ParentIndex:       a.main.ParentIndex,
		RestPosition:      a.main.RestPosition,
		WorldRestPosition: a.main.WorldRestPosition,
	}

	var err error
	if cb.PatchZero != nil && cb.PatchZero.GeneratePatchFile {
		err = a.generatePatch()
	} else {
		err = a.assemble()
	}
	if err != nil {
		return nil, err
	}
	return a.out, nil
}

func (a *assembler) checkRanges() error {
	cb := a.cb
	mainFrames := a.main.FrameCount()

	// with ignore_original the default frame is only read for bones without
	// an equivalent, defaultRotation checks it there
	if !cb.IgnoreOriginal && cb.DefaultFrame >= mainFrames {
		return cookbookErr(cb, "", "default_frame", "frame %d outside main clip %q with %d frames", cb.DefaultFrame, cb.MainFile, mainFrames)
	}
	for i, r := range cb.FrameRanges {
		if r[1] > mainFrames {
			return cookbookErr(cb, fmt.Sprintf("frame_ranges[%d]", i), "", "range [%d, %d) exceeds main clip with %d frames", r[0], r[1], mainFrames)
		}
	}
	for i := range cb.MergeList {
		m := &cb.MergeList[i]
		for _, top := range []bool{true, false} {
			file, frames, _ := m.Half(top)
			if n := a.clips[file].FrameCount(); frames[1] > n {
				return cookbookErr(cb, fmt.Sprintf("merge_list[%d] %q", i, m.Name), halfField(top, "frames"),
					"range [%d, %d) exceeds %q with %d frames", frames[0], frames[1], file, n)
			}
		}
	}
	for i := range cb.PatchList {
		p := &cb.PatchList[i]
		for _, pose := range []struct {
			field string
			pose  *cookbook.PatchPose
		}{{"first_frame", &p.FirstFrame}, {"last_frame", &p.LastFrame}} {
			for _, top := range []bool{true, false} {
				file, frame, _ := pose.pose.Half(top)
				if n := a.clips[file].FrameCount(); frame >= n {
					return cookbookErr(cb, fmt.Sprintf("patch_list[%d] %q", i, p.Name), pose.field+"."+halfField(top, "frame"),
						"frame %d outside %q with %d frames", frame, file, n)
				}
			}
		}
	}
	if pz := cb.PatchZero; pz != nil && a.clips[pz.File].FrameCount() == 0 {
		return cookbookErr(cb, "patch_zero", "file", "clip %q has no frames", pz.File)
	}
	return nil
}

func halfField(top bool, name string) string {
	if top {
		return "top_" + name
	}
	return "bottom_" + name
}

// baseFrames lists the main clip frames kept in the base segment
func (a *assembler) baseFrames() []int {
	cb := a.cb
	if cb.IgnoreOriginal {
		return nil
	}
	n := a.main.FrameCount()
	if cb.FrameRanges == nil {
		frames := make([]int, n)
		for i := range frames {
			frames[i] = i
		}
		return frames
	}
	needed := make([]bool, n)
	for _, r := range cb.FrameRanges {
		for f := r[0]; f < r[1]; f++ {
			needed[f] = true
		}
	}
	var frames []int
	for f, ok := range needed {
		if ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// sample takes one bone of a source clip frame through remap, the rule's
// own fix-ups and the cookbook fix rule
func (a *assembler) sample(bone int, rule *string, src *an.Clip, srcFrame, outFrame int) (mgl32.Quat, error) {
	target, err := a.reg.Resolve(rule, bone)
	if err != nil {
		return mgl32.Quat{}, err
	}

	var q mgl32.Quat
	switch target.Kind {
	case rules.KindSkip:
		return mgl32.QuatIdent(), nil
	case rules.KindNoEquivalent:
		if q, err = a.defaultRotation(bone); err != nil {
			return q, err
		}
	case rules.KindIndex:
		if q, err = src.Rotation(target.Index, srcFrame); err != nil {
			return q, err
		}
	}

	q, err = a.reg.ApplyFixup(rule, bone, q, rules.Env{Source: src, SourceFrame: srcFrame, Target: a.main})
	if err != nil {
		return q, err
	}
	return a.reg.ApplyFixup(a.cb.FixRule, bone, q, rules.Env{Source: a.main, SourceFrame: outFrame, Target: a.main})
}

func (a *assembler) defaultRotation(bone int) (mgl32.Quat, error) {
	cb := a.cb
	if n := a.main.FrameCount(); cb.DefaultFrame >= n {
		return mgl32.Quat{}, cookbookErr(cb, "", "default_frame", "frame %d outside main clip %q with %d frames", cb.DefaultFrame, cb.MainFile, n)
	}
	return a.main.JointRotation[bone][cb.DefaultFrame], nil
}

// zeroSample is the remapped frame 0 of the patch zero clip, without fix-ups
func (a *assembler) zeroSample(bone int) (mgl32.Quat, error) {
	pz := a.cb.PatchZero
	target, err := a.reg.Resolve(pz.ConvertRule, bone)
	if err != nil {
		return mgl32.Quat{}, err
	}
	switch target.Kind {
	case rules.KindSkip:
		return mgl32.QuatIdent(), nil
	case rules.KindNoEquivalent:
		return a.defaultRotation(bone)
	}
	return a.clips[pz.File].Rotation(target.Index, 0)
}

func (a *assembler) segment(kind SegmentKind, name string, length int) Segment {
	start := 0
	if n := len(a.out.Segments); n != 0 {
		last := a.out.Segments[n-1]
		start = last.Start + last.Length
	}
	s := Segment{Kind: kind, Name: name, Start: start, Length: length}
	a.out.Segments = append(a.out.Segments, s)
	a.log.Printf("[merge] %s %q start: %d", kind, name, start)
	return s
}

func (a *assembler) planSegments() {
	cb := a.cb
	a.segment(SegmentBase, cb.MainFile, len(a.baseFrames()))
	for _, e := range cb.AppendList {
		a.segment(SegmentAppend, e.File, a.clips[e.File].FrameCount())
	}
	for _, m := range cb.MergeList {
		a.segment(SegmentMerge, m.Name, m.Length())
	}
	for _, p := range cb.PatchList {
		a.segment(SegmentPatch, p.Name, p.Length)
	}
}

func (a *assembler) assemble() error {
	cb := a.cb
	a.planSegments()

	total := 0
	for _, s := range a.out.Segments {
		total += s.Length
	}
	a.out.FrameCount = total

	base := a.baseFrames()
	bones := a.main.JointCount()
	a.out.Rotation = make([][]mgl32.Quat, bones)
	a.out.Translation = make([]mgl32.Vec3, 0, total)

	for bone := 0; bone < bones; bone++ {
		track := make([]mgl32.Quat, 0, total)
		top := a.top[bone]
		segs := a.out.Segments

		fail := func(s Segment, frame int, err error) error {
			return &SegmentError{Segment: fmt.Sprintf("%s %q", s.Kind, s.Name), Bone: bone, Frame: frame, Err: err}
		}

		for _, f := range base {
			q, err := a.reg.ApplyFixup(cb.FixRule, bone, a.main.JointRotation[bone][f], rules.Env{Source: a.main, SourceFrame: f, Target: a.main})
			if err != nil {
				return fail(segs[0], len(track), err)
			}
			track = append(track, q)
		}
		segs = segs[1:]

		for i, e := range cb.AppendList {
			src := a.clips[e.File]
			for f := 0; f < src.FrameCount(); f++ {
				q, err := a.sample(bone, e.ConvertRule, src, f, len(track))
				if err != nil {
					return fail(segs[i], len(track), err)
				}
				track = append(track, q)
			}
		}
		segs = segs[len(cb.AppendList):]

		for i := range cb.MergeList {
			file, frames, rule := cb.MergeList[i].Half(top)
			src := a.clips[file]
			for f := frames[0]; f < frames[1]; f++ {
				q, err := a.sample(bone, rule, src, f, len(track))
				if err != nil {
					return fail(segs[i], len(track), err)
				}
				track = append(track, q)
			}
		}
		segs = segs[len(cb.MergeList):]

		for i := range cb.PatchList {
			p := &cb.PatchList[i]
			start := len(track)

			file, frame, rule := p.FirstFrame.Half(top)
			first, err := a.sample(bone, rule, a.clips[file], frame, start)
			if err != nil {
				return fail(segs[i], start, err)
			}
			file, frame, rule = p.LastFrame.Half(top)
			last, err := a.sample(bone, rule, a.clips[file], frame, start+p.Length-1)
			if err != nil {
				return fail(segs[i], start+p.Length-1, err)
			}

			track = append(track, first)
			for f := 1; f < p.Length; f++ {
				track = append(track, last)
			}
		}

		if cb.PatchZero != nil && len(track) > 0 {
			q, err := a.zeroSample(bone)
			if err != nil {
				return &SegmentError{Segment: "patch_zero", Bone: bone, Frame: 0, Err: err}
			}
			track[0] = q
		}

		if len(track) != total {
			return errors.Errorf("bone %d: assembled %d frames, expected %d", bone, len(track), total)
		}
		a.out.Rotation[bone] = track
		if a.progress != nil {
			a.progress(bone+1, bones)
		}
	}

	a.assembleTranslation(base)
	return nil
}

// assembleTranslation sequences the root channel like the rotations, with
// no remap or fix-up
func (a *assembler) assembleTranslation(base []int) {
	cb := a.cb
	top := a.top[0]
	out := a.out.Translation

	for _, f := range base {
		out = append(out, a.main.RootTranslation[f])
	}
	for _, e := range cb.AppendList {
		out = append(out, a.clips[e.File].RootTranslation...)
	}
	for i := range cb.MergeList {
		file, frames, _ := cb.MergeList[i].Half(top)
		out = append(out, a.clips[file].RootTranslation[frames[0]:frames[1]]...)
	}
	for i := range cb.PatchList {
		p := &cb.PatchList[i]
		file, frame, _ := p.FirstFrame.Half(top)
		out = append(out, a.clips[file].RootTranslation[frame])
		file, frame, _ = p.LastFrame.Half(top)
		for f := 1; f < p.Length; f++ {
			out = append(out, a.clips[file].RootTranslation[frame])
		}
	}
	if cb.PatchZero != nil && len(out) > 0 {
		out[0] = a.clips[cb.PatchZero.File].RootTranslation[0]
	}
	a.out.Translation = out
}

// generatePatch produces frame 0 of the zero frame patch next to the fixed
// up first frame of the main clip, for authoring new patch clips
func (a *assembler) generatePatch() error {
	if a.main.FrameCount() == 0 {
		return cookbookErr(a.cb, "patch_zero", "generate_patch_file", "main clip %q has no frames", a.cb.MainFile)
	}

	a.segment(SegmentGenerate, a.cb.PatchZero.File, 2)
	a.out.FrameCount = 2

	bones := a.main.JointCount()
	a.out.Rotation = make([][]mgl32.Quat, bones)
	for bone := 0; bone < bones; bone++ {
		zero, err := a.zeroSample(bone)
		if err != nil {
			return &SegmentError{Segment: "patch_zero", Bone: bone, Frame: 0, Err: err}
		}
		fixed, err := a.reg.ApplyFixup(a.cb.FixRule, bone, a.main.JointRotation[bone][0], rules.Env{Source: a.main, SourceFrame: 0, Target: a.main})
		if err != nil {
			return &SegmentError{Segment: "patch_zero", Bone: bone, Frame: 1, Err: err}
		}
		a.out.Rotation[bone] = []mgl32.Quat{zero, fixed}
		if a.progress != nil {
			a.progress(bone+1, bones)
		}
	}

	a.out.Translation = []mgl32.Vec3{
		a.clips[a.cb.PatchZero.File].RootTranslation[0],
		a.main.RootTranslation[0],
	}
	return nil
}
