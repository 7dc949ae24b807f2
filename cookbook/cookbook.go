// Package cookbook describes how one output clip is assembled from the main
// clip and a list of append, merge and patch segments.
package cookbook

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type PatchZero struct {
	File              string  `json:"file" yaml:"file"`
	ConvertRule       *string `json:"convert_rule" yaml:"convert_rule"`
	GeneratePatchFile bool    `json:"generate_patch_file,omitempty" yaml:"generate_patch_file,omitempty"`
}

type Append struct {
	File        string  `json:"file" yaml:"file"`
	ConvertRule *string `json:"convert_rule" yaml:"convert_rule"`
}

// Merge plays TopFrames of TopFile on the top nodes and BottomFrames of
// BottomFile on the rest, side by side. Ranges are [start, end).
type Merge struct {
	Name              string  `json:"name" yaml:"name"`
	TopFile           string  `json:"top_file" yaml:"top_file"`
	TopFrames         [2]int  `json:"top_frames" yaml:"top_frames,flow"`
	TopConvertRule    *string `json:"top_convert_rule" yaml:"top_convert_rule"`
	BottomFile        string  `json:"bottom_file" yaml:"bottom_file"`
	BottomFrames      [2]int  `json:"bottom_frames" yaml:"bottom_frames,flow"`
	BottomConvertRule *string `json:"bottom_convert_rule" yaml:"bottom_convert_rule"`
}

func (m *Merge) Length() int { return m.TopFrames[1] - m.TopFrames[0] }

type PatchPose struct {
	TopFile           string  `json:"top_file" yaml:"top_file"`
	TopFrame          int     `json:"top_frame" yaml:"top_frame"`
	TopConvertRule    *string `json:"top_convert_rule" yaml:"top_convert_rule"`
	BottomFile        string  `json:"bottom_file" yaml:"bottom_file"`
	BottomFrame       int     `json:"bottom_frame" yaml:"bottom_frame"`
	BottomConvertRule *string `json:"bottom_convert_rule" yaml:"bottom_convert_rule"`
}

// Half picks the file, frame and rule for the top or bottom bone set
func (p *PatchPose) Half(top bool) (file string, frame int, rule *string) {
	if top {
		return p.TopFile, p.TopFrame, p.TopConvertRule
	}
	return p.BottomFile, p.BottomFrame, p.BottomConvertRule
}

// Half picks the file, range and rule for the top or bottom bone set
func (m *Merge) Half(top bool) (file string, frames [2]int, rule *string) {
	if top {
		return m.TopFile, m.TopFrames, m.TopConvertRule
	}
	return m.BottomFile, m.BottomFrames, m.BottomConvertRule
}

type Patch struct {
	Name       string    `json:"name" yaml:"name"`
	Length     int       `json:"length" yaml:"length"`
	FirstFrame PatchPose `json:"first_frame" yaml:"first_frame"`
	LastFrame  PatchPose `json:"last_frame" yaml:"last_frame"`
}

type Cookbook struct {
	// source file name, not part of the recipe
	Name string `json:"-" yaml:"-"`

	MainFile       string `json:"main_file" yaml:"main_file"`
	IgnoreOriginal bool   `json:"ignore_original,omitempty" yaml:"ignore_original,omitempty"`
	TopNodes       []int  `json:"top_nodes" yaml:"top_nodes,flow"`
	DefaultFrame   int    `json:"default_frame" yaml:"default_frame"`
	// nil when the whole main clip is used
	FrameRanges [][2]int   `json:"frame_ranges,omitempty" yaml:"frame_ranges,omitempty"`
	PatchZero   *PatchZero `json:"patch_zero,omitempty" yaml:"patch_zero,omitempty"`
	FixRule     *string    `json:"fix_rule,omitempty" yaml:"fix_rule,omitempty"`
	AppendList  []Append   `json:"append_list,omitempty" yaml:"append_list,omitempty"`
	MergeList   []Merge    `json:"merge_list,omitempty" yaml:"merge_list,omitempty"`
	PatchList   []Patch    `json:"patch_list,omitempty" yaml:"patch_list,omitempty"`
}

// raw forms keep track of which fields were present
type rawPatchPose struct {
	TopFile           *string `json:"top_file" yaml:"top_file"`
	TopFrame          *int    `json:"top_frame" yaml:"top_frame"`
	TopConvertRule    *string `json:"top_convert_rule" yaml:"top_convert_rule"`
	BottomFile        *string `json:"bottom_file" yaml:"bottom_file"`
	BottomFrame       *int    `json:"bottom_frame" yaml:"bottom_frame"`
	BottomConvertRule *string `json:"bottom_convert_rule" yaml:"bottom_convert_rule"`
}

type rawPatch struct {
	Name       string        `json:"name" yaml:"name"`
	Length     *int          `json:"length" yaml:"length"`
	FirstFrame *rawPatchPose `json:"first_frame" yaml:"first_frame"`
	LastFrame  *rawPatchPose `json:"last_frame" yaml:"last_frame"`
}

type rawMerge struct {
	Name              string  `json:"name" yaml:"name"`
	TopFile           *string `json:"top_file" yaml:"top_file"`
	TopFrames         []int   `json:"top_frames" yaml:"top_frames"`
	TopConvertRule    *string `json:"top_convert_rule" yaml:"top_convert_rule"`
	BottomFile        *string `json:"bottom_file" yaml:"bottom_file"`
	BottomFrames      []int   `json:"bottom_frames" yaml:"bottom_frames"`
	BottomConvertRule *string `json:"bottom_convert_rule" yaml:"bottom_convert_rule"`
}

type rawAppend struct {
	File        *string `json:"file" yaml:"file"`
	ConvertRule *string `json:"convert_rule" yaml:"convert_rule"`
}

type rawPatchZero struct {
	File              *string `json:"file" yaml:"file"`
	ConvertRule       *string `json:"convert_rule" yaml:"convert_rule"`
	GeneratePatchFile bool    `json:"generate_patch_file" yaml:"generate_patch_file"`
}

type rawCookbook struct {
	MainFile       *string       `json:"main_file" yaml:"main_file"`
	IgnoreOriginal bool          `json:"ignore_original" yaml:"ignore_original"`
	TopNodes       *[]int        `json:"top_nodes" yaml:"top_nodes"`
	DefaultFrame   *int          `json:"default_frame" yaml:"default_frame"`
	FrameRanges    *[][]int      `json:"frame_ranges" yaml:"frame_ranges"`
	PatchZero      *rawPatchZero `json:"patch_zero" yaml:"patch_zero"`
	FixRule        *string       `json:"fix_rule" yaml:"fix_rule"`
	AppendList     []rawAppend   `json:"append_list" yaml:"append_list"`
	MergeList      []rawMerge    `json:"merge_list" yaml:"merge_list"`
	PatchList      []rawPatch    `json:"patch_list" yaml:"patch_list"`
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load decodes a JSON cookbook, or YAML when name has a .yaml/.yml extension
func Load(name string, data []byte) (*Cookbook, error) {
	var raw rawCookbook
	var err error
	if isYAML(name) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, &CookbookError{Cookbook: name, Msg: err.Error()}
	}

	cb, err := raw.convert(name)
	if err != nil {
		return nil, err
	}
	if err := cb.Validate(); err != nil {
		return nil, err
	}
	return cb, nil
}

func pair(v []int, cb, entry, field string) ([2]int, error) {
	if len(v) != 2 {
		return [2]int{}, &CookbookError{Cookbook: cb, Entry: entry, Field: field,
			Msg: fmt.Sprintf("expected [start, end], got %d values", len(v))}
	}
	return [2]int{v[0], v[1]}, nil
}

func (r *rawCookbook) convert(name string) (*Cookbook, error) {
	missing := func(entry, field string) error {
		return &CookbookError{Cookbook: name, Entry: entry, Field: field, Msg: "required field is missing"}
	}

	if r.MainFile == nil {
		return nil, missing("", "main_file")
	}
	if r.TopNodes == nil {
		return nil, missing("", "top_nodes")
	}
	if r.DefaultFrame == nil {
		return nil, missing("", "default_frame")
	}

	cb := &Cookbook{
		Name:           name,
		MainFile:       *r.MainFile,
		IgnoreOriginal: r.IgnoreOriginal,
		TopNodes:       *r.TopNodes,
		DefaultFrame:   *r.DefaultFrame,
		FixRule:        r.FixRule,
	}
	if cb.TopNodes == nil {
		cb.TopNodes = []int{}
	}

	if r.FrameRanges != nil {
		cb.FrameRanges = make([][2]int, len(*r.FrameRanges))
		for i, fr := range *r.FrameRanges {
			p, err := pair(fr, name, fmt.Sprintf("frame_ranges[%d]", i), "")
			if err != nil {
				return nil, err
			}
			cb.FrameRanges[i] = p
		}
	}

	if pz := r.PatchZero; pz != nil {
		cb.PatchZero = &PatchZero{ConvertRule: pz.ConvertRule, GeneratePatchFile: pz.GeneratePatchFile}
		if pz.File != nil {
			cb.PatchZero.File = *pz.File
		}
	}

	for i, a := range r.AppendList {
		if a.File == nil {
			return nil, missing(fmt.Sprintf("append_list[%d]", i), "file")
		}
		cb.AppendList = append(cb.AppendList, Append{File: *a.File, ConvertRule: a.ConvertRule})
	}

	for i, m := range r.MergeList {
		entry := entryName("merge_list", i, m.Name)
		if m.TopFile == nil {
			return nil, missing(entry, "top_file")
		}
		if m.BottomFile == nil {
			return nil, missing(entry, "bottom_file")
		}
		top, err := pair(m.TopFrames, name, entry, "top_frames")
		if err != nil {
			return nil, err
		}
		bottom, err := pair(m.BottomFrames, name, entry, "bottom_frames")
		if err != nil {
			return nil, err
		}
		cb.MergeList = append(cb.MergeList, Merge{
			Name:              m.Name,
			TopFile:           *m.TopFile,
			TopFrames:         top,
			TopConvertRule:    m.TopConvertRule,
			BottomFile:        *m.BottomFile,
			BottomFrames:      bottom,
			BottomConvertRule: m.BottomConvertRule,
		})
	}

	for i, p := range r.PatchList {
		entry := entryName("patch_list", i, p.Name)
		if p.Length == nil {
			return nil, missing(entry, "length")
		}
		patch := Patch{Name: p.Name, Length: *p.Length}
		for _, pose := range []struct {
			field string
			raw   *rawPatchPose
			out   *PatchPose
		}{
			{"first_frame", p.FirstFrame, &patch.FirstFrame},
			{"last_frame", p.LastFrame, &patch.LastFrame},
		} {
			if pose.raw == nil {
				return nil, missing(entry, pose.field)
			}
			for _, f := range []struct {
				name string
				ok   bool
			}{
				{"top_file", pose.raw.TopFile != nil},
				{"top_frame", pose.raw.TopFrame != nil},
				{"bottom_file", pose.raw.BottomFile != nil},
				{"bottom_frame", pose.raw.BottomFrame != nil},
			} {
				if !f.ok {
					return nil, missing(entry, pose.field+"."+f.name)
				}
			}
			*pose.out = PatchPose{
				TopFile:           *pose.raw.TopFile,
				TopFrame:          *pose.raw.TopFrame,
				TopConvertRule:    pose.raw.TopConvertRule,
				BottomFile:        *pose.raw.BottomFile,
				BottomFrame:       *pose.raw.BottomFrame,
				BottomConvertRule: pose.raw.BottomConvertRule,
			}
		}
		cb.PatchList = append(cb.PatchList, patch)
	}

	return cb, nil
}

func entryName(list string, i int, name string) string {
	if name == "" {
		return fmt.Sprintf("%s[%d]", list, i)
	}
	return fmt.Sprintf("%s[%d] %q", list, i, name)
}

// Validate checks everything that can be checked without the clips
func (cb *Cookbook) Validate() error {
	fail := func(entry, field, format string, args ...interface{}) error {
		return &CookbookError{Cookbook: cb.Name, Entry: entry, Field: field, Msg: fmt.Sprintf(format, args...)}
	}

	if cb.MainFile == "" {
		return fail("", "main_file", "empty file name")
	}
	if cb.DefaultFrame < 0 {
		return fail("", "default_frame", "negative frame %d", cb.DefaultFrame)
	}
	for _, n := range cb.TopNodes {
		if n < 0 {
			return fail("", "top_nodes", "negative bone %d", n)
		}
	}
	for i, r := range cb.FrameRanges {
		if r[0] < 0 || r[0] >= r[1] {
			return fail(fmt.Sprintf("frame_ranges[%d]", i), "", "range [%d, %d) is empty or negative", r[0], r[1])
		}
	}
	if pz := cb.PatchZero; pz != nil && pz.File == "" {
		if pz.GeneratePatchFile {
			return fail("patch_zero", "file", "generate_patch_file requires a patch file")
		}
		return fail("patch_zero", "file", "empty file name")
	}
	for i, a := range cb.AppendList {
		if a.File == "" {
			return fail(fmt.Sprintf("append_list[%d]", i), "file", "empty file name")
		}
	}
	for i := range cb.MergeList {
		m := &cb.MergeList[i]
		entry := entryName("merge_list", i, m.Name)
		if m.TopFile == "" {
			return fail(entry, "top_file", "empty file name")
		}
		if m.BottomFile == "" {
			return fail(entry, "bottom_file", "empty file name")
		}
		for _, fr := range []struct {
			field string
			r     [2]int
		}{{"top_frames", m.TopFrames}, {"bottom_frames", m.BottomFrames}} {
			if fr.r[0] < 0 || fr.r[0] > fr.r[1] {
				return fail(entry, fr.field, "invalid range [%d, %d)", fr.r[0], fr.r[1])
			}
		}
		top, bottom := m.TopFrames[1]-m.TopFrames[0], m.BottomFrames[1]-m.BottomFrames[0]
		if top != bottom {
			return fail(entry, "bottom_frames", "frame count mismatch: top %d, bottom %d", top, bottom)
		}
	}
	for i := range cb.PatchList {
		p := &cb.PatchList[i]
		entry := entryName("patch_list", i, p.Name)
		if p.Length < 2 {
			return fail(entry, "length", "patch needs at least 2 frames, got %d", p.Length)
		}
		for _, pose := range []struct {
			field string
			p     *PatchPose
		}{{"first_frame", &p.FirstFrame}, {"last_frame", &p.LastFrame}} {
			if pose.p.TopFile == "" || pose.p.BottomFile == "" {
				return fail(entry, pose.field, "both top_file and bottom_file are required")
			}
			if pose.p.TopFrame < 0 || pose.p.BottomFrame < 0 {
				return fail(entry, pose.field, "negative frame")
			}
		}
	}
	return nil
}

// Files lists every referenced clip in order of first reference
func (cb *Cookbook) Files() []string {
	seen := make(map[string]bool)
	var files []string
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				files = append(files, n)
			}
		}
	}

	add(cb.MainFile)
	if cb.PatchZero != nil {
		add(cb.PatchZero.File)
	}
	for _, a := range cb.AppendList {
		add(a.File)
	}
	for _, m := range cb.MergeList {
		add(m.TopFile, m.BottomFile)
	}
	for _, p := range cb.PatchList {
		add(p.FirstFrame.TopFile, p.FirstFrame.BottomFile, p.LastFrame.TopFile, p.LastFrame.BottomFile)
	}
	return files
}

// RuleUse is one remap rule reference. Entry and Field locate it the way
// CookbookError does.
type RuleUse struct {
	Entry string
	Field string
	File  string
	Rule  *string
}

// Rules lists every remap rule referenced by a segment
func (cb *Cookbook) Rules() []RuleUse {
	var uses []RuleUse
	if pz := cb.PatchZero; pz != nil {
		uses = append(uses, RuleUse{"patch_zero", "convert_rule", pz.File, pz.ConvertRule})
	}
	for i, a := range cb.AppendList {
		uses = append(uses, RuleUse{entryName("append_list", i, ""), "convert_rule", a.File, a.ConvertRule})
	}
	for i := range cb.MergeList {
		m := &cb.MergeList[i]
		entry := entryName("merge_list", i, m.Name)
		uses = append(uses,
			RuleUse{entry, "top_convert_rule", m.TopFile, m.TopConvertRule},
			RuleUse{entry, "bottom_convert_rule", m.BottomFile, m.BottomConvertRule})
	}
	for i := range cb.PatchList {
		p := &cb.PatchList[i]
		entry := entryName("patch_list", i, p.Name)
		for _, pose := range []struct {
			field string
			pose  *PatchPose
		}{{"first_frame", &p.FirstFrame}, {"last_frame", &p.LastFrame}} {
			uses = append(uses,
				RuleUse{entry, pose.field + ".top_convert_rule", pose.pose.TopFile, pose.pose.TopConvertRule},
				RuleUse{entry, pose.field + ".bottom_convert_rule", pose.pose.BottomFile, pose.pose.BottomConvertRule})
		}
	}
	return uses
}

func (cb *Cookbook) TopSet() map[int]bool {
	set := make(map[int]bool, len(cb.TopNodes))
	for _, n := range cb.TopNodes {
		set[n] = true
	}
	return set
}

// Marshal encodes the recipe as YAML or indented JSON depending on name
func (cb *Cookbook) Marshal(name string) ([]byte, error) {
	if isYAML(name) {
		return yaml.Marshal(cb)
	}
	data, err := json.MarshalIndent(cb, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
