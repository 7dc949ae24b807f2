package web

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/anmerge/an"
	"github.com/mogaika/anmerge/ani"
	"github.com/mogaika/anmerge/config"
	"github.com/mogaika/anmerge/cookbook"
	"github.com/mogaika/anmerge/export"
	"github.com/mogaika/anmerge/merge"
	"github.com/mogaika/anmerge/utils"
	"github.com/mogaika/anmerge/vfs"
	"github.com/mogaika/anmerge/webutils"
)

const maxCookbookSize = 1 << 20

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func (s *Server) listFiles(exts ...string) ([]string, error) {
	files, err := s.Dir.List()
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(files))
	for _, f := range files {
		if hasExt(f, exts...) {
			result = append(result, f)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (s *Server) clipHeader(name string) (an.Header, error) {
	f, err := vfs.DirectoryGetFile(s.Dir, name)
	if err != nil {
		return an.Header{}, err
	}
	r, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		return an.Header{}, err
	}
	defer f.Close()
	h, err := an.ReadHeader(r)
	h.Name = name
	return h, err
}

func (s *Server) HandlerAjaxClips(w http.ResponseWriter, r *http.Request) {
	files, err := s.listFiles(".an")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	headers := make([]an.Header, 0, len(files))
	for _, file := range files {
		h, err := s.clipHeader(file)
		if err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "clip %q", file))
			return
		}
		headers = append(headers, h)
	}
	webutils.WriteJson(w, headers)
}

type ClipInfo struct {
	an.Header
	ParentIndex       []int32
	RestPosition      []mgl32.Vec3
	WorldRestPosition []mgl32.Vec3
	Frame             int
	// w, x, y, z per joint at Frame
	Rotation [][4]float32
}

func (s *Server) HandlerAjaxClip(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	c, err := merge.NewDirStore(s.Dir).Clip(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	frame := 0
	if v := r.URL.Query().Get("frame"); v != "" {
		if frame, err = strconv.Atoi(v); err != nil {
			webutils.WriteError(w, errors.Errorf("frame %q is not integer", v))
			return
		}
	}

	info := &ClipInfo{
		Header:            c.Header(),
		ParentIndex:       c.ParentIndex,
		RestPosition:      c.RestPosition,
		WorldRestPosition: c.WorldRestPosition,
		Frame:             frame,
	}
	if c.FrameCount() > 0 {
		sub, err := c.SubClip(frame, frame+1)
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		for _, track := range sub.JointRotation {
			info.Rotation = append(info.Rotation, utils.QuatToWXYZ(track[0]))
		}
	}
	webutils.WriteJson(w, info)
}

func (s *Server) HandlerAjaxCookbooks(w http.ResponseWriter, r *http.Request) {
	if files, err := s.listFiles(".json", ".yaml", ".yml"); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

// loadCookbook reads the posted recipe, or the named file for GET
func (s *Server) loadCookbook(r *http.Request, file string) (*cookbook.Cookbook, error) {
	var data []byte
	var err error
	if r.Method == http.MethodPost {
		data, err = io.ReadAll(io.LimitReader(r.Body, maxCookbookSize))
	} else {
		data, err = vfs.ReadFile(s.Dir, file)
	}
	if err != nil {
		return nil, err
	}
	return cookbook.Load(file, data)
}

func (s *Server) assemble(r *http.Request, file string) (*merge.Timeline, error) {
	cb, err := s.loadCookbook(r, file)
	if err != nil {
		return nil, err
	}
	s.Status.Info("Assembling %s", file)
	t, err := merge.Assemble(cb, merge.NewDirStore(s.Dir), s.Registry,
		merge.WithProgress(s.Status.MergeProgress(file)))
	if err != nil {
		s.Status.Error("%s: %v", file, err)
		return nil, err
	}
	s.Status.Info("%s: %d frames", file, t.FrameCount)
	return t, nil
}

type TimelineInfo struct {
	Name     string
	FPS      float32
	Frames   int
	Bones    int
	Segments []merge.Segment
	Report   string
}

func (s *Server) HandlerAjaxCookbook(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	t, err := s.assemble(r, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &TimelineInfo{
		Name:     t.Name,
		FPS:      t.FPS,
		Frames:   t.FrameCount,
		Bones:    t.BoneCount(),
		Segments: t.Segments,
		Report:   t.Report(),
	})
}

func (s *Server) HandlerDumpCookbook(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	format := mux.Vars(r)["format"]
	sink, err := export.Lookup(format)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	t, err := s.assemble(r, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := sink.WriteTimeline(&buf, t); err != nil {
		webutils.WriteError(w, err)
		return
	}
	name := strings.TrimSuffix(file, filepath.Ext(file)) + "." + strings.ToLower(format)
	webutils.WriteFile(w, &buf, name, export.ContentType(strings.ToLower(format)))
}

type RulesInfo struct {
	// table name to number of mapped bones
	Remaps map[string]int
	// set name to bones with a fix-up
	Fixups map[string][]int
}

func (s *Server) HandlerAjaxRules(w http.ResponseWriter, r *http.Request) {
	info := &RulesInfo{
		Remaps: make(map[string]int),
		Fixups: make(map[string][]int),
	}
	for _, name := range s.Registry.RemapNames() {
		info.Remaps[name] = len(s.Registry.Remaps[name])
	}
	for _, name := range s.Registry.FixupNames() {
		info.Fixups[name] = s.Registry.Fixups[name].Bones()
	}
	webutils.WriteJson(w, info)
}

func (s *Server) HandlerDumpRules(w http.ResponseWriter, r *http.Request) {
	data, err := yaml.Marshal(s.Registry)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to marshal rules"))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(data), "rules.yaml", "application/yaml")
}

type AniInfo struct {
	Animation   string
	Blocks      map[string]int
	FrameRanges [][2]int
	Skipped     []string
}

func (s *Server) HandlerAjaxAni(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := vfs.ReadFile(s.Dir, file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	res, err := ani.Process(config.TextReader(bytes.NewReader(data)), io.Discard, ani.ProcessOptions{})
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "%s", file))
		return
	}
	webutils.WriteJson(w, &AniInfo{
		Animation:   res.Animation,
		Blocks:      res.Blocks,
		FrameRanges: ani.FrameRuns(res.Frames),
		Skipped:     res.Skipped,
	})
}
