package cookbook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullCookbook = `{
	"main_file": "man.an",
	"top_nodes": [11, 12, 13],
	"default_frame": 4,
	"frame_ranges": [[0, 10], [20, 25]],
	"patch_zero": {"file": "zero.an", "convert_rule": "woman_to_man"},
	"fix_rule": "hand_make_straight",
	"append_list": [
		{"file": "walk.an", "convert_rule": null},
		{"file": "run.an", "convert_rule": "danny_to_man"}
	],
	"merge_list": [
		{"name": "wave", "top_file": "wave.an", "top_frames": [5, 15], "top_convert_rule": null,
		 "bottom_file": "walk.an", "bottom_frames": [0, 10], "bottom_convert_rule": "danny_to_man"}
	],
	"patch_list": [
		{"name": "to fight", "length": 4,
		 "first_frame": {"top_file": "run.an", "top_frame": 3, "top_convert_rule": null,
		                 "bottom_file": "run.an", "bottom_frame": 3, "bottom_convert_rule": null},
		 "last_frame": {"top_file": "fight.an", "top_frame": 0, "top_convert_rule": null,
		                "bottom_file": "man.an", "bottom_frame": 1, "bottom_convert_rule": null}}
	]
}`

func TestLoadFull(t *testing.T) {
	cb, err := Load("man.json", []byte(fullCookbook))
	require.NoError(t, err)

	assert.Equal(t, "man.an", cb.MainFile)
	assert.Equal(t, 4, cb.DefaultFrame)
	assert.Equal(t, [][2]int{{0, 10}, {20, 25}}, cb.FrameRanges)
	require.NotNil(t, cb.PatchZero)
	assert.Equal(t, "woman_to_man", *cb.PatchZero.ConvertRule)
	assert.Equal(t, "hand_make_straight", *cb.FixRule)
	require.Len(t, cb.AppendList, 2)
	assert.Nil(t, cb.AppendList[0].ConvertRule)
	require.Len(t, cb.MergeList, 1)
	assert.Equal(t, 10, cb.MergeList[0].Length())
	require.Len(t, cb.PatchList, 1)
	assert.Equal(t, "fight.an", cb.PatchList[0].LastFrame.TopFile)

	assert.Equal(t, []string{"man.an", "zero.an", "walk.an", "run.an", "wave.an", "fight.an"}, cb.Files())
	assert.Equal(t, map[int]bool{11: true, 12: true, 13: true}, cb.TopSet())
	uses := cb.Rules()
	assert.Len(t, uses, 1+2+2+4)
	assert.Equal(t, "patch_zero", uses[0].Entry)
	assert.Equal(t, "append_list[1]", uses[2].Entry)
	assert.Equal(t, "run.an", uses[2].File)
}

func TestLoadYAML(t *testing.T) {
	src := `
main_file: man.an
top_nodes: []
default_frame: 0
append_list:
  - file: walk.an
    convert_rule: null
merge_list:
  - name: wave
    top_file: wave.an
    top_frames: [0, 3]
    bottom_file: walk.an
    bottom_frames: [2, 5]
`
	cb, err := Load("man.yaml", []byte(src))
	require.NoError(t, err)
	assert.Nil(t, cb.FrameRanges)
	assert.Empty(t, cb.TopNodes)
	assert.Equal(t, [2]int{2, 5}, cb.MergeList[0].BottomFrames)
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		src   string
		field string
	}{
		{"missing main", `{"top_nodes": [], "default_frame": 0}`, "main_file"},
		{"missing top", `{"main_file": "a.an", "default_frame": 0}`, "top_nodes"},
		{"missing default", `{"main_file": "a.an", "top_nodes": []}`, "default_frame"},
		{"negative default", `{"main_file": "a.an", "top_nodes": [], "default_frame": -1}`, "default_frame"},
		{"empty range", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0, "frame_ranges": [[4, 4]]}`, ""},
		{"range arity", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0, "frame_ranges": [[1, 2, 3]]}`, ""},
		{"merge mismatch", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0, "merge_list": [
			{"name": "m", "top_file": "a.an", "top_frames": [0, 10], "bottom_file": "a.an", "bottom_frames": [0, 5]}]}`, "bottom_frames"},
		{"merge file", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0, "merge_list": [
			{"name": "m", "top_frames": [0, 1], "bottom_file": "a.an", "bottom_frames": [0, 1]}]}`, "top_file"},
		{"short patch", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0, "patch_list": [
			{"name": "p", "length": 1,
			 "first_frame": {"top_file": "a.an", "top_frame": 0, "bottom_file": "a.an", "bottom_frame": 0},
			 "last_frame": {"top_file": "a.an", "top_frame": 0, "bottom_file": "a.an", "bottom_frame": 0}}]}`, "length"},
		{"patch pose", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0, "patch_list": [
			{"name": "p", "length": 3,
			 "first_frame": {"top_file": "a.an", "top_frame": 0, "bottom_file": "a.an", "bottom_frame": 0}}]}`, "last_frame"},
		{"generate without file", `{"main_file": "a.an", "top_nodes": [], "default_frame": 0,
			"patch_zero": {"generate_patch_file": true}}`, "file"},
		{"syntax", `{"main_file": `, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load("bad.json", []byte(tc.src))
			require.Error(t, err)

			var ce *CookbookError
			require.True(t, errors.As(err, &ce), "%T %v", err, err)
			assert.Equal(t, tc.field, ce.Field)
			assert.Equal(t, "CookbookError", ce.Kind())
		})
	}
}

func TestErrorNamesEntry(t *testing.T) {
	err := &CookbookError{Cookbook: "x.json", Entry: `merge_list[1] "wave"`, Field: "bottom_frames", Msg: "frame count mismatch: top 10, bottom 5"}
	assert.Equal(t, `cookbook "x.json" merge_list[1] "wave" bottom_frames: frame count mismatch: top 10, bottom 5`, err.Error())
}

func TestMarshalRoundTrip(t *testing.T) {
	cb, err := Load("man.json", []byte(fullCookbook))
	require.NoError(t, err)

	for _, name := range []string{"copy.json", "copy.yaml"} {
		data, err := cb.Marshal(name)
		require.NoError(t, err, name)

		back, err := Load(name, data)
		require.NoError(t, err, "%s:\n%s", name, data)
		back.Name = cb.Name
		assert.Equal(t, cb, back, name)
	}
}
