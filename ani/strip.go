package ani

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/cookbook"
	"github.com/mogaika/anmerge/utils"
)

// FrameRuns converts a used frame mask into [start, end) runs
func FrameRuns(frames []bool) [][2]int {
	runs := make([][2]int, 0)
	start := -1
	for i, used := range frames {
		if used && start < 0 {
			start = i
		} else if !used && start >= 0 {
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(frames)})
	}
	return runs
}

// Strip removes frames no block uses. The descriptor is renumbered so
// blocks point into the compacted clip and the returned cookbook cuts
// that clip out of the original animation. Frame 0 is always kept.
func Strip(r io.Reader, w io.Writer, log *utils.Logger) (*cookbook.Cookbook, error) {
	var first bytes.Buffer
	res, err := Process(r, &first, ProcessOptions{Log: log})
	if err != nil {
		return nil, err
	}
	if res.Animation == "" {
		return nil, errors.Errorf("Descriptor has no animation line")
	}

	frames := res.Frames
	if len(frames) == 0 {
		frames = []bool{true}
	}
	frames[0] = true

	// position of each kept frame in the compacted clip
	newIndex := make([]int, len(frames))
	kept := 0
	for i, used := range frames {
		newIndex[i] = kept
		if used {
			kept++
		}
	}

	firstFrames := make(map[string]int, len(res.Blocks))
	for block, start := range res.Blocks {
		firstFrames[block] = newIndex[start]
	}
	if _, err := Process(&first, w, ProcessOptions{FirstFrames: firstFrames, Log: log}); err != nil {
		return nil, errors.Wrapf(err, "Failed to renumber descriptor")
	}

	return &cookbook.Cookbook{
		MainFile:     res.Animation,
		TopNodes:     []int{},
		DefaultFrame: 0,
		FrameRanges:  FrameRuns(frames),
	}, nil
}

// SubAnimSuffixes are the copies the game expects next to a character
// descriptor, one per sub animation slot
var SubAnimSuffixes = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14", "15", "90"}

// SubAnimFiles names the per slot copies of descriptor name ("man.ani" or "man")
func SubAnimFiles(name string) []string {
	base := strings.TrimSuffix(name, ".ani")
	result := make([]string, len(SubAnimSuffixes))
	for i, s := range SubAnimSuffixes {
		result[i] = base + "_" + s + ".ani"
	}
	return result
}
