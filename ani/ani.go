// Package ani rewrites .ani animation descriptors: frame shifting of
// action blocks, duplicate block removal, dead frame stripping and
// sound event renaming.
//
// A descriptor is line based text:
//
//	animation = man.an
//	;ADD_FRAME=10
//	[walk]
//		start_time = 0
//		end_time = 24
//		event = "step", 12, normal
package ani

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/utils"
)

type ProcessOptions struct {
	// first frame per lower case block header ("[walk]"), used by Strip
	FirstFrames map[string]int
	// duplicate blocks are reported here
	Log *utils.Logger
}

type Result struct {
	// value of the animation line before the first block
	Animation string
	// Frames[i] is set when some block covers frame i
	Frames []bool
	// lower case block header to its (rewritten) start frame
	Blocks map[string]int
	// lower case headers of dropped duplicate blocks, in order
	Skipped []string
}

type processor struct {
	opts ProcessOptions
	out  *bufio.Writer
	res  *Result

	addFrame     *int
	firstFrame   *int
	prevFirst    *int
	ignore       bool
	passed       map[string]bool
	block        string
	inBlock      bool
	start, end   *int
	beforeBlocks bool
	line         int
}

func intPtr(i int) *int { return &i }

func (p *processor) errorf(format string, args ...interface{}) error {
	return errors.Errorf("line %d: "+format, append([]interface{}{p.line}, args...)...)
}

func (p *processor) write(s string) {
	if !p.ignore {
		p.out.WriteString(s)
	}
}

// blockFirstFrame applies the per block override when one is configured
func (p *processor) blockFirstFrame() error {
	if p.opts.FirstFrames == nil {
		return nil
	}
	if !p.inBlock {
		return p.errorf("frame outside of any block")
	}
	f, ok := p.opts.FirstFrames[p.block]
	if !ok {
		return p.errorf("block %s has no frame range", p.block)
	}
	p.firstFrame = intPtr(f)
	return nil
}

// shift moves a frame that belongs to the block started at prevFirst
func (p *processor) shift(frame int) (int, error) {
	if p.addFrame != nil {
		frame += *p.addFrame
	}
	if p.firstFrame != nil {
		if p.prevFirst == nil {
			return 0, p.errorf("frame before any start_time")
		}
		frame = frame - *p.prevFirst + *p.firstFrame
	}
	return frame, nil
}

func (p *processor) processLine(orig string) error {
	line := strings.TrimSpace(orig)
	kind, err := classify(line)
	if err != nil {
		return err
	}
	if kind == LINE_ANIMATION && !p.beforeBlocks {
		kind = LINE_TEXT
	}

	switch kind {
	case LINE_ANIMATION:
		v, err := value(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		p.res.Animation = v
		p.out.WriteString(strings.TrimRightFunc(orig, unicode.IsSpace) + "\n")
	case LINE_ADD_FRAME:
		n, err := directive(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		p.addFrame = intPtr(n)
	case LINE_FIRST_FRAME:
		n, err := directive(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		p.firstFrame = intPtr(n)
	case LINE_BLOCK:
		p.beforeBlocks = false
		p.ignore = false
		header := strings.ToLower(line)
		if p.passed[header] {
			p.opts.Log.Printf("skip: %q", header)
			p.res.Skipped = append(p.res.Skipped, header)
			p.ignore = true
		} else {
			p.passed[header] = true
			p.block = header
			p.inBlock = true
			p.start, p.end = nil, nil
			p.write(strings.TrimRightFunc(orig, unicode.IsSpace) + "\n")
		}
	case LINE_START_TIME:
		frame, err := intValue(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		p.prevFirst = intPtr(frame)
		if err := p.blockFirstFrame(); err != nil {
			return err
		}
		if p.addFrame != nil {
			frame += *p.addFrame
		}
		if p.firstFrame != nil {
			frame = *p.firstFrame
		}
		p.write("\tstart_time = " + strconv.Itoa(frame) + "\n")
		p.start = intPtr(frame)
	case LINE_END_TIME:
		frame, err := intValue(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		if err := p.blockFirstFrame(); err != nil {
			return err
		}
		if frame, err = p.shift(frame); err != nil {
			return err
		}
		p.write("\tend_time = " + strconv.Itoa(frame) + "\n")
		p.end = intPtr(frame)
	case LINE_EVENT:
		parts, err := eventParts(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		if len(parts) < 2 {
			return p.errorf("event without frame: %q", line)
		}
		frame, err := strconv.Atoi(parts[1])
		if err != nil {
			return p.errorf("bad event frame %q", parts[1])
		}
		if err := p.blockFirstFrame(); err != nil {
			return err
		}
		if frame, err = p.shift(frame); err != nil {
			return err
		}
		parts[1] = strconv.Itoa(frame)
		p.write(formatEvent(parts))
	default:
		p.write(strings.TrimRightFunc(orig, unicode.IsSpace) + "\n")
	}

	if p.start != nil && p.end != nil {
		if !p.ignore {
			if err := p.markFrames(*p.start, *p.end); err != nil {
				return err
			}
		}
		p.start, p.end = nil, nil
	}
	return nil
}

func (p *processor) markFrames(start, end int) error {
	if start < 0 || end < 0 {
		return p.errorf("negative frame range %d..%d", start, end)
	}
	for len(p.res.Frames) <= end {
		p.res.Frames = append(p.res.Frames, false)
	}
	for i := start; i <= end; i++ {
		p.res.Frames[i] = true
	}
	p.res.Blocks[p.block] = start
	return nil
}

// Process copies the descriptor from r to w shifting every block by the
// ;ADD_FRAME= and ;FIRST_FRAME= directives (or opts.FirstFrames) and
// dropping repeated blocks. Block ranges are inclusive.
func Process(r io.Reader, w io.Writer, opts ProcessOptions) (*Result, error) {
	p := &processor{
		opts:         opts,
		out:          bufio.NewWriter(w),
		res:          &Result{Blocks: make(map[string]int)},
		passed:       make(map[string]bool),
		beforeBlocks: true,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read descriptor")
	}
	if err := p.out.Flush(); err != nil {
		return nil, errors.Wrapf(err, "Failed to write descriptor")
	}
	return p.res, nil
}
