package ani

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	LINE_TEXT = iota
	LINE_ANIMATION
	LINE_ADD_FRAME
	LINE_FIRST_FRAME
	LINE_BLOCK
	LINE_START_TIME
	LINE_END_TIME
	LINE_EVENT
)

var lexer *lexmachine.Lexer

// Every pattern is anchored at the line start and LINE_TEXT matches any
// line, so the first token always spans the whole line. Ties go to the
// pattern added first.
func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`animation[^\n]*`), getToken(LINE_ANIMATION))
	lexer.Add([]byte(`;ADD_FRAME=[^\n]*`), getToken(LINE_ADD_FRAME))
	lexer.Add([]byte(`;FIRST_FRAME=[^\n]*`), getToken(LINE_FIRST_FRAME))
	lexer.Add([]byte(`\[[^\n]*\]`), getToken(LINE_BLOCK))
	lexer.Add([]byte(`start_time[^\n]*`), getToken(LINE_START_TIME))
	lexer.Add([]byte(`end_time[^\n]*`), getToken(LINE_END_TIME))
	lexer.Add([]byte(`event[^\n]*`), getToken(LINE_EVENT))
	lexer.Add([]byte(`[^\n]+`), getToken(LINE_TEXT))
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

// classify expects a trimmed line
func classify(line string) (int, error) {
	if line == "" {
		return LINE_TEXT, nil
	}
	scanner, err := lexer.Scanner([]byte(line))
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to create lexer scanner")
	}
	itok, err, eos := scanner.Next()
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to classify %q", line)
	}
	if eos {
		return LINE_TEXT, nil
	}
	return itok.(*lexmachine.Token).Type, nil
}

// value returns the text after '=' without the trailing ';' comment
func value(line string) (string, error) {
	parts := strings.Split(line, "=")
	if len(parts) < 2 {
		return "", errors.Errorf("Missed '=' in %q", line)
	}
	return strings.TrimSpace(strings.SplitN(parts[1], ";", 2)[0]), nil
}

func intValue(line string) (int, error) {
	v, err := value(line)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Errorf("Bad frame number in %q", line)
	}
	return i, nil
}

// directive parses ';NAME=123'
func directive(line string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(line[strings.IndexByte(line, '=')+1:]))
	if err != nil {
		return 0, errors.Errorf("Bad directive %q", line)
	}
	return i, nil
}

// eventParts splits 'event = "name", frame, ...' into trimmed fields
func eventParts(line string) ([]string, error) {
	v, err := value(line)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func formatEvent(parts []string) string {
	return "\tevent = " + strings.Join(parts, ", ") + "\n"
}
