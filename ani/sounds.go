package ani

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

func sound(name string) *string { return &name }

// ManToWomanSounds maps male sound events to female ones. Nil drops the event.
func ManToWomanSounds() map[string]*string {
	return map[string]*string{
		"sndalliace_attack_break":    sound("SndAlliace_W_attack_break"),
		"sndalliace_attack_feintc":   sound("SndAlliace_W_attack_feintc"),
		"sndalliace_attack_parry":    sound("SndAlliace_W_attack_parry"),
		"sndalliace_attack_round":    sound("SndAlliace_W_attack_round"),
		"sndalliace_attack_slash1":   sound("SndAlliace_W_attack_slash1"),
		"sndalliace_attack_slash2":   sound("SndAlliace_W_attack_slash2"),
		"sndalliace_attack_thrust1":  sound("SndAlliace_W_attack_thrust1"),
		"sndalliace_attack_thrust2":  sound("SndAlliace_W_attack_thrust2"),
		"sndalliace_blockbreak":      sound("SndAlliace_W_blockbreak"),
		"sndalliace_catchfly":        nil,
		"sndalliace_n_afraid":        nil,
		"sndalliace_n_afraid_death1": sound("SndAlliace_W_deathafraid1"),
		"sndalliace_n_fight_death1":  sound("SndAlliace_W_fight_death1"),
		"sndalliace_n_fight_death2":  sound("SndAlliace_W_fight_death2"),
		"sndalliace_n_fight_death3":  sound("SndAlliace_W_fight_death3"),
		"sndalliace_n_fight_death4":  sound("SndAlliace_W_fight_death4"),
		"sndalliace_sitdeath":        sound("SndAlliace_W_death1"),
		"sndalliace_death1":          sound("SndAlliace_W_death1"),
		"sndalliace_death2":          sound("SndAlliace_W_death2"),
		"sndalliace_death3":          sound("SndAlliace_W_death3"),
		"sndalliace_death4":          sound("SndAlliace_W_death4"),
		"sndalliace_barmen2table":    nil,
		"sndalliace_citizen_death1":  sound("SndAlliace_W_death1"),
		"sndalliace_citizen_death2":  sound("SndAlliace_W_death2"),
		"sndalliace_cit_common":      nil,
		"sndalliace_hitnofight":      sound("SndAlliace_W_manhit"),
		"sndalliace_manhit":          sound("SndAlliace_W_manhit"),
		"sndalliace_manzapad":        nil,
	}
}

// ReplaceEvents renames quoted event keys found in table (lower case keys).
// Events mapped to nil are removed, other lines are copied as is.
func ReplaceEvents(r io.Reader, w io.Writer, table map[string]*string) error {
	out := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		orig := scanner.Text()
		trimmed := strings.TrimSpace(orig)
		kind, err := classify(trimmed)
		if err != nil {
			return err
		}
		if kind != LINE_EVENT {
			out.WriteString(strings.TrimRightFunc(orig, unicode.IsSpace) + "\n")
			continue
		}

		parts, err := eventParts(trimmed)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		key := parts[0]
		if len(key) < 2 || !strings.HasPrefix(key, `"`) || !strings.HasSuffix(key, `"`) {
			return errors.Errorf("line %d: wrong event key %q", line, key)
		}
		if name, ok := table[strings.ToLower(key[1:len(key)-1])]; ok {
			if name == nil {
				continue
			}
			parts[0] = `"` + *name + `"`
		}
		out.WriteString(formatEvent(parts))
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "Failed to read descriptor")
	}
	return out.Flush()
}
