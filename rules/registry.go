// Package rules holds bone remap tables between skeleton variants and the
// per-bone orientation fix-ups applied after remapping.
package rules

import (
	"io"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Registry struct {
	Remaps map[string]RemapTable
	Fixups map[string]FixupSet
}

func NewRegistry() *Registry {
	return &Registry{
		Remaps: make(map[string]RemapTable),
		Fixups: make(map[string]FixupSet),
	}
}

// Builtin returns a registry with the stock tables. Each call returns an
// independent copy.
func Builtin() *Registry {
	return &Registry{
		Remaps: builtinRemaps(),
		Fixups: builtinFixups(),
	}
}

// Resolve maps a destination bone to the bone of the clip converted with
// rule. A nil rule is the identity.
func (r *Registry) Resolve(rule *string, bone int) (Target, error) {
	if rule == nil {
		return Index(bone), nil
	}
	table, ok := r.Remaps[*rule]
	if !ok {
		return Target{}, &UnknownRuleError{Rule: *rule, Table: "remap"}
	}
	return table.Resolve(bone), nil
}

// CheckRemap reports an UnknownRuleError for a named table that does not exist
func (r *Registry) CheckRemap(rule *string) error {
	if rule == nil {
		return nil
	}
	if _, ok := r.Remaps[*rule]; !ok {
		return &UnknownRuleError{Rule: *rule, Table: "remap"}
	}
	return nil
}

func (r *Registry) CheckFixup(set *string) error {
	if set == nil {
		return nil
	}
	if _, ok := r.Fixups[*set]; !ok {
		return &UnknownRuleError{Rule: *set, Table: "fixup"}
	}
	return nil
}

// ApplyFixup passes q through unchanged when set is nil, unknown, or has no
// entry for bone
func (r *Registry) ApplyFixup(set *string, bone int, q mgl32.Quat, env Env) (mgl32.Quat, error) {
	if set == nil {
		return q, nil
	}
	fixups, ok := r.Fixups[*set]
	if !ok {
		return q, nil
	}
	f, ok := fixups[bone]
	if !ok {
		return q, nil
	}
	res, err := f.Apply(q, env)
	if err != nil {
		return q, errors.Wrapf(err, "fixup %s bone %d (%s)", *set, bone, f.Kind())
	}
	return res, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) RemapNames() []string { return sortedKeys(r.Remaps) }
func (r *Registry) FixupNames() []string { return sortedKeys(r.Fixups) }

// Bones returns the bone keys of a fixup set in ascending order
func (s FixupSet) Bones() []int {
	bones := make([]int, 0, len(s))
	for b := range s {
		bones = append(bones, b)
	}
	sort.Ints(bones)
	return bones
}

func (r *Registry) Validate() error {
	for _, name := range r.RemapNames() {
		for bone, target := range r.Remaps[name] {
			if bone < 0 {
				return errors.Errorf("remap %s: negative bone %d", name, bone)
			}
			if target.Kind == KindIndex && target.Index < 0 {
				return errors.Errorf("remap %s: bone %d maps to negative index %d", name, bone, target.Index)
			}
		}
	}
	for _, name := range r.FixupNames() {
		set := r.Fixups[name]
		for _, bone := range set.Bones() {
			f := set[bone]
			if f == nil {
				return errors.Errorf("fixup %s: bone %d has no rule", name, bone)
			}
			if err := f.Validate(); err != nil {
				return errors.Wrapf(err, "fixup %s bone %d (%s)", name, bone, f.Kind())
			}
		}
	}
	return nil
}

type registryFile struct {
	Remaps map[string]map[int]yaml.Node `yaml:"remaps"`
	Fixups map[string]map[int]yaml.Node `yaml:"fixups"`
}

// LoadYAML merges tables from a rules file into the registry. A table with
// an existing name replaces it.
//
//	remaps:
//	  my_rule: {0: 0, 5: null, 7: skip}
//	fixups:
//	  my_rule:
//	    22: {kind: rest_hold, bone: 22}
func (r *Registry) LoadYAML(rd io.Reader) error {
	var file registryFile
	if err := yaml.NewDecoder(rd).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "decode rules")
	}

	remaps := make(map[string]RemapTable, len(file.Remaps))
	for name, entries := range file.Remaps {
		table := make(RemapTable, len(entries))
		for bone, node := range entries {
			node := node
			target, err := targetFromNode(&node)
			if err != nil {
				return errors.Wrapf(err, "remap %s bone %d", name, bone)
			}
			table[bone] = target
		}
		remaps[name] = table
	}

	fixups := make(map[string]FixupSet, len(file.Fixups))
	for name, entries := range file.Fixups {
		set := make(FixupSet, len(entries))
		for bone, node := range entries {
			node := node
			f, err := fixupFromNode(&node)
			if err != nil {
				return errors.Wrapf(err, "fixup %s bone %d", name, bone)
			}
			set[bone] = f
		}
		fixups[name] = set
	}

	for name, table := range remaps {
		r.Remaps[name] = table
	}
	for name, set := range fixups {
		r.Fixups[name] = set
	}
	return r.Validate()
}

func fixupFromNode(n *yaml.Node) (Fixup, error) {
	var head struct {
		Kind FixupKind `yaml:"kind"`
	}
	if err := n.Decode(&head); err != nil {
		return nil, err
	}
	f, err := newFixup(head.Kind)
	if err != nil {
		return nil, errors.Errorf("line %d: %v", n.Line, err)
	}
	if err := n.Decode(f); err != nil {
		return nil, err
	}
	return f, nil
}

type fixupEntry struct {
	Fixup
}

func (e fixupEntry) MarshalYAML() (interface{}, error) {
	var body yaml.Node
	if err := body.Encode(e.Fixup); err != nil {
		return nil, err
	}
	kind := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "kind"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(e.Kind())},
	}
	body.Content = append(kind, body.Content...)
	return &body, nil
}

// MarshalYAML enumerates every table and fix-up in the LoadYAML format
func (r *Registry) MarshalYAML() (interface{}, error) {
	out := struct {
		Remaps map[string]RemapTable         `yaml:"remaps"`
		Fixups map[string]map[int]fixupEntry `yaml:"fixups"`
	}{
		Remaps: r.Remaps,
		Fixups: make(map[string]map[int]fixupEntry, len(r.Fixups)),
	}
	for name, set := range r.Fixups {
		entries := make(map[int]fixupEntry, len(set))
		for bone, f := range set {
			entries[bone] = fixupEntry{f}
		}
		out.Fixups[name] = entries
	}
	return out, nil
}
