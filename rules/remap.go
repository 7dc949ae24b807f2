package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type TargetKind int

const (
	// bone has no counterpart, the destination default pose is used
	KindNoEquivalent TargetKind = iota
	KindIndex
	// destination channel gets the identity rotation
	KindSkip
)

func (k TargetKind) String() string {
	switch k {
	case KindNoEquivalent:
		return "none"
	case KindIndex:
		return "index"
	case KindSkip:
		return "skip"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

type Target struct {
	Kind  TargetKind
	Index int
}

var (
	NoEquivalent = Target{Kind: KindNoEquivalent}
	Skip         = Target{Kind: KindSkip}
)

func Index(n int) Target { return Target{Kind: KindIndex, Index: n} }

func (t Target) String() string {
	if t.Kind == KindIndex {
		return fmt.Sprintf("%d", t.Index)
	}
	return t.Kind.String()
}

func (t Target) MarshalYAML() (interface{}, error) {
	switch t.Kind {
	case KindIndex:
		return t.Index, nil
	case KindSkip:
		return "skip", nil
	default:
		return nil, nil
	}
}

func targetFromNode(n *yaml.Node) (Target, error) {
	if n.Kind != yaml.ScalarNode {
		return Target{}, fmt.Errorf("line %d: remap target must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!null":
		return NoEquivalent, nil
	case "!!int":
		var i int
		if err := n.Decode(&i); err != nil {
			return Target{}, err
		}
		if i < 0 {
			return Target{}, fmt.Errorf("line %d: negative bone index %d", n.Line, i)
		}
		return Index(i), nil
	case "!!str":
		if n.Value == "skip" {
			return Skip, nil
		}
	}
	return Target{}, fmt.Errorf("line %d: remap target %q is not a bone index, null or skip", n.Line, n.Value)
}

// RemapTable is keyed by destination bone. The value addresses the bone in
// the clip the segment reads from.
type RemapTable map[int]Target

func (t RemapTable) Resolve(bone int) Target {
	if target, ok := t[bone]; ok {
		return target
	}
	return NoEquivalent
}
