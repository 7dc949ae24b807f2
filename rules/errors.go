package rules

import "fmt"

// UnknownRuleError is returned when a cookbook names a remap table or
// fix-up set the registry does not know
type UnknownRuleError struct {
	Rule string
	// "remap" or "fixup"
	Table string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown %s rule %q", e.Table, e.Rule)
}

func (e *UnknownRuleError) Kind() string { return "UnknownRuleError" }
