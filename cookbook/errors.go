package cookbook

import (
	"fmt"
	"strings"
)

// CookbookError reports a structurally invalid recipe. Entry names the list
// item (for example `merge_list[2] "walk"`) and Field the offending key.
type CookbookError struct {
	Cookbook string
	Entry    string
	Field    string
	Msg      string
}

func (e *CookbookError) Error() string {
	var b strings.Builder
	b.WriteString("cookbook")
	if e.Cookbook != "" {
		fmt.Fprintf(&b, " %q", e.Cookbook)
	}
	if e.Entry != "" {
		b.WriteString(" ")
		b.WriteString(e.Entry)
	}
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

func (e *CookbookError) Kind() string { return "CookbookError" }
