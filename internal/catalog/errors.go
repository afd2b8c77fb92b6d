package catalog

import (
	"fmt"
	"strings"
)

// Problem is a single invariant violation found while loading a catalog
type Problem struct {
	Category string // category id, or "" for catalog-level problems
	Field    string
	Message  string
}

func (p Problem) String() string {
	var b strings.Builder
	if p.Category != "" {
		b.WriteString(p.Category)
		if p.Field != "" {
			b.WriteString(".")
		}
	}
	b.WriteString(p.Field)
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(p.Message)
	return b.String()
}

// ValidationError is returned when a catalog violates its invariants.
// It is only ever produced at load time.
type ValidationError struct {
	Source   string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("invalid catalog %s: %s", e.Source, strings.Join(parts, "; "))
}

func (e *ValidationError) add(category, field, format string, args ...interface{}) {
	e.Problems = append(e.Problems, Problem{
		Category: category,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}
