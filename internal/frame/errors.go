package frame

import (
	"fmt"
	"strings"
)

// ColumnError reports columns a transform needed but the table lacks.
type ColumnError struct {
	Missing   []string
	Available []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing column(s) %s (have %s)",
		quoteAll(e.Missing), quoteAll(e.Available))
}

// DuplicateKeyError reports a pivot cell addressed more than once.
type DuplicateKeyError struct {
	Index    string
	Category string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("pivot: duplicate entry for index %q and column %q", e.Index, e.Category)
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
