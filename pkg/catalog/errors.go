// pkg/catalog/errors.go

package catalog

import (
	"fmt"
	"strings"
)

// Table names shared by every catalog source.
const (
	TableCustomers = "customers"
	TableProducts  = "products"
)

// SchemaError reports a catalog that cannot be loaded: a missing column, a
// malformed value, a duplicate id or an unreadable source. It is fatal to
// startup.
type SchemaError struct {
	Source string
	Table  string
	Row    int
	Column string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("catalog schema")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Table != "" {
		fmt.Fprintf(&b, ": table %s", e.Table)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
