// pkg/catalog/load.go

package catalog

import (
	"context"
	"path/filepath"
	"strings"
)

// Load opens the catalog named by source: a postgres:// or postgresql:// DSN,
// a path to an .xlsx workbook, or otherwise a directory of CSV files.
func Load(ctx context.Context, source string) (*Store, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return nil, &SchemaError{Reason: "no catalog source configured"}
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		return LoadPostgres(ctx, source)
	case strings.EqualFold(filepath.Ext(source), ".xlsx"):
		return LoadXLSX(source)
	default:
		return LoadCSV(source)
	}
}
