// pkg/catalog/postgres.go

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // Import the PostgreSQL driver
)

// LoadPostgres reads the customers and products tables from a PostgreSQL
// database. Every column is cast to text so the same decoding rules apply as
// for file based catalogs.
func LoadPostgres(ctx context.Context, dsn string) (*Store, error) {
	source := redactDSN(dsn)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &SchemaError{Source: source, Reason: "open database", Err: err}
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, &SchemaError{Source: source, Reason: "connect", Err: err}
	}

	customerRows, err := queryTable(ctx, db, TableCustomers, customerColumns)
	if err != nil {
		return nil, &SchemaError{Source: source, Table: TableCustomers, Reason: "query", Err: err}
	}
	productRows, err := queryTable(ctx, db, TableProducts, productColumns)
	if err != nil {
		return nil, &SchemaError{Source: source, Table: TableProducts, Reason: "query", Err: err}
	}
	return build(source, customerRows, productRows)
}

func queryTable(ctx context.Context, db *sql.DB, table string, columns []string) ([][]string, error) {
	exprs := make([]string, len(columns))
	for i, col := range columns {
		exprs[i] = fmt.Sprintf("COALESCE(%s::text, '')", col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(exprs, ", "), table, columns[0])

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]string{append([]string(nil), columns...)}
	for rows.Next() {
		values := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

// redactDSN drops the password from a connection URL for error messages.
func redactDSN(dsn string) string {
	schemeEnd := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return dsn
	}
	userinfo := dsn[schemeEnd+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":xxxxx"
	}
	return dsn[:schemeEnd+3] + userinfo + dsn[at:]
}
