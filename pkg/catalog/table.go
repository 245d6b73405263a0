// pkg/catalog/table.go

package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	customerColumns = []string{"customer_id", "customer_name", "address", "mobile", "email"}
	productColumns  = []string{"product_id", "product_name", "price"}
)

// header maps lower-cased column names to their position. Every required
// column must be present; extra columns are ignored.
func header(table string, row []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name == "" {
			continue
		}
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &SchemaError{Table: table, Column: col, Reason: "missing column"}
		}
	}
	return idx, nil
}

func cell(row []string, idx map[string]int, col string) string {
	i := idx[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// decodeCustomers turns a header row plus data rows into customers.
func decodeCustomers(rows [][]string) ([]Customer, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Table: TableCustomers, Reason: "no header row"}
	}
	idx, err := header(TableCustomers, rows[0], customerColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(rows)-1)
	seen := make(map[string]bool, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		c := Customer{
			ID:      cell(row, idx, "customer_id"),
			Name:    cell(row, idx, "customer_name"),
			Address: cell(row, idx, "address"),
			Mobile:  cell(row, idx, "mobile"),
			Email:   cell(row, idx, "email"),
		}
		if c.ID == "" {
			return nil, &SchemaError{Table: TableCustomers, Row: i + 1, Column: "customer_id", Reason: "empty value"}
		}
		if seen[c.ID] {
			return nil, &SchemaError{Table: TableCustomers, Row: i + 1, Column: "customer_id", Reason: "duplicate value " + strconv.Quote(c.ID)}
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

// decodeProducts turns a header row plus data rows into products.
func decodeProducts(rows [][]string) ([]Product, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Table: TableProducts, Reason: "no header row"}
	}
	idx, err := header(TableProducts, rows[0], productColumns)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows)-1)
	seen := make(map[string]bool, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		p := Product{
			ID:   cell(row, idx, "product_id"),
			Name: cell(row, idx, "product_name"),
		}
		if p.ID == "" {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Column: "product_id", Reason: "empty value"}
		}
		if seen[p.ID] {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Column: "product_id", Reason: "duplicate value " + strconv.Quote(p.ID)}
		}
		seen[p.ID] = true
		raw := cell(row, idx, "price")
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Column: "price", Reason: "invalid price " + strconv.Quote(raw), Err: err}
		}
		if price.IsNegative() {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Column: "price", Reason: "negative price"}
		}
		p.UnitPrice = price
		out = append(out, p)
	}
	return out, nil
}
