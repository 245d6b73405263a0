// pkg/catalog/csv.go

package catalog

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
)

// CSV file names expected inside a catalog directory.
const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
)

// LoadCSV reads customers.csv and products.csv from dir.
func LoadCSV(dir string) (*Store, error) {
	customerRows, err := readCSV(filepath.Join(dir, CustomersFile), TableCustomers)
	if err != nil {
		return nil, err
	}
	productRows, err := readCSV(filepath.Join(dir, ProductsFile), TableProducts)
	if err != nil {
		return nil, err
	}
	return build(dir, customerRows, productRows)
}

func readCSV(path, table string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SchemaError{Source: path, Table: table, Reason: "open", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &SchemaError{Source: path, Table: table, Row: parseErr.Line - 1, Reason: "malformed csv", Err: err}
		}
		return nil, &SchemaError{Source: path, Table: table, Reason: "read", Err: err}
	}
	return rows, nil
}

// build decodes both tables and indexes them, stamping source on any
// SchemaError produced along the way.
func build(source string, customerRows, productRows [][]string) (*Store, error) {
	customers, err := decodeCustomers(customerRows)
	if err != nil {
		return nil, withSource(err, source)
	}
	products, err := decodeProducts(productRows)
	if err != nil {
		return nil, withSource(err, source)
	}
	store, err := NewStore(customers, products)
	if err != nil {
		return nil, withSource(err, source)
	}
	return store, nil
}

func withSource(err error, source string) error {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Source == "" {
		schemaErr.Source = source
	}
	return err
}
