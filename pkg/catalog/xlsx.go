// pkg/catalog/xlsx.go

package catalog

import (
	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the "customers" and "products" sheets of a workbook.
func LoadXLSX(path string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &SchemaError{Source: path, Reason: "open workbook", Err: err}
	}
	defer f.Close()

	customerRows, err := f.GetRows(TableCustomers)
	if err != nil {
		return nil, &SchemaError{Source: path, Table: TableCustomers, Reason: "read sheet", Err: err}
	}
	productRows, err := f.GetRows(TableProducts)
	if err != nil {
		return nil, &SchemaError{Source: path, Table: TableProducts, Reason: "read sheet", Err: err}
	}
	return build(path, customerRows, productRows)
}
