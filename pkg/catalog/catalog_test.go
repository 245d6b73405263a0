package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/invoice-automation/pkg/catalog"
)

func writeCatalog(t *testing.T, customers, products string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.CustomersFile), []byte(customers), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.ProductsFile), []byte(products), 0o644))
	return dir
}

const (
	customersCSV = "customer_id,customer_name,address,mobile,email\n" +
		"C1,Acme,12 Market Road,9000000001,billing@acme.test\n" +
		"C2,Globex,7 Harbour St,9000000002,ap@globex.test\n"
	productsCSV = "product_id,product_name,price\n" +
		"P1,Dome Camera,100\n" +
		"P2,Cable Roll,50.25\n"
)

func TestLoadCSV(t *testing.T) {
	dir := writeCatalog(t, customersCSV, productsCSV)

	store, err := catalog.LoadCSV(dir)
	require.NoError(t, err)

	c, ok := store.Customer("C1")
	require.True(t, ok)
	require.Equal(t, "Acme", c.Name)
	require.Equal(t, "billing@acme.test", c.Email)

	p, ok := store.Product("P2")
	require.True(t, ok)
	require.Equal(t, "Cable Roll", p.Name)
	require.True(t, p.UnitPrice.Equal(decimal.RequireFromString("50.25")))

	_, ok = store.Product("P9")
	require.False(t, ok)

	customers := store.Customers()
	require.Len(t, customers, 2)
	require.Equal(t, "C1", customers[0].ID)
	require.Equal(t, "C2", customers[1].ID)
	require.Len(t, store.Products(), 2)
}

func TestLoadCSVIgnoresExtraColumnsAndBlankRows(t *testing.T) {
	dir := writeCatalog(t,
		"Customer_ID , customer_name,address,mobile,email,notes\nC1,Acme,Road,1,a@b.test,vip\n\n",
		"product_id,product,product_name,price\nP1,legacy,Dome Camera,100\n",
	)

	store, err := catalog.LoadCSV(dir)
	require.NoError(t, err)
	require.Len(t, store.Customers(), 1)
	p, ok := store.Product("P1")
	require.True(t, ok)
	require.Equal(t, "Dome Camera", p.Name)
}

func TestLoadCSVSchemaErrors(t *testing.T) {
	cases := map[string]struct {
		customers string
		products  string
		column    string
	}{
		"missing column": {
			customers: "customer_id,customer_name,address,mobile\nC1,Acme,Road,1\n",
			products:  productsCSV,
			column:    "email",
		},
		"invalid price": {
			customers: customersCSV,
			products:  "product_id,product_name,price\nP1,Camera,ten\n",
			column:    "price",
		},
		"negative price": {
			customers: customersCSV,
			products:  "product_id,product_name,price\nP1,Camera,-1\n",
			column:    "price",
		},
		"empty id": {
			customers: customersCSV,
			products:  "product_id,product_name,price\n,Camera,1\n",
			column:    "product_id",
		},
		"duplicate id": {
			customers: customersCSV,
			products:  "product_id,product_name,price\nP1,Camera,1\nP1,Other,2\n",
			column:    "product_id",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := writeCatalog(t, tc.customers, tc.products)
			_, err := catalog.LoadCSV(dir)
			var schemaErr *catalog.SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			require.Equal(t, dir, schemaErr.Source)
			require.Equal(t, tc.column, schemaErr.Column)
		})
	}
}

func TestLoadCSVDuplicateReportsSourceRow(t *testing.T) {
	dir := writeCatalog(t,
		"customer_id,customer_name,address,mobile,email\nC1,Acme,Road,1,a@b.test\n,,,,\nC1,Again,Road,2,c@d.test\n",
		productsCSV,
	)

	_, err := catalog.LoadCSV(dir)
	var schemaErr *catalog.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, catalog.TableCustomers, schemaErr.Table)
	require.Equal(t, "customer_id", schemaErr.Column)
	require.Equal(t, 3, schemaErr.Row)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := catalog.LoadCSV(t.TempDir())
	var schemaErr *catalog.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, catalog.TableCustomers, schemaErr.Table)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", catalog.TableCustomers))
	_, err := f.NewSheet(catalog.TableProducts)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(catalog.TableCustomers, "A1", &[]interface{}{"customer_id", "customer_name", "address", "mobile", "email"}))
	require.NoError(t, f.SetSheetRow(catalog.TableCustomers, "A2", &[]interface{}{"C1", "Acme", "12 Market Road", "9000000001", "billing@acme.test"}))
	require.NoError(t, f.SetSheetRow(catalog.TableProducts, "A1", &[]interface{}{"product_id", "product_name", "price"}))
	require.NoError(t, f.SetSheetRow(catalog.TableProducts, "A2", &[]interface{}{"P1", "Dome Camera", 100}))
	require.NoError(t, f.SetSheetRow(catalog.TableProducts, "A3", &[]interface{}{"P2", "Cable Roll", "50"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store, err := catalog.Load(context.Background(), path)
	require.NoError(t, err)
	c, ok := store.Customer("C1")
	require.True(t, ok)
	require.Equal(t, "Acme", c.Name)
	p, ok := store.Product("P1")
	require.True(t, ok)
	require.True(t, p.UnitPrice.Equal(decimal.NewFromInt(100)))
	require.Len(t, store.Products(), 2)
}

func TestLoadXLSXMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", catalog.TableCustomers))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := catalog.LoadXLSX(path)
	var schemaErr *catalog.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, catalog.TableProducts, schemaErr.Table)
}

func TestLoadDispatch(t *testing.T) {
	dir := writeCatalog(t, customersCSV, productsCSV)
	store, err := catalog.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, store.Customers(), 2)

	_, err = catalog.Load(context.Background(), "  ")
	var schemaErr *catalog.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestNewStoreRejectsDuplicateCustomers(t *testing.T) {
	_, err := catalog.NewStore([]catalog.Customer{{ID: "C1"}, {ID: "C1"}}, nil)
	var schemaErr *catalog.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, catalog.TableCustomers, schemaErr.Table)
	require.Equal(t, 2, schemaErr.Row)
}
