// pkg/catalog/catalog.go

package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Customer represents a billable customer record.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
}

// Product represents a sellable product record. Name is the display name
// printed on invoices.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Store holds the customers and products known to the process. It is built
// once and never mutated, so it can be shared without locking.
type Store struct {
	customers     []Customer
	products      []Product
	customerIndex map[string]int
	productIndex  map[string]int
}

// NewStore indexes the given records. Duplicate or empty identifiers and
// negative prices are rejected with a *SchemaError.
func NewStore(customers []Customer, products []Product) (*Store, error) {
	s := &Store{
		customers:     append([]Customer(nil), customers...),
		products:      append([]Product(nil), products...),
		customerIndex: make(map[string]int, len(customers)),
		productIndex:  make(map[string]int, len(products)),
	}
	for i, c := range s.customers {
		if c.ID == "" {
			return nil, &SchemaError{Table: TableCustomers, Row: i + 1, Reason: "empty customer_id"}
		}
		if _, dup := s.customerIndex[c.ID]; dup {
			return nil, &SchemaError{Table: TableCustomers, Row: i + 1, Reason: fmt.Sprintf("duplicate customer_id %q", c.ID)}
		}
		s.customerIndex[c.ID] = i
	}
	for i, p := range s.products {
		if p.ID == "" {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Reason: "empty product_id"}
		}
		if _, dup := s.productIndex[p.ID]; dup {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Reason: fmt.Sprintf("duplicate product_id %q", p.ID)}
		}
		if p.UnitPrice.IsNegative() {
			return nil, &SchemaError{Table: TableProducts, Row: i + 1, Reason: fmt.Sprintf("negative price for %q", p.ID)}
		}
		s.productIndex[p.ID] = i
	}
	return s, nil
}

// Customer looks up a customer by id.
func (s *Store) Customer(id string) (Customer, bool) {
	i, ok := s.customerIndex[id]
	if !ok {
		return Customer{}, false
	}
	return s.customers[i], true
}

// Product looks up a product by id.
func (s *Store) Product(id string) (Product, bool) {
	i, ok := s.productIndex[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Customers returns all customers in load order.
func (s *Store) Customers() []Customer {
	return append([]Customer(nil), s.customers...)
}

// Products returns all products in load order.
func (s *Store) Products() []Product {
	return append([]Product(nil), s.products...)
}
