// pkg/invoice/calculator.go

package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoice-automation/pkg/catalog"
)

const (
	// DefaultPrefix is prepended to the timestamp part of invoice numbers.
	DefaultPrefix = "ITCAM"

	// MinQuantity and MaxQuantity bound a single line's quantity.
	MinQuantity = 1
	MaxQuantity = 100

	numberLayout = "0102150405"
	dateLayout   = "02/01/2006"
)

// Calculator turns a customer and a product selection into an Invoice.
type Calculator struct {
	store  *catalog.Store
	prefix string
	now    func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithPrefix overrides the invoice number prefix.
func WithPrefix(prefix string) Option {
	return func(c *Calculator) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithClock overrides the source of the generation instant.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCalculator returns a Calculator reading from store.
func NewCalculator(store *catalog.Store, opts ...Option) *Calculator {
	c := &Calculator{store: store, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute builds an invoice for customerID. productIDs and quantities are
// paired by position and the lines keep that order.
func (c *Calculator) Compute(customerID string, productIDs []string, quantities []int) (*Invoice, error) {
	if len(productIDs) != len(quantities) {
		return nil, &MismatchError{Products: len(productIDs), Quantities: len(quantities)}
	}
	if dups := duplicates(productIDs); len(dups) > 0 {
		return nil, &MismatchError{Products: len(productIDs), Quantities: len(quantities), Duplicates: dups}
	}

	customer, ok := c.store.Customer(customerID)
	if !ok {
		return nil, &NotFoundError{Kind: "customer", ID: customerID}
	}

	lines := make([]LineItem, 0, len(productIDs))
	total := decimal.Zero
	for i, id := range productIDs {
		product, ok := c.store.Product(id)
		if !ok {
			return nil, &NotFoundError{Kind: "product", ID: id}
		}
		qty := quantities[i]
		if qty < MinQuantity || qty > MaxQuantity {
			return nil, &QuantityError{ProductID: id, Quantity: qty}
		}
		lineTotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    qty,
			UnitPrice:   product.UnitPrice,
			Total:       lineTotal,
		})
		total = total.Add(lineTotal)
	}

	issued := c.now()
	return &Invoice{
		Number:     c.prefix + issued.Format(numberLayout),
		Date:       issued.Format(dateLayout),
		IssuedAt:   issued,
		Customer:   customer,
		Lines:      lines,
		GrandTotal: total,
	}, nil
}

func duplicates(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
