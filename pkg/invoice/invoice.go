// pkg/invoice/invoice.go

package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoice-automation/pkg/catalog"
)

// Invoice represents the invoice data model.
type Invoice struct {
	Number     string           `json:"number"`
	Date       string           `json:"date"`
	IssuedAt   time.Time        `json:"issued_at"`
	Customer   catalog.Customer `json:"customer"`
	Lines      []LineItem       `json:"lines"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
}

// LineItem represents an item in the invoice.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// Filename is the name the rendered document is stored and offered under.
func (inv *Invoice) Filename() string {
	return "invoice_" + inv.Number + ".pdf"
}

// Sum adds up the line totals.
func (inv *Invoice) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range inv.Lines {
		sum = sum.Add(line.Total)
	}
	return sum
}
