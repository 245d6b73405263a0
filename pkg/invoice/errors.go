// pkg/invoice/errors.go

package invoice

import (
	"fmt"
	"strings"
)

// MismatchError reports product and quantity lists that do not pair up one to
// one. The caller may re-prompt.
type MismatchError struct {
	Products   int
	Quantities int
	Duplicates []string
}

func (e *MismatchError) Error() string {
	if len(e.Duplicates) > 0 {
		return fmt.Sprintf("mismatch between selected products and quantities: duplicate products %s", strings.Join(e.Duplicates, ", "))
	}
	return fmt.Sprintf("mismatch between selected products and quantities: %d products, %d quantities", e.Products, e.Quantities)
}

// NotFoundError reports a customer or product id missing from the catalog.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// QuantityError reports a quantity outside [MinQuantity, MaxQuantity].
type QuantityError struct {
	ProductID string
	Quantity  int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %q out of range [%d, %d]", e.Quantity, e.ProductID, MinQuantity, MaxQuantity)
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError groups field errors found at the input boundary.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid invoice request: " + strings.Join(parts, "; ")
}
