package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invoice-automation/pkg/invoice"
)

func TestRequestValidateQuantityBoundary(t *testing.T) {
	for _, qty := range []int{1, 100} {
		req := invoice.Request{CustomerID: "C1", ProductIDs: []string{"P1"}, Quantities: []int{qty}}
		require.NoError(t, req.Validate(), "quantity %d", qty)
	}

	for _, qty := range []int{0, 101} {
		req := invoice.Request{CustomerID: "C1", ProductIDs: []string{"P1"}, Quantities: []int{qty}}
		err := req.Validate()
		var verr *invoice.ValidationError
		require.ErrorAs(t, err, &verr, "quantity %d", qty)
		require.Len(t, verr.Fields, 1)
		require.Equal(t, "quantities[0]", verr.Fields[0].Field)
	}
}

func TestRequestValidateRequiredFields(t *testing.T) {
	req := invoice.Request{ProductIDs: []string{""}, Quantities: []int{1}}
	err := req.Validate()
	var verr *invoice.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	require.Equal(t, "customer_id", verr.Fields[0].Field)
	require.Equal(t, "is required", verr.Fields[0].Message)
	require.Equal(t, "product_ids[0]", verr.Fields[1].Field)
}

func TestRequestValidateLeavesPairingToCompute(t *testing.T) {
	req := invoice.Request{CustomerID: "C1", ProductIDs: []string{"P1", "P2"}, Quantities: []int{2}}
	require.NoError(t, req.Validate())
}
