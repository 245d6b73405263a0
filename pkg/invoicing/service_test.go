package invoicing_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/invoice-automation/pkg/archive"
	"github.com/invoice-automation/pkg/catalog"
	"github.com/invoice-automation/pkg/delivery"
	"github.com/invoice-automation/pkg/invoice"
	"github.com/invoice-automation/pkg/invoicing"
	"github.com/invoice-automation/pkg/metrics"
	"github.com/invoice-automation/pkg/render"
)

type fixture struct {
	svc     *invoicing.Service
	outDir  string
	outbox  *delivery.Recorder
	metrics *metrics.Metrics
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, dispatchErr error) *fixture {
	t.Helper()
	store, err := catalog.NewStore(
		[]catalog.Customer{
			{ID: "C1", Name: "Acme", Address: "12 Market Road", Mobile: "9000000001", Email: "billing@acme.test"},
			{ID: "C2", Name: "Globex", Address: "7 Harbour St", Mobile: "9000000002"},
		},
		[]catalog.Product{
			{ID: "P1", Name: "Dome Camera", UnitPrice: decimal.NewFromInt(100)},
			{ID: "P2", Name: "Cable Roll", UnitPrice: decimal.NewFromInt(50)},
		},
	)
	require.NoError(t, err)

	issued := time.Date(2024, time.March, 7, 9, 5, 30, 0, time.UTC)
	calc := invoice.NewCalculator(store, invoice.WithClock(func() time.Time { return issued }))
	renderer, err := render.New(render.DefaultProfile(), render.Assets{}, render.WithCurrencySymbol("Rs."))
	require.NoError(t, err)

	f := &fixture{
		outDir:  t.TempDir(),
		outbox:  &delivery.Recorder{Err: dispatchErr},
		metrics: metrics.New("test", prometheus.NewRegistry()),
		logs:    &bytes.Buffer{},
	}
	f.svc, err = invoicing.NewService(invoicing.Config{
		Store:      store,
		Calculator: calc,
		Renderer:   renderer,
		Sink:       archive.DirSink{Dir: f.outDir},
		Dispatcher: f.outbox,
		Company:    "ITCAM Security Pvt. Ltd.",
		Logger:     zerolog.New(f.logs),
		Metrics:    f.metrics,
	})
	require.NoError(t, err)
	return f
}

func exampleRequest() invoice.Request {
	return invoice.Request{CustomerID: "C1", ProductIDs: []string{"P1", "P2"}, Quantities: []int{2, 3}}
}

func TestGenerateWritesDocument(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Generate(context.Background(), exampleRequest())
	require.NoError(t, err)
	require.True(t, res.Invoice.GrandTotal.Equal(decimal.NewFromInt(350)))
	require.Equal(t, "invoice_ITCAM0307090530.pdf", res.Document.Filename)
	require.Equal(t, "application/pdf", res.Document.ContentType)
	require.Equal(t, filepath.Join(f.outDir, res.Document.Filename), res.Document.Location)

	onDisk, err := os.ReadFile(res.Document.Location)
	require.NoError(t, err)
	require.Equal(t, res.Document.Content, onDisk)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Generated))
	require.Contains(t, f.logs.String(), "invoice_generated")
}

func TestGenerateMismatchProducesNothing(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Generate(context.Background(), invoice.Request{CustomerID: "C1", ProductIDs: []string{"P1", "P2"}, Quantities: []int{2}})
	require.Nil(t, res)
	var mismatch *invoice.MismatchError
	require.ErrorAs(t, err, &mismatch)

	entries, err := os.ReadDir(f.outDir)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Failures.WithLabelValues("mismatch")))
}

func TestGenerateRejectsQuantityAtBoundary(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Generate(context.Background(), invoice.Request{CustomerID: "C1", ProductIDs: []string{"P1"}, Quantities: []int{101}})
	var verr *invoice.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Failures.WithLabelValues("validation")))
}

func TestGenerateUnknownProduct(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Generate(context.Background(), invoice.Request{CustomerID: "C1", ProductIDs: []string{"P7"}, Quantities: []int{1}})
	var notFound *invoice.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGenerateFlagsReusedNumber(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Generate(context.Background(), exampleRequest())
	require.NoError(t, err)
	_, err = f.svc.Generate(context.Background(), exampleRequest())
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NumberCollision))
	require.Contains(t, f.logs.String(), "invoice_number_reused")
}

func TestDeliverSendsAttachment(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.Generate(context.Background(), exampleRequest())
	require.NoError(t, err)

	ack, err := f.svc.Deliver(context.Background(), res, "")
	require.NoError(t, err)
	require.Equal(t, "billing@acme.test", ack.Recipient)

	sent := f.outbox.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "Invoice ITCAM0307090530 from ITCAM Security Pvt. Ltd.", sent[0].Subject)
	require.Contains(t, sent[0].Body, "Rs.350.00")
	require.Equal(t, res.Document.Filename, sent[0].Attachment.Filename)
	require.Equal(t, res.Document.Content, sent[0].Attachment.Data)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Deliveries.WithLabelValues("sent")))
}

func TestDeliverAuthFailureKeepsDocument(t *testing.T) {
	f := newFixture(t, delivery.ErrAuth)
	res, err := f.svc.Generate(context.Background(), exampleRequest())
	require.NoError(t, err)
	content := append([]byte(nil), res.Document.Content...)

	_, err = f.svc.Deliver(context.Background(), res, "")
	var de *delivery.DeliveryError
	require.ErrorAs(t, err, &de)
	require.True(t, de.Auth)

	require.Equal(t, content, res.Document.Content)
	onDisk, err := os.ReadFile(res.Document.Location)
	require.NoError(t, err)
	require.Equal(t, content, onDisk)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Deliveries.WithLabelValues("auth_failed")))
}

func TestDeliverWithoutRecipient(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.Generate(context.Background(), invoice.Request{CustomerID: "C2", ProductIDs: []string{"P1"}, Quantities: []int{1}})
	require.NoError(t, err)

	_, err = f.svc.Deliver(context.Background(), res, "")
	var de *delivery.DeliveryError
	require.ErrorAs(t, err, &de)
	require.False(t, de.Auth)
	require.ErrorIs(t, err, delivery.ErrNoRecipient)
	require.Equal(t, "deliver: customer C2: no recipient address", err.Error())
	require.Empty(t, f.outbox.Sent())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Deliveries.WithLabelValues("no_recipient")))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := invoicing.NewService(invoicing.Config{})
	require.Error(t, err)
}
