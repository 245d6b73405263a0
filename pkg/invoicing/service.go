// pkg/invoicing/service.go

package invoicing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/invoice-automation/pkg/archive"
	"github.com/invoice-automation/pkg/catalog"
	"github.com/invoice-automation/pkg/delivery"
	"github.com/invoice-automation/pkg/invoice"
	"github.com/invoice-automation/pkg/metrics"
	"github.com/invoice-automation/pkg/render"
)

// Document is a rendered invoice ready for download, preview or delivery.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	Location    string
}

// Result is a successfully generated invoice and its document.
type Result struct {
	Invoice  *invoice.Invoice
	Document Document
}

// Service runs invoice generation and delivery for presentation layers.
type Service struct {
	store      *catalog.Store
	calc       *invoice.Calculator
	renderer   *render.Renderer
	sink       archive.Sink
	dispatcher delivery.Dispatcher
	mail       *delivery.Template
	company    string
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	mu         sync.Mutex
	lastNumber string
}

// Config groups Service dependencies.
type Config struct {
	Store      *catalog.Store
	Calculator *invoice.Calculator
	Renderer   *render.Renderer
	Sink       archive.Sink
	Dispatcher delivery.Dispatcher
	Mail       *delivery.Template
	Company    string
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("invoicing: catalog store is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("invoicing: renderer is required")
	}
	calc := cfg.Calculator
	if calc == nil {
		calc = invoice.NewCalculator(cfg.Store)
	}
	sink := cfg.Sink
	if sink == nil {
		sink = archive.Discard{}
	}
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = delivery.Nop{}
	}
	mail := cfg.Mail
	if mail == nil {
		var err error
		if mail, err = delivery.NewTemplate("", ""); err != nil {
			return nil, err
		}
	}
	return &Service{
		store:      cfg.Store,
		calc:       calc,
		renderer:   cfg.Renderer,
		sink:       sink,
		dispatcher: dispatcher,
		mail:       mail,
		company:    cfg.Company,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}, nil
}

// Catalog exposes the read-only catalog for selection lists.
func (s *Service) Catalog() *catalog.Store {
	return s.store
}

// Generate validates req, computes the invoice, renders it and hands the
// document to the configured sink. No result is returned on error.
func (s *Service) Generate(ctx context.Context, req invoice.Request) (*Result, error) {
	logger := s.logger.With().Str("run_id", uuid.NewString()).Str("customer_id", req.CustomerID).Logger()

	if err := req.Validate(); err != nil {
		s.metrics.Fail("validation")
		logger.Info().Err(err).Msg("invoice_request_rejected")
		return nil, err
	}

	inv, err := s.calc.Compute(req.CustomerID, req.ProductIDs, req.Quantities)
	if err != nil {
		s.metrics.Fail(failureReason(err))
		logger.Info().Err(err).Msg("invoice_compute_failed")
		return nil, err
	}
	s.checkNumber(logger, inv.Number)

	start := time.Now()
	content, err := s.renderer.Render(inv)
	s.metrics.ObserveRender(time.Since(start))
	if err != nil {
		s.metrics.Fail("render")
		logger.Error().Err(err).Str("invoice_number", inv.Number).Msg("invoice_render_failed")
		return nil, err
	}

	doc := Document{
		Filename:    inv.Filename(),
		ContentType: "application/pdf",
		Content:     content,
	}
	doc.Location, err = s.sink.Store(ctx, doc.Filename, content)
	if err != nil {
		s.metrics.Fail("store")
		logger.Error().Err(err).Str("invoice_number", inv.Number).Msg("invoice_store_failed")
		return nil, fmt.Errorf("store %s: %w", doc.Filename, err)
	}

	s.metrics.Success()
	logger.Info().
		Str("invoice_number", inv.Number).
		Int("lines", len(inv.Lines)).
		Str("total", inv.GrandTotal.StringFixed(invoice.MinorUnits)).
		Int("bytes", len(content)).
		Str("location", doc.Location).
		Msg("invoice_generated")
	return &Result{Invoice: inv, Document: doc}, nil
}

// Deliver e-mails a generated invoice. recipient defaults to the customer's
// address. A failure leaves res untouched so the document can still be
// downloaded.
func (s *Service) Deliver(ctx context.Context, res *Result, recipient string) (delivery.Ack, error) {
	if res == nil || res.Invoice == nil {
		return delivery.Ack{}, errors.New("invoicing: nothing to deliver")
	}
	inv := res.Invoice
	if recipient == "" {
		recipient = inv.Customer.Email
	}
	logger := s.logger.With().Str("invoice_number", inv.Number).Str("recipient", recipient).Logger()

	if recipient == "" {
		s.metrics.Delivery("no_recipient")
		err := &delivery.DeliveryError{Err: fmt.Errorf("customer %s: %w", inv.Customer.ID, delivery.ErrNoRecipient)}
		logger.Warn().Err(err).Msg("invoice_delivery_failed")
		return delivery.Ack{}, err
	}

	msg, err := s.mail.Message(recipient, delivery.TemplateData{
		Number:       inv.Number,
		Date:         inv.Date,
		CustomerName: inv.Customer.Name,
		Total:        invoice.FormatMoney(s.renderer.CurrencySymbol(), inv.GrandTotal),
		Company:      s.company,
	}, delivery.Attachment{
		Filename:    res.Document.Filename,
		ContentType: res.Document.ContentType,
		Data:        res.Document.Content,
	})
	if err != nil {
		s.metrics.Delivery("template_error")
		logger.Error().Err(err).Msg("invoice_delivery_failed")
		return delivery.Ack{}, delivery.Wrap(recipient, err)
	}

	ack, err := s.dispatcher.Send(ctx, msg)
	if err != nil {
		err = delivery.Wrap(recipient, err)
		var de *delivery.DeliveryError
		outcome := "transport_failed"
		if errors.As(err, &de) && de.Auth {
			outcome = "auth_failed"
		}
		s.metrics.Delivery(outcome)
		logger.Warn().Err(err).Msg("invoice_delivery_failed")
		return delivery.Ack{}, err
	}
	s.metrics.Delivery("sent")
	logger.Info().Str("message_id", ack.MessageID).Msg("invoice_delivered")
	return ack, nil
}

// checkNumber flags a number already issued by this process. Numbers have
// one second resolution, so two invoices in the same second share one.
func (s *Service) checkNumber(logger zerolog.Logger, number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if number == s.lastNumber {
		s.metrics.Collision()
		logger.Warn().Str("invoice_number", number).Msg("invoice_number_reused")
	}
	s.lastNumber = number
}

func failureReason(err error) string {
	var (
		mismatch *invoice.MismatchError
		notFound *invoice.NotFoundError
		quantity *invoice.QuantityError
	)
	switch {
	case errors.As(err, &mismatch):
		return "mismatch"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &quantity):
		return "quantity"
	default:
		return "compute"
	}
}
