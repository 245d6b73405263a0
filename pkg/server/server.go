// pkg/server/server.go

package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/invoice-automation/pkg/invoice"
	"github.com/invoice-automation/pkg/invoicing"
	"github.com/invoice-automation/pkg/render"

	_ "github.com/invoice-automation/docs" // swagger spec
)

// Handler serves the invoice HTTP API.
type Handler struct {
	svc    *invoicing.Service
	logger zerolog.Logger
}

// GenerateRequest is the body of POST /invoices.
type GenerateRequest struct {
	CustomerID string   `json:"customer_id" example:"C1"`
	ProductIDs []string `json:"product_ids" example:"P1,P2"`
	Quantities []int    `json:"quantities" example:"2,3"`
	SendEmail  bool     `json:"send_email"`
	Recipient  string   `json:"recipient,omitempty" example:"billing@acme.test"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string               `json:"error"`
	Fields []invoice.FieldError `json:"fields,omitempty"`
}

// Response headers describing the generated invoice.
const (
	HeaderInvoiceNumber  = "X-Invoice-Number"
	HeaderInvoiceTotal   = "X-Invoice-Total"
	HeaderDeliveryStatus = "X-Delivery-Status"
	HeaderDeliveryError  = "X-Delivery-Error"
)

// NewRouter wires the API, swagger UI and metrics endpoints.
func NewRouter(svc *invoicing.Service, logger zerolog.Logger, gatherer prometheus.Gatherer) *mux.Router {
	h := &Handler{svc: svc, logger: logger}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger))
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	r.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/invoices", h.GenerateInvoice).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCustomers godoc
// @Summary List customers
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Customer
// @Router /customers [get]
func (h *Handler) ListCustomers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog().Customers())
}

// ListProducts godoc
// @Summary List products
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Product
// @Router /products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog().Products())
}

// GenerateInvoice godoc
// @Summary Generate an invoice
// @Description Computes, renders and stores an invoice and returns the PDF. With send_email the
// @Description document is also e-mailed; a delivery failure is reported in X-Delivery-Status
// @Description and X-Delivery-Error while the PDF is still returned.
// @Tags invoices
// @Accept json
// @Produce application/pdf
// @Param request body GenerateRequest true "customer and product selection"
// @Param inline query bool false "serve inline for preview instead of as a download"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices [post]
func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := h.svc.Generate(r.Context(), invoice.Request{
		CustomerID: body.CustomerID,
		ProductIDs: body.ProductIDs,
		Quantities: body.Quantities,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := "skipped"
	if body.SendEmail {
		if _, err := h.svc.Deliver(r.Context(), res, body.Recipient); err != nil {
			status = "failed"
			w.Header().Set(HeaderDeliveryError, err.Error())
		} else {
			status = "sent"
		}
	}

	disposition := "attachment"
	if inline, _ := strconv.ParseBool(r.URL.Query().Get("inline")); inline {
		disposition = "inline"
	}
	w.Header().Set(HeaderInvoiceNumber, res.Invoice.Number)
	w.Header().Set(HeaderInvoiceTotal, res.Invoice.GrandTotal.StringFixed(invoice.MinorUnits))
	w.Header().Set(HeaderDeliveryStatus, status)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": res.Document.Filename}))
	w.Header().Set("Content-Type", res.Document.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Document.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Document.Content)
}

func writeError(w http.ResponseWriter, err error) {
	var (
		mismatch   *invoice.MismatchError
		notFound   *invoice.NotFoundError
		quantity   *invoice.QuantityError
		validation *invoice.ValidationError
		renderErr  *render.RenderError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Fields: validation.Fields})
	case errors.As(err, &mismatch), errors.As(err, &quantity):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.As(err, &renderErr):
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// requestLogger records one structured line per request.
func requestLogger(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			logger.Info().
				Str("method", r.Method).
				Str("route", route).
				Int("status", rec.status).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int("bytes", rec.bytes).
				Msg("http_request")
		})
	}
}

