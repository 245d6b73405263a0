// pkg/render/renderer.go

package render

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/invoice-automation/pkg/invoice"
)

const (
	// DefaultCurrencySymbol needs a UTF-8 font; the core font cannot draw it.
	DefaultCurrencySymbol = "₹"

	fontFamily = "InvoiceSans"
	coreFamily = "Helvetica"

	imgLogo      = "logo"
	imgStamp     = "stamp"
	imgSignature = "signature"
)

// Table column widths in mm: Product Id, Product Name, Qty, Unit Price, Total.
var columnWidths = [5]float64{60, 60, 20, 30, 30}

// Renderer lays out invoices as PDF documents.
type Renderer struct {
	profile  Profile
	assets   Assets
	currency string
	encoder  textEncoder
	family   string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCurrencySymbol sets the glyph prefixed to every amount.
func WithCurrencySymbol(symbol string) Option {
	return func(r *Renderer) {
		if symbol != "" {
			r.currency = symbol
		}
	}
}

// New returns a Renderer for the given company profile and assets.
func New(profile Profile, assets Assets, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		profile:  profile,
		assets:   assets,
		currency: DefaultCurrencySymbol,
		encoder:  coreEncoder{},
		family:   coreFamily,
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(assets.Font) > 0 {
		enc, err := newGlyphEncoder(assets.Font)
		if err != nil {
			return nil, &RenderError{Op: "parse font", Err: err}
		}
		r.encoder = enc
		r.family = fontFamily
	}
	return r, nil
}

// CurrencySymbol reports the glyph used for amounts.
func (r *Renderer) CurrencySymbol() string {
	return r.currency
}

// Render produces the invoice document. Output depends only on inv and the
// renderer's assets, so rendering the same invoice twice yields identical
// bytes.
func (r *Renderer) Render(inv *invoice.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, &RenderError{Op: "render", Err: errors.New("nil invoice")}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(inv.IssuedAt)
	pdf.SetModificationDate(inv.IssuedAt)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetAuthor(r.profile.Name, true)
	pdf.SetCreator(r.profile.Name, true)

	if r.family == fontFamily {
		bold := r.assets.BoldFont
		if len(bold) == 0 {
			bold = r.assets.Font
		}
		pdf.AddUTF8FontFromBytes(fontFamily, "", r.assets.Font)
		pdf.AddUTF8FontFromBytes(fontFamily, "B", bold)
	}
	r.registerImage(pdf, imgLogo, r.assets.Logo)
	r.registerImage(pdf, imgStamp, r.assets.Stamp)
	r.registerImage(pdf, imgSignature, r.assets.Signature)
	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Op: "load assets", Err: err}
	}

	pdf.AddPage()
	p := &page{pdf: pdf, enc: r.encoder, family: r.family}

	r.titleBlock(p)
	r.metadataBlock(p, inv)
	r.customerBlock(p, inv)
	r.lineTable(p, inv)
	r.signatureBlock(p)

	if p.err != nil {
		return nil, &RenderError{Op: "encode text", Err: p.err}
	}
	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Op: "layout", Err: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Op: "output", Err: err}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) registerImage(pdf *gofpdf.Fpdf, name string, img *Image) {
	if img == nil {
		return
	}
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: img.Type}, bytes.NewReader(img.Data))
}

func (r *Renderer) titleBlock(p *page) {
	p.font("B", 18)
	p.cell(200, 20, r.profile.DisplayTitle(), "", 1, "C")
	if r.assets.Logo != nil {
		p.pdf.ImageOptions(imgLogo, 160, 25, 30, 0, false, gofpdf.ImageOptions{ImageType: r.assets.Logo.Type}, 0, "")
	}
	p.font("", 10)
	for _, line := range []string{r.profile.Address, r.profile.Phone, r.profile.Email} {
		if line != "" {
			p.cell(200, 6, line, "", 1, "C")
		}
	}
}

func (r *Renderer) metadataBlock(p *page, inv *invoice.Invoice) {
	p.font("", 12)
	p.cell(200, 10, "Invoice Number: "+inv.Number, "", 1, "")
	p.cell(200, 10, "Invoice Date: "+inv.Date, "", 1, "")
	p.cell(200, 10, "", "", 1, "")
}

func (r *Renderer) customerBlock(p *page, inv *invoice.Invoice) {
	c := inv.Customer
	p.font("B", 14)
	p.cell(200, 10, "Customer Details:", "", 1, "")
	p.font("", 12)
	p.cell(200, 10, "Customer: "+c.Name, "", 1, "")
	p.cell(200, 10, "Address: "+c.Address+", Mobile: "+c.Mobile, "", 1, "")
	p.cell(200, 10, "Email: "+c.Email, "", 1, "")
	p.cell(200, 10, "", "", 1, "")
}

func (r *Renderer) lineTable(p *page, inv *invoice.Invoice) {
	p.font("B", 12)
	for i, title := range []string{"Product Id", "Product Name", "Qty", "Unit Price", "Total"} {
		p.cell(columnWidths[i], 10, title, "1", 0, "")
	}
	p.pdf.Ln(-1)

	p.font("", 12)
	for _, line := range inv.Lines {
		cols := [5]string{
			line.ProductID,
			line.ProductName,
			strconv.Itoa(line.Quantity),
			invoice.FormatMoney(r.currency, line.UnitPrice),
			invoice.FormatMoney(r.currency, line.Total),
		}
		for i, text := range cols {
			p.cell(columnWidths[i], 10, text, "1", 0, "")
		}
		p.pdf.Ln(-1)
	}
	p.cell(200, 10, " ", "", 1, "")

	p.font("B", 12)
	p.cell(170, 10, "Final Total", "1", 0, "")
	p.cell(30, 10, invoice.FormatMoney(r.currency, inv.GrandTotal), "1", 1, "")
}

func (r *Renderer) signatureBlock(p *page) {
	const imagesHeight, textHeight = 35.0, 30.0
	_, pageH := p.pdf.GetPageSize()
	_, _, _, bottom := p.pdf.GetMargins()
	if p.pdf.GetY()+10+imagesHeight+textHeight > pageH-bottom {
		p.pdf.AddPage()
	}

	y := p.pdf.GetY() + 10
	if r.assets.Stamp != nil {
		p.pdf.ImageOptions(imgStamp, 20, y, 35, 0, false, gofpdf.ImageOptions{ImageType: r.assets.Stamp.Type}, 0, "")
	}
	if r.assets.Signature != nil {
		p.pdf.ImageOptions(imgSignature, 150, y, 40, 0, false, gofpdf.ImageOptions{ImageType: r.assets.Signature.Type}, 0, "")
	}
	p.pdf.SetY(y + imagesHeight)

	p.font("B", 12)
	p.cell(0, 10, "Authorized Signatory", "", 1, "R")
	if r.profile.Signatory != "" {
		p.cell(0, 10, r.profile.Signatory, "", 1, "R")
	}
	p.font("", 11)
	p.cell(0, 10, r.profile.Name, "", 1, "R")
}

// page wraps gofpdf calls with text encoding and keeps the first encoding
// error; later calls become no-ops once one is recorded.
type page struct {
	pdf    *gofpdf.Fpdf
	enc    textEncoder
	family string
	err    error
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont(p.family, style, size)
}

func (p *page) cell(w, h float64, text, border string, ln int, align string) {
	if p.err != nil {
		return
	}
	encoded, err := p.enc.encode(text)
	if err != nil {
		p.err = err
		return
	}
	p.pdf.CellFormat(w, h, encoded, border, ln, align, false, 0, "")
}
