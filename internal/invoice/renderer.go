package invoice

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jung-kurt/gofpdf"

	"github.com/Porky3112/shopify-webhook/internal/domain/order"
)

// Placeholder printed in the ENVIAR A block when the order carries no
// shipping address.
const noShippingInfo = "Información de envío no disponible"

// Page geometry in millimeters (A4 portrait, 0.75in side and 0.5in top
// margins like the original template).
const (
	sideMargin = 19.05
	topMargin  = 12.7
	pageWidth  = 210.0
	bodyWidth  = pageWidth - 2*sideMargin
)

// Item table column widths. They sum to bodyWidth.
var colWidths = [5]float64{64.9, 30, 22, 27.5, 27.5}

var colTitles = [5]string{"Producto", "SKU", "Cantidad", "Precio Unit.", "Total"}

// Renderer turns an order plus the merchant profile into a PDF file with a
// deterministic layout.
type Renderer struct {
	company CompanyProfile
	format  CurrencyFormat
	outDir  string
	now     func() time.Time
}

// NewRenderer creates a Renderer writing documents into outDir.
func NewRenderer(company CompanyProfile, format CurrencyFormat, outDir string) *Renderer {
	return &Renderer{
		company: company,
		format:  format,
		outDir:  outDir,
		now:     time.Now,
	}
}

// Render lays out the invoice for o and writes <base>.pdf into the output
// directory. Exactly one file is written; on failure nothing useful remains
// at the target path and a *RenderError is returned.
func (r *Renderer) Render(o *order.Order, base string) (*RenderedInvoice, error) {
	doc, err := buildDocument(o, r.company, r.format, r.now())
	if err != nil {
		return nil, err
	}

	path := filepath.Join(r.outDir, base+".pdf")
	if err := writePDF(doc, path); err != nil {
		return nil, &RenderError{Reason: "write pdf", Err: err}
	}
	return &RenderedInvoice{Path: path, OrderNumber: string(o.Number)}, nil
}

// document is the fully resolved layout: every string is final display text.
// Splitting layout resolution from drawing keeps the layout rules testable
// without parsing PDF bytes.
type document struct {
	companyName  string
	companyLines []string
	invoiceLines []string // order number, issue date, due date
	billTo       []string
	shipTo       []string
	rows         []itemRow
	totals       []totalLine
	footer       []string
}

type itemRow struct {
	product   string // title, variant on a second line when present
	sku       string
	quantity  string
	unitPrice string
	total     string
}

type totalLine struct {
	text string
	bold bool
}

// buildDocument applies the layout rules to one order.
func buildDocument(o *order.Order, company CompanyProfile, f CurrencyFormat, now time.Time) (*document, error) {
	if o == nil {
		return nil, &RenderError{Reason: "order is nil"}
	}
	if o.LineItems == nil {
		return nil, &RenderError{Reason: "order has no line items"}
	}

	d := &document{
		companyName: company.Name,
		companyLines: []string{
			company.Address,
			"Tel: " + company.Phone,
			"Email: " + company.Email,
			company.TaxID,
		},
		invoiceLines: []string{
			"No. Orden: " + string(o.Number),
			"Fecha: " + FormatDate(o.CreatedAt),
			"Vencimiento: " + now.AddDate(0, 0, 30).Format("02/01/2006"),
		},
	}

	if c := o.Customer; c != nil {
		d.billTo = append(d.billTo, strings.TrimSpace(c.FirstName+" "+c.LastName), c.Email)
		if c.Phone != "" {
			d.billTo = append(d.billTo, c.Phone)
		}
	}

	if a := o.ShippingAddress; a != nil {
		d.shipTo = append(d.shipTo, strings.TrimSpace(a.FirstName+" "+a.LastName), a.Address1)
		if a.Address2 != "" {
			d.shipTo = append(d.shipTo, a.Address2)
		}
		d.shipTo = append(d.shipTo,
			a.City+", "+a.Province,
			a.Zip+" - "+a.Country,
		)
	} else {
		d.shipTo = []string{noShippingInfo}
	}

	for _, li := range o.LineItems {
		product := li.Title
		if li.VariantTitle != "" {
			product += "\n" + li.VariantTitle
		}
		sku := li.SKU
		if sku == "" {
			sku = "N/A"
		}
		d.rows = append(d.rows, itemRow{
			product:   product,
			sku:       sku,
			quantity:  strconv.Itoa(li.Quantity),
			unitPrice: FormatCurrency(li.Price, f),
			total:     FormatCurrency(li.Total(), f),
		})
	}

	d.totals = append(d.totals, totalLine{text: "Subtotal: " + FormatCurrency(o.SubtotalPrice, f)})
	if shipping := o.ShippingAmount(); shipping.IsPositive() {
		d.totals = append(d.totals, totalLine{text: "Envío: " + FormatCurrency(shipping, f)})
	}
	if o.TotalTax.IsPositive() {
		d.totals = append(d.totals, totalLine{text: "Impuestos: " + FormatCurrency(o.TotalTax, f)})
	}
	// The final line uses the order total as-is, not a recomputation.
	d.totals = append(d.totals, totalLine{text: "TOTAL: " + FormatCurrency(o.TotalPrice, f), bold: true})

	d.footer = []string{
		"Gracias por su compra | " + company.Name,
		"Esta es una factura generada automáticamente",
	}
	return d, nil
}

// writePDF draws the resolved document and saves it to path.
func writePDF(d *document, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(sideMargin, topMargin, sideMargin)
	pdf.SetAutoPageBreak(true, topMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 for accented Spanish text
	pdf.AddPage()

	// Header band: company block on the left, invoice block right-aligned.
	leftW, rightW := 100.0, bodyWidth-100.0
	top := pdf.GetY()

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(leftW, 8, tr(d.companyName), "", "L", false)
	pdf.SetFont("Arial", "", 10)
	for _, line := range d.companyLines {
		pdf.MultiCell(leftW, 5, tr(line), "", "L", false)
	}
	leftBottom := pdf.GetY()

	pdf.SetXY(sideMargin+leftW, top)
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(rightW, 9, "FACTURA", "", 2, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range d.invoiceLines {
		pdf.CellFormat(rightW, 5, tr(line), "", 2, "R", false, 0, "")
	}
	if y := pdf.GetY(); y > leftBottom {
		leftBottom = y
	}
	pdf.SetY(leftBottom + 8)

	// Customer band: FACTURAR A on the left, ENVIAR A on the right.
	halfW := bodyWidth / 2
	top = pdf.GetY()
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(halfW, 6, "FACTURAR A:", "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range d.billTo {
		pdf.CellFormat(halfW, 5, tr(line), "", 2, "L", false, 0, "")
	}
	leftBottom = pdf.GetY()

	pdf.SetXY(sideMargin+halfW, top)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(halfW, 6, "ENVIAR A:", "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range d.shipTo {
		pdf.CellFormat(halfW, 5, tr(line), "", 2, "L", false, 0, "")
	}
	if y := pdf.GetY(); y > leftBottom {
		leftBottom = y
	}
	pdf.SetY(leftBottom + 8)

	// Item table.
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, title := range colTitles {
		last := i == len(colTitles)-1
		ln := 0
		if last {
			ln = 1
		}
		pdf.CellFormat(colWidths[i], 7, tr(title), "1", ln, "L", true, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	const lineH = 5.5
	for _, row := range d.rows {
		lines := pdf.SplitText(tr(row.product), colWidths[0]-2)
		rowH := float64(len(lines)) * lineH

		x, y := pdf.GetX(), pdf.GetY()
		pdf.MultiCell(colWidths[0], lineH, tr(row.product), "1", "L", false)
		pdf.SetXY(x+colWidths[0], y)
		pdf.CellFormat(colWidths[1], rowH, tr(row.sku), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], rowH, row.quantity, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], rowH, tr(row.unitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], rowH, tr(row.total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// Totals block, right-aligned. The TOTAL line is bold and larger.
	for _, line := range d.totals {
		if line.bold {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(bodyWidth, 8, tr(line.text), "", 1, "R", false, 0, "")
		} else {
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(bodyWidth, 6, tr(line.text), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, line := range d.footer {
		pdf.CellFormat(bodyWidth, 5, tr(line), "", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Wrap(err, "save document")
	}
	return nil
}
