package label

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	passport "battery-passport/internal/passport/domain"
)

// Page is one label to render: a unit (or batch) identifier, its public
// verification URL, and the text fields printed beside the QR symbol.
type Page struct {
	ID        string
	URL       string
	BrandText string
	EPRText   string
}

// Composer renders a multi-page thermal-label PDF, one page per input
// tuple, in input order.
type Composer struct {
	layout Layout
}

// NewComposer constructs a composer.
func NewComposer(layout Layout) (*Composer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Composer{layout: layout}, nil
}

// Render produces the label document bytes.
func (c *Composer) Render(pages []Page) ([]byte, error) {
	doc, err := c.build(pages)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Composer) build(pages []Page) (*gofpdf.Fpdf, error) {
	if len(pages) == 0 {
		return nil, errors.New("label: no pages to render")
	}
	layout := c.layout
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: layout.WidthMM, Ht: layout.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for i, page := range pages {
		if page.ID == "" || page.URL == "" {
			return nil, fmt.Errorf("label: page %d missing id or url", i+1)
		}
		png, err := qrcode.Encode(page.URL, qrcode.Medium, qrPixels)
		if err != nil {
			return nil, fmt.Errorf("label: qr encode %s: %w", page.ID, err)
		}

		pdf.AddPage()
		imageName := "qr-" + page.ID
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(png))

		// QR centered near the top, text block underneath.
		qrX := (layout.WidthMM - layout.QRSizeMM) / 2
		pdf.ImageOptions(imageName, qrX, 2, layout.QRSizeMM, layout.QRSizeMM, false, opts, 0, "")

		centerX := layout.WidthMM / 2
		textTop := 2 + layout.QRSizeMM + 3
		pdf.SetFont("Helvetica", "B", layout.BrandFontPt)
		pdf.Text(centerX-textWidth(pdf, "BRAND: "+strings.ToUpper(page.BrandText))/2, textTop, "BRAND: "+strings.ToUpper(page.BrandText))
		pdf.SetFont("Helvetica", "", layout.MetaFontPt)
		eprLine := "EPR: " + page.EPRText
		pdf.Text(centerX-textWidth(pdf, eprLine)/2, textTop+3, eprLine)
		idLine := "ID: " + passport.DisplayID(page.ID)
		pdf.Text(centerX-textWidth(pdf, idLine)/2, textTop+6, idLine)

		drawBinMark(pdf, layout)

		if pdf.Err() {
			return nil, fmt.Errorf("label: render %s: %v", page.ID, pdf.Error())
		}
	}
	return pdf, nil
}

// qrPixels is the raster size of the QR PNG embedded in each page. The
// symbol is scaled to QRSizeMM on paper; 512 keeps modules crisp at 300dpi.
const qrPixels = 512

// drawBinMark draws the mandatory crossed-out wheelie bin, simplified to a
// crossed box with a caption.
func drawBinMark(pdf *gofpdf.Fpdf, layout Layout) {
	x := layout.WidthMM - 8
	y := layout.HeightMM - 8
	pdf.Rect(x, y, 6, 6, "D")
	pdf.Line(x, y, x+6, y+6)
	pdf.Line(x, y+6, x+6, y)
	pdf.SetFont("Helvetica", "", 4)
	pdf.Text(x, y+7.5, "Do Not Bin")
}

func textWidth(pdf *gofpdf.Fpdf, s string) float64 {
	return pdf.GetStringWidth(s)
}
