package receipt

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

const (
	paperWidth  = 80.0
	paperHeight = 160.0
	margin      = 5.0
	lineHeight  = 5.0
)

// Receipt is everything printed on a checkout slip.
type Receipt struct {
	VenueName   string
	TableName   string
	Transaction *models.Transaction
}

// Render writes the receipt as a single-page PDF sized for an 80mm roll printer.
func Render(w io.Writer, r Receipt) error {
	if r.Transaction == nil {
		return fmt.Errorf("receipt without transaction")
	}
	trx := r.Transaction

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paperWidth, Ht: paperHeight},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Receipt "+trx.ReceiptNumber, true)
	pdf.AddPage()
	width := paperWidth - 2*margin

	venue := r.VenueName
	if venue == "" {
		venue = "Billiard Hall"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(width, 7, venue, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(width, lineHeight, trx.ReceiptNumber, "", 1, "C", false, 0, "")
	pdf.CellFormat(width, lineHeight, trx.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	where := "Counter"
	if trx.TableID != nil {
		where = r.TableName
		if where == "" {
			where = fmt.Sprintf("Table %d", *trx.TableID)
		}
	}
	row(pdf, width, "Table", where)
	divider(pdf, width)

	row(pdf, width, "Table time", amount(trx.TimeCost))
	row(pdf, width, "Products", amount(trx.ProductCost))
	divider(pdf, width)

	pdf.SetFont("Helvetica", "B", 10)
	row(pdf, width, "TOTAL", amount(trx.TotalAmount))
	pdf.SetFont("Helvetica", "", 8)
	pdf.Ln(1)

	row(pdf, width, "Payment", strings.ToUpper(trx.PaymentMethod))
	if trx.ReferenceNumber != nil {
		row(pdf, width, "Reference", *trx.ReferenceNumber)
	}
	pdf.Ln(4)
	pdf.CellFormat(width, lineHeight, "Thank you, see you next game!", "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build receipt %s: %w", trx.ReceiptNumber, err)
	}
	return pdf.Output(w)
}

func row(pdf *fpdf.Fpdf, width float64, label, value string) {
	half := width / 2
	pdf.CellFormat(half, lineHeight, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(half, lineHeight, value, "", 1, "R", false, 0, "")
}

func divider(pdf *fpdf.Fpdf, width float64) {
	y := pdf.GetY() + 1
	pdf.Line(margin, y, margin+width, y)
	pdf.Ln(2)
}

// amount -> core PDF fonts have no peso glyph
func amount(v float64) string {
	return strings.Replace(utils.FormatPeso(v), "₱", "PHP ", 1)
}
