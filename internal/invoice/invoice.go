// Package invoice renders orders as PDF invoices.
package invoice

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
)

const separator = "----------------------"

type Generator struct {
	Dir      string
	Compress bool
	Now      func() time.Time
}

func NewGenerator(dir string) *Generator {
	return &Generator{Dir: dir, Compress: true, Now: time.Now}
}

func FileName(orderID uuid.UUID) string {
	return "invoice-" + orderID.String() + ".pdf"
}

func (g *Generator) Path(orderID uuid.UUID) string {
	return filepath.Join(g.Dir, FileName(orderID))
}

// ItemLine formats one invoice row as "<title> - <qty> x $<price>".
func ItemLine(it models.OrderItem) string {
	return fmt.Sprintf("%s - %d x $%s", it.Title, it.Quantity, money.Format(it.Price))
}

func TotalLine(o *models.Order) string {
	return "Total Price: $" + money.Format(o.Total())
}

// Render writes the PDF for o to w.
func (g *Generator) Render(o *models.Order, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.Compress)
	pdf.SetTitle("Invoice "+o.ID.String(), true)
	if g.Now != nil {
		pdf.SetCreationDate(g.Now())
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "U", 26)
	pdf.Cell(0, 12, "Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 14)
	pdf.Cell(0, 8, separator)
	pdf.Ln(10)
	for _, it := range o.Items {
		pdf.Cell(0, 8, tr(ItemLine(it)))
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, "--------------")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 20)
	pdf.Cell(0, 10, TotalLine(o))

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// Stream renders o once into both the invoice file and w. A failure in either
// sink aborts generation; whatever was already written stays.
func (g *Generator) Stream(o *models.Order, w io.Writer) error {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return fmt.Errorf("create invoice dir: %w", err)
	}

	f, err := os.Create(g.Path(o.ID))
	if err != nil {
		return fmt.Errorf("create invoice file: %w", err)
	}
	defer f.Close()

	if err := g.Render(o, io.MultiWriter(f, w)); err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	return nil
}
