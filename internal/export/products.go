// Package export writes catalog data as Excel workbooks.
package export

import (
	"io"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ProductsFile = "products.xlsx"
)

var productHeaders = []string{"ID", "Title", "Price", "Description", "ImageURL", "CreatedAt", "UpdatedAt"}

func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.String())
		row.AddCell().SetString(p.Title)
		row.AddCell().SetString(money.Format(p.Price))
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.ImageURL)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
