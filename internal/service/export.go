package service

import (
	"context"
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var catalogHeaders = []string{
	"ID", "Code", "Title", "Description", "Category", "Status",
	"Price", "Stock", "Thumbnails", "CreatedAt", "UpdatedAt",
}

// CatalogExporter выгружает каталог в xlsx
type CatalogExporter struct {
	products repository.ProductRepository
}

func NewCatalogExporter(products repository.ProductRepository) *CatalogExporter {
	return &CatalogExporter{products: products}
}

func (e *CatalogExporter) WriteXLSX(ctx context.Context, w io.Writer) error {
	products, err := e.products.All(ctx)
	if err != nil {
		return domain.Storage("list products", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, h := range catalogHeaders {
		header.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Code)
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(string(p.Status))
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(strings.Join(p.Thumbnails, ","))
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file.Write(w)
}
