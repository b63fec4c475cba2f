// Package export converts the product catalog to and from xlsx workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

const (
	sheetName  = "Products"
	timeLayout = "2006-01-02 15:04:05"
	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"ID", "Title", "Description", "Price", "Category",
	"Images", "Dimensions", "Material", "InStock", "CreatedAt",
}

// ErrEmptyWorkbook is returned when an import has no data rows.
var ErrEmptyWorkbook = errors.New("workbook is empty or missing header row")

// WriteCatalog writes products as a single-sheet workbook. Images are joined
// with newlines.
func WriteCatalog(w io.Writer, products []domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(strings.Join(p.Images, "\n"))
		row.AddCell().SetValue(p.Dimensions)
		row.AddCell().SetValue(p.Material)
		row.AddCell().SetValue(strconv.FormatBool(p.InStock))
		row.AddCell().SetValue(p.CreatedAt.UTC().Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadCatalog parses a workbook in the WriteCatalog layout into drafts. Rows
// without a title or with an unparsable price are skipped and counted. The ID
// and CreatedAt columns are ignored.
func ReadCatalog(r io.ReaderAt, size int64) (drafts []domain.ProductDraft, skipped int, err error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return nil, 0, ErrEmptyWorkbook
	}

	sheet := file.Sheets[0]
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		title := get(1)
		price, perr := strconv.ParseFloat(get(3), 64)
		if title == "" || perr != nil {
			skipped++
			continue
		}
		inStock, berr := strconv.ParseBool(get(8))
		if berr != nil {
			inStock = true
		}

		var images []string
		for _, img := range strings.Split(get(5), "\n") {
			if img = strings.TrimSpace(img); img != "" {
				images = append(images, img)
			}
		}

		drafts = append(drafts, domain.ProductDraft{
			Title:       title,
			Description: get(2),
			Price:       price,
			Category:    get(4),
			Images:      images,
			Dimensions:  get(6),
			Material:    get(7),
			InStock:     inStock,
		})
	}
	return drafts, skipped, nil
}
