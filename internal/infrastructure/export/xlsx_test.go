package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func TestWriteThenReadCatalog(t *testing.T) {
	products := []domain.Product{
		{
			ID:          "p1",
			Title:       "Clay vase",
			Description: "Wheel thrown",
			Price:       42.5,
			Category:    "ceramics",
			Images:      []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
			Material:    "stoneware",
			InStock:     true,
			CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{ID: "p2", Title: "Wool scarf", Description: "Knitted", Price: 30, Category: "textiles"},
	}

	var buf bytes.Buffer
	if err := WriteCatalog(&buf, products); err != nil {
		t.Fatalf("WriteCatalog returned error: %v", err)
	}

	drafts, skipped, err := ReadCatalog(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadCatalog returned error: %v", err)
	}
	if skipped != 0 || len(drafts) != 2 {
		t.Fatalf("expected 2 drafts and none skipped, got %d/%d", len(drafts), skipped)
	}
	first := drafts[0]
	if first.Title != "Clay vase" || first.Price != 42.5 || len(first.Images) != 2 || !first.InStock {
		t.Fatalf("unexpected first draft: %+v", first)
	}
	if drafts[1].InStock {
		t.Fatal("expected out-of-stock flag to survive")
	}
}

func TestReadCatalog_SkipsBadRows(t *testing.T) {
	file := xlsx.NewFile()
	sheet, _ := file.AddSheet(sheetName)
	header := sheet.AddRow()
	for _, h := range headers {
		header.AddCell().SetValue(h)
	}
	bad := sheet.AddRow()
	bad.AddCell().SetValue("")
	bad.AddCell().SetValue("No price")
	bad.AddCell().SetValue("x")
	bad.AddCell().SetValue("cheap")

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	drafts, skipped, err := ReadCatalog(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadCatalog returned error: %v", err)
	}
	if len(drafts) != 0 || skipped != 1 {
		t.Fatalf("expected the row to be skipped, got drafts=%d skipped=%d", len(drafts), skipped)
	}
}

func TestReadCatalog_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCatalog(&buf, nil); err != nil {
		t.Fatalf("WriteCatalog returned error: %v", err)
	}
	if _, _, err := ReadCatalog(bytes.NewReader(buf.Bytes()), int64(buf.Len())); !errors.Is(err, ErrEmptyWorkbook) {
		t.Fatalf("expected ErrEmptyWorkbook, got %v", err)
	}
}
