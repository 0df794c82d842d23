package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"storefront/models"
)

const sheetName = "Products"

var exportHeaders = []string{
	"ID", "Name", "Description", "Price", "OriginalPrice", "Category",
	"Colors", "Badge", "Stock", "Featured", "SpecialDiscount", "Image",
	"StockStatus", "CreatedAt", "UpdatedAt",
}

// WriteWorkbook writes products as an xlsx sheet with one header row.
func WriteWorkbook(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.Hex())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetFloat(p.Price)
		row.AddCell().SetFloat(p.OriginalPrice)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetString(strings.Join(p.Colors, ","))
		row.AddCell().SetString(p.Badge)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Featured)
		row.AddCell().SetBool(p.SpecialDiscount)
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(NewView(p).StockStatus)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file.Write(w)
}

// ImportRow is one product read back from a workbook. ID is empty for rows
// that describe new products.
type ImportRow struct {
	Line    int
	ID      string
	Product models.Product
}

// ReadWorkbook parses the first sheet in the export layout. Rows without a
// name or with an unparseable price are skipped and reported by line number.
func ReadWorkbook(r io.ReaderAt, size int64) (rows []ImportRow, skipped []int, err error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("parse workbook: %w", err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 2 {
		return nil, nil, fmt.Errorf("workbook is empty or missing header row")
	}

	for i, row := range file.Sheets[0].Rows[1:] {
		line := i + 2
		get := func(idx int) string {
			if idx < len(row.Cells) {
				return strings.TrimSpace(row.Cells[idx].String())
			}
			return ""
		}

		name := get(1)
		price, priceErr := strconv.ParseFloat(get(3), 64)
		if name == "" || priceErr != nil || price < 0 {
			skipped = append(skipped, line)
			continue
		}
		original, _ := strconv.ParseFloat(get(4), 64)
		stock, _ := strconv.ParseFloat(get(8), 64)

		var colors []string
		for _, c := range strings.Split(get(6), ",") {
			if c = strings.TrimSpace(c); c != "" {
				colors = append(colors, c)
			}
		}

		rows = append(rows, ImportRow{
			Line: line,
			ID:   get(0),
			Product: models.Product{
				Name:            name,
				Description:     get(2),
				Price:           price,
				OriginalPrice:   original,
				Category:        get(5),
				Colors:          colors,
				Badge:           get(7),
				Stock:           max(int(stock), 0),
				Featured:        parseBool(get(9)),
				SpecialDiscount: parseBool(get(10)),
				Image:           get(11),
			},
		})
	}
	return rows, skipped, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.ToLower(s))
	return err == nil && b
}
