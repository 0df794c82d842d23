package catalog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

func TestWorkbookExportCanBeImported(t *testing.T) {
	products := []models.Product{
		{ID: primitive.NewObjectID(), Name: "Mug", Price: 12.5, OriginalPrice: 15, Category: "Kitchen", Colors: []string{"red", "blue"}, Stock: 3, Featured: true},
		{ID: primitive.NewObjectID(), Name: "Tee", Price: 30, Category: "Apparel", Stock: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, products))

	rows, skipped, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, products[0].ID.Hex(), rows[0].ID)
	assert.Equal(t, "Mug", rows[0].Product.Name)
	assert.Equal(t, 12.5, rows[0].Product.Price)
	assert.Equal(t, []string{"red", "blue"}, rows[0].Product.Colors)
	assert.Equal(t, 3, rows[0].Product.Stock)
	assert.True(t, rows[0].Product.Featured)
	assert.Equal(t, 3, rows[1].Line)
}

func TestReadWorkbookSkipsInvalidRows(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	require.NoError(t, err)
	for _, cells := range [][]string{
		exportHeaders,
		{"", "Valid", "", "9.5"},
		{"", "", "", "3"},
		{"", "No price", "", "abc"},
	} {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	rows, skipped, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Valid", rows[0].Product.Name)
	assert.Equal(t, []int{3, 4}, skipped)
}
