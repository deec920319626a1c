package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"iipviz/internal/config"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}

	path := filepath.Join(t.TempDir(), "iipmap.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelSource_Load(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]any{
		{"DANH SÁCH KHU CÔNG NGHIỆP"},
		{},
		{"STT", "Tên", "Tỉnh/Thành phố", "Loại", "Giá thuê đất", "Tổng diện tích"},
		{1, "Khu công nghiệp VSIP II", "Bình Dương", "Khu công nghiệp", "85-95 USD/m²/năm", "345 ha"},
		{2, "", "Bình Dương", "Khu công nghiệp", "100 USD", "10 ha"},
		{3, "Cụm công nghiệp Tân Mỹ", "Bình Dương", "Cụm công nghiệp", "", "50 ha"},
	})

	src := NewExcelSource(path, "", config.DefaultLexicon().Columns)
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Khu công nghiệp VSIP II", records[0].Name)
	assert.Equal(t, "Bình Dương", records[0].Province)
	assert.Equal(t, "Khu công nghiệp", records[0].Type)
	assert.Equal(t, "85-95 USD/m²/năm", records[0].RawPrice)
	assert.Equal(t, "345 ha", records[0].RawArea)

	assert.Equal(t, "Cụm công nghiệp Tân Mỹ", records[1].Name)
	assert.Equal(t, "", records[1].RawPrice)
	assert.Contains(t, src.Describe(), "iipmap.xlsx")
}

func TestExcelSource_OptionalColumns(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"Name", "Province", "Type"},
		{"Amata", "Đồng Nai", "Khu công nghiệp"},
	})

	records, err := NewExcelSource(path, "Sheet1", config.DefaultLexicon().Columns).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].RawPrice)
	assert.Equal(t, "", records[0].RawArea)
}

func TestExcelSource_Errors(t *testing.T) {
	ctx := context.Background()
	cols := config.DefaultLexicon().Columns

	_, err := NewExcelSource(filepath.Join(t.TempDir(), "missing.xlsx"), "", cols).Load(ctx)
	assert.Error(t, err)

	noHeader := writeWorkbook(t, "Sheet1", [][]any{{"a", "b", "c"}, {"1", "2", "3"}})
	_, err = NewExcelSource(noHeader, "", cols).Load(ctx)
	assert.ErrorContains(t, err, "header row")

	_, err = NewExcelSource(noHeader, "Other", cols).Load(ctx)
	assert.Error(t, err)
}
