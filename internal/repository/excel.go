package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"iipviz/internal/config"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// headerScanRows bounds the search for the header row below title banners
const headerScanRows = 10

// ExcelSource reads records from an .xlsx workbook
type ExcelSource struct {
	path    string
	sheet   string
	columns config.ColumnAliases
}

// NewExcelSource creates a workbook source. An empty sheet selects the first one.
func NewExcelSource(path, sheet string, columns config.ColumnAliases) *ExcelSource {
	return &ExcelSource{path: path, sheet: sheet, columns: columns}
}

// Describe names the source for logs
func (s *ExcelSource) Describe() string {
	return "excel:" + s.path
}

// Load opens the workbook and reads every row below the header that has a name
func (s *ExcelSource) Load(ctx context.Context) ([]model.Record, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headerIdx, cols, err := s.locateHeader(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	records := make([]model.Record, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		name := cell(row, cols.name)
		if name == "" {
			continue
		}
		records = append(records, model.Record{
			Name:     name,
			Province: cell(row, cols.province),
			Type:     cell(row, cols.typ),
			RawPrice: cell(row, cols.price),
			RawArea:  cell(row, cols.area),
		})
	}
	return records, nil
}

type columnIndex struct {
	name, province, typ, price, area int
}

// locateHeader finds the first row naming the name, province and type columns.
// Price and area columns are optional; missing ones read as empty text.
func (s *ExcelSource) locateHeader(rows [][]string) (int, columnIndex, error) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		folded := make([]string, len(rows[i]))
		for j, h := range rows[i] {
			folded[j] = utils.Fold(h)
		}
		cols := columnIndex{
			name:     findColumn(folded, s.columns.Name),
			province: findColumn(folded, s.columns.Province),
			typ:      findColumn(folded, s.columns.Type),
			price:    findColumn(folded, s.columns.Price),
			area:     findColumn(folded, s.columns.Area),
		}
		if cols.name >= 0 && cols.province >= 0 && cols.typ >= 0 {
			return i, cols, nil
		}
	}
	return 0, columnIndex{}, fmt.Errorf("header row with name, province and type columns not found")
}

// findColumn returns the index of the first header equal to an alias, trying
// aliases in order so the most specific one wins
func findColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		want := utils.Fold(alias)
		for j, h := range headers {
			if h == want {
				return j
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
