package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ADanMan/datarails-open/internal/model"
)

// ReadWorkbook parses an .xlsx workbook into normalized facts.
//
// With no selectors the first worksheet is read. Otherwise each named
// worksheet and each named table is resolved independently and their rows
// are concatenated in the order the caller listed them (sheets first,
// then tables). Row failures across all regions aggregate into one
// BatchError so the load stays all-or-nothing.
func ReadWorkbook(r io.Reader, sheets, tables []string) ([]model.Fact, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = wb.Close() }()

	if len(sheets) == 0 && len(tables) == 0 {
		first := wb.GetSheetName(0)
		if first == "" {
			return nil, nil
		}
		sheets = []string{first}
	}

	var (
		facts   []model.Fact
		rowErrs []RowError
	)

	for _, name := range sheets {
		regionFacts, regionErrs, err := sheetRegion(wb, name)
		if err != nil {
			return nil, err
		}
		facts = append(facts, regionFacts...)
		rowErrs = append(rowErrs, regionErrs...)
	}

	for _, name := range tables {
		regionFacts, regionErrs, err := tableRegion(wb, name)
		if err != nil {
			return nil, err
		}
		facts = append(facts, regionFacts...)
		rowErrs = append(rowErrs, regionErrs...)
	}

	if len(rowErrs) > 0 {
		return nil, &BatchError{Rows: rowErrs}
	}
	return facts, nil
}

// sheetRegion reads a whole worksheet. The header is the first non-blank
// row; everything below it is data.
func sheetRegion(wb *excelize.File, name string) ([]model.Fact, []RowError, error) {
	if !hasSheet(wb, name) {
		return nil, nil, fmt.Errorf("worksheet %q not found in workbook", name)
	}

	rows, err := wb.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("reading worksheet %q: %w", name, err)
	}

	for i, row := range rows {
		if !isBlank(row) {
			return normalizeRegion(row, rows[i+1:])
		}
	}
	return nil, nil, nil
}

// tableRegion reads a named table's cell range. The table's first row is
// its header.
func tableRegion(wb *excelize.File, name string) ([]model.Fact, []RowError, error) {
	sheet, ref, err := findTable(wb, name)
	if err != nil {
		return nil, nil, err
	}

	rows, err := rangeRows(wb, sheet, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("reading table %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return normalizeRegion(rows[0], rows[1:])
}

func findTable(wb *excelize.File, name string) (sheet, ref string, err error) {
	for _, ws := range wb.GetSheetList() {
		tbls, err := wb.GetTables(ws)
		if err != nil {
			return "", "", fmt.Errorf("listing tables on %q: %w", ws, err)
		}
		for _, tbl := range tbls {
			if tbl.Name == name {
				return ws, tbl.Range, nil
			}
		}
	}
	return "", "", fmt.Errorf("table %q not found in workbook", name)
}

// rangeRows materializes the cells of an A1-style range as strings.
func rangeRows(wb *excelize.File, sheet, ref string) ([][]string, error) {
	corners := strings.Split(ref, ":")
	if len(corners) != 2 {
		return nil, fmt.Errorf("malformed table range %q", ref)
	}
	x1, y1, err := excelize.CellNameToCoordinates(corners[0])
	if err != nil {
		return nil, err
	}
	x2, y2, err := excelize.CellNameToCoordinates(corners[1])
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for y := y1; y <= y2; y++ {
		row := make([]string, 0, x2-x1+1)
		for x := x1; x <= x2; x++ {
			cell, err := excelize.CoordinatesToCellName(x, y)
			if err != nil {
				return nil, err
			}
			value, err := wb.GetCellValue(sheet, cell)
			if err != nil {
				return nil, err
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func hasSheet(wb *excelize.File, name string) bool {
	for _, ws := range wb.GetSheetList() {
		if ws == name {
			return true
		}
	}
	return false
}
