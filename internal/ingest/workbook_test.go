package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook assembles an in-memory .xlsx with the given sheets, each a
// grid of string cells starting at A1.
func buildWorkbook(t *testing.T, sheets map[string][][]string) *bytes.Buffer {
	t.Helper()

	wb := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("renaming default sheet: %v", err)
			}
			first = false
		} else {
			if _, err := wb.NewSheet(name); err != nil {
				t.Fatalf("adding sheet %s: %v", name, err)
			}
		}
		for y, row := range rows {
			for x, value := range row {
				cell, err := excelize.CoordinatesToCellName(x+1, y+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := wb.SetCellValue(name, cell, value); err != nil {
					t.Fatalf("setting cell: %v", err)
				}
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}
	return buf
}

func factGrid(rows ...[]string) [][]string {
	grid := [][]string{{"period", "department", "account", "value"}}
	return append(grid, rows...)
}

func TestReadWorkbookDefaultsToFirstSheet(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"Budget": factGrid(
			[]string{"2024-01", "Sales", "Revenue", "900"},
		),
	})

	facts, err := ReadWorkbook(buf, nil, nil)
	if err != nil {
		t.Fatalf("ReadWorkbook returned error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Value != 900 {
		t.Fatalf("value = %v, want 900", facts[0].Value)
	}
}

func TestReadWorkbookNamedSheetsConcatenateInOrder(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"Q1": factGrid(
			[]string{"2024-01", "Sales", "Revenue", "100"},
		),
		"Q2": factGrid(
			[]string{"2024-04", "Sales", "Revenue", "200"},
		),
	})

	facts, err := ReadWorkbook(buf, []string{"Q2", "Q1"}, nil)
	if err != nil {
		t.Fatalf("ReadWorkbook returned error: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	if facts[0].Period != "2024-04" || facts[1].Period != "2024-01" {
		t.Fatalf("facts not in caller order: %s then %s", facts[0].Period, facts[1].Period)
	}
}

func TestReadWorkbookMissingSheet(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"Data": factGrid([]string{"2024-01", "Sales", "Revenue", "100"}),
	})

	_, err := ReadWorkbook(buf, []string{"Nope"}, nil)
	if err == nil || !strings.Contains(err.Error(), `worksheet "Nope" not found`) {
		t.Fatalf("want missing-worksheet error, got %v", err)
	}
}

func TestReadWorkbookMissingTable(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"Data": factGrid([]string{"2024-01", "Sales", "Revenue", "100"}),
	})

	_, err := ReadWorkbook(buf, nil, []string{"FactsTable"})
	if err == nil || !strings.Contains(err.Error(), `table "FactsTable" not found`) {
		t.Fatalf("want missing-table error, got %v", err)
	}
}

func TestReadWorkbookNamedTable(t *testing.T) {
	wb := excelize.NewFile()
	grid := factGrid([]string{"2024-01", "Sales", "Revenue", "150"})
	for y, row := range grid {
		for x, value := range row {
			cell, _ := excelize.CoordinatesToCellName(x+1, y+1)
			if err := wb.SetCellValue("Sheet1", cell, value); err != nil {
				t.Fatalf("setting cell: %v", err)
			}
		}
	}
	if err := wb.AddTable("Sheet1", &excelize.Table{
		Range: "A1:D2",
		Name:  "Facts",
	}); err != nil {
		t.Fatalf("adding table: %v", err)
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}

	facts, err := ReadWorkbook(buf, nil, []string{"Facts"})
	if err != nil {
		t.Fatalf("ReadWorkbook returned error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Value != 150 {
		t.Fatalf("value = %v, want 150", facts[0].Value)
	}
}

func TestReadWorkbookAggregatesRowErrorsAcrossSheets(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"A": factGrid([]string{"bad-period", "Sales", "Revenue", "100"}),
		"B": factGrid([]string{"2024-01", "Sales", "Revenue", "oops"}),
	})

	_, err := ReadWorkbook(buf, []string{"A", "B"}, nil)
	batchErr, ok := err.(*BatchError)
	if !ok {
		t.Fatalf("want BatchError, got %v", err)
	}
	if len(batchErr.Rows) != 2 {
		t.Fatalf("got %d row errors, want 2 (aggregated across sheets)", len(batchErr.Rows))
	}
}

func TestReadWorkbookSkipsLeadingBlankRows(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"Data": {
			{"", "", "", ""},
			{"period", "department", "account", "value"},
			{"2024-01", "Sales", "Revenue", "100"},
		},
	})

	facts, err := ReadWorkbook(buf, []string{"Data"}, nil)
	if err != nil {
		t.Fatalf("ReadWorkbook returned error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1 (header found below blank row)", len(facts))
	}
}
