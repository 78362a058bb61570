package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
)

// writeCSVFile exports rows with a header to a UTF-8 CSV file.
func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	w.Flush()
	return w.Error()
}
