// Package model defines domain types for the datarails warehouse and reports.
package model

import "fmt"

// Fact is one financial data point: a value observed for a
// (period, department, account) key within a scenario.
type Fact struct {
	Period     string
	Department string
	Account    string
	Value      float64
	Currency   string
	Metadata   string

	// Scenario and Source are not part of the file content; they are
	// attached by the load operation and partition the warehouse.
	Scenario string
	Source   string
}

// LoadSummary describes the outcome of one load operation.
type LoadSummary struct {
	RowsLoaded int
	Source     string
	Scenario   string
}

// Message returns a human-readable one-line summary.
func (s LoadSummary) Message() string {
	return fmt.Sprintf("Loaded %d rows from %s into scenario %s",
		s.RowsLoaded, s.Source, s.Scenario)
}
