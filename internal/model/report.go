package model

// ReportRow is one aggregated (period, department) total.
type ReportRow struct {
	Period     string
	Department string
	Total      float64
}

// VarianceRow is one actual-vs-budget comparison for a
// (period, department, account) key.
type VarianceRow struct {
	Period     string
	Department string
	Account    string
	Actual     float64
	Budget     float64
	Variance   float64

	// VariancePct is variance relative to budget. Nil when the budget
	// side is zero, where the ratio is undefined.
	VariancePct *float64
}
