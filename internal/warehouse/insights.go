package warehouse

import (
	"fmt"
)

// Insight is one stored AI narrative generated from a variance report.
type Insight struct {
	ID        int64
	Actual    string
	Budget    string
	Prompt    string
	Insights  string
	RowCount  int
	CreatedAt string
}

// SaveInsight persists a generated narrative and returns its identifier.
func (s *Store) SaveInsight(in Insight) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO ai_insights (actual, budget, prompt, insights, row_count)
		VALUES (?, ?, ?, ?, ?)`,
		in.Actual, in.Budget, in.Prompt, in.Insights, in.RowCount,
	)
	if err != nil {
		return 0, fmt.Errorf("saving insight: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("saving insight: %w", err)
	}
	return id, nil
}

// ListInsights returns stored narratives, newest first, optionally filtered
// by the scenario pair they were generated for. The second return value is
// the total match count ignoring pagination.
func (s *Store) ListInsights(actual, budget string, limit, offset int) ([]Insight, int, error) {
	where := " WHERE 1=1"
	var args []any
	if actual != "" {
		where += " AND actual = ?"
		args = append(args, actual)
	}
	if budget != "" {
		where += " AND budget = ?"
		args = append(args, budget)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM ai_insights"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting insights: %w", err)
	}

	query := `SELECT id, actual, budget, IFNULL(prompt, ''), insights, row_count, created_at
		FROM ai_insights` + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing insights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var insights []Insight
	for rows.Next() {
		var in Insight
		if err := rows.Scan(&in.ID, &in.Actual, &in.Budget, &in.Prompt,
			&in.Insights, &in.RowCount, &in.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning insight: %w", err)
		}
		insights = append(insights, in)
	}
	return insights, total, rows.Err()
}
