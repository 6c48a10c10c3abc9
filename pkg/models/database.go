package models

// AttemptDetail is an AttemptSummary together with its distances and
// per-word errors, as read back from storage.
type AttemptDetail struct {
	AttemptSummary
	Breakdown ScoreBreakdown `json:"breakdown"`
	Errors    []WordError    `json:"errors"`
}

// AttemptStats aggregates the stored history.
type AttemptStats struct {
	Count        int64   `json:"count"`
	AverageScore float64 `json:"average_score"`
}
