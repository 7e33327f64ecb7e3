package domain

import "time"

// Snapshot is the complete output of one pipeline run: the monthly table plus
// every derived statistic, exactly what the presentation layer consumes. It
// is immutable once built and never persisted; each run derives a fresh one.
type Snapshot struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	// RawRows is the row count of the fetched table; DailyRows the count
	// surviving normalization; DroppedRows the difference (unparseable dates).
	RawRows     int `json:"raw_rows"`
	DailyRows   int `json:"daily_rows"`
	DroppedRows int `json:"dropped_rows"`

	Monthly     []MonthlyAggregate `json:"monthly"`
	Seasonal    SeasonalSummary    `json:"seasonal"`
	Regional    RegionalSummary    `json:"regional"`
	Correlation CorrelationSummary `json:"correlation"`
}

// BuildSnapshot assembles the presentation-facing result of one pipeline run,
// stamping it with the package clock.
func BuildSnapshot(runID, source string, rawRows, dailyRows int, monthly []MonthlyAggregate, summary Summary) Snapshot {
	return Snapshot{
		RunID:       runID,
		Source:      source,
		GeneratedAt: clock.Now().UTC(),
		RawRows:     rawRows,
		DailyRows:   dailyRows,
		DroppedRows: rawRows - dailyRows,
		Monthly:     monthly,
		Seasonal:    summary.Seasonal,
		Regional:    summary.Regional,
		Correlation: summary.Correlation,
	}
}
