package domain

import (
	"context"
	"time"
)

// RawTable is a delimited dataset exactly as fetched from the source: one
// header row and one string slice per record. No typing, renaming, or
// cleaning has been applied yet.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// TableFetcher retrieves a raw tabular dataset from a source URI
// (HTTP(S) URL or local file path).
type TableFetcher interface {
	Fetch(ctx context.Context, source string) (RawTable, error)
}

// DailyObservation is one source row after normalization: a parsed calendar
// date plus every cell of the row that parsed as a number, keyed by canonical
// column name. The derived total_cases column is always present.
type DailyObservation struct {
	Date   time.Time
	Values map[string]float64
}

// TotalCases returns the derived daily case total across all regions.
func (o DailyObservation) TotalCases() float64 {
	return o.Values[TotalCasesColumn]
}

// Value returns the numeric value of a canonical column and whether the row
// had a parseable value for it.
func (o DailyObservation) Value(column string) (float64, bool) {
	v, ok := o.Values[column]
	return v, ok
}

// MonthlyAggregate is one row of the monthly resample: the arithmetic mean of
// every numeric column over the daily observations of one calendar month.
// Values holds only columns that had at least one numeric daily value in the
// month.
type MonthlyAggregate struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	// Period marks the month as its last calendar day, mirroring the
	// month-end index of the published dashboard's resample.
	Period time.Time `json:"period"`

	Values map[string]float64 `json:"values"`
}

// TotalCases returns the month's mean daily case total.
func (m MonthlyAggregate) TotalCases() float64 {
	return m.Values[TotalCasesColumn]
}

// Value returns the monthly mean of a canonical column and whether the month
// had any value for it.
func (m MonthlyAggregate) Value(column string) (float64, bool) {
	v, ok := m.Values[column]
	return v, ok
}
