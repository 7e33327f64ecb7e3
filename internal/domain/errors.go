package domain

import (
	"errors"
	"fmt"
)

// ErrStatisticUndefined marks a single statistic that cannot be computed
// (variable absent from the dataset, zero variance, or too few samples).
// It is local to the statistic: sibling statistics still compute.
var ErrStatisticUndefined = errors.New("statistic undefined")

// FetchError reports a failure to retrieve or parse the raw dataset. It is
// fatal to the pipeline run: no partial dataset is acceptable downstream.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports required columns missing after header normalization.
// The message enumerates every missing column, not just the first. Fatal:
// a partially-regioned dataset produces meaningless totals.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 1 && e.Missing[0] == dateColumn {
		return "missing date column"
	}
	return fmt.Sprintf("missing region columns: %v", e.Missing)
}

// DataQualityError reports a dataset that satisfied the schema but was too
// degenerate to analyze: every date failed to parse, the monthly aggregate
// came out empty, or a required numeric series is entirely absent. Fatal,
// and deliberately distinct from SchemaError.
type DataQualityError struct {
	Reason string
}

func (e *DataQualityError) Error() string {
	return "degenerate dataset: " + e.Reason
}
