package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the fixed source format: day/month/year.
const dateLayout = "02/01/2006"

const dateColumn = "date"

// TotalCasesColumn is the derived per-row sum of the five region counts.
const TotalCasesColumn = "total_cases"

// RegionColumns are the five required geographic partitions of Malaysia,
// in canonical form.
var RegionColumns = []string{"southern", "northern", "central", "east_coast", "borneo"}

// WeatherColumns are the optional weather variables, in canonical form.
var WeatherColumns = []string{"temp_c", "rain_c", "rh_c"}

// CanonicalColumn converts a raw header to its canonical form: trimmed,
// lower-cased, spaces replaced by underscores.
func CanonicalColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Normalize standardizes a raw table into daily observations:
//
//  1. Canonicalize every column name (last one wins on collisions).
//  2. Require a date column; fail with a SchemaError if absent.
//  3. Parse dates under the fixed DD/MM/YYYY format; rows that fail to parse
//     are dropped silently.
//  4. Require all five region columns; fail with a SchemaError enumerating
//     every missing name.
//  5. Derive total_cases per row, treating missing or non-numeric region
//     cells as zero for the sum only.
//  6. Sort ascending by date (stable: rows sharing a date keep source order).
//
// An empty result after date parsing is a DataQualityError, not a silent
// empty slice.
func Normalize(table RawTable) ([]DailyObservation, error) {
	columns := make([]string, len(table.Columns))
	index := make(map[string]int, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = CanonicalColumn(c)
		index[columns[i]] = i
	}

	dateIdx, ok := index[dateColumn]
	if !ok {
		return nil, &SchemaError{Missing: []string{dateColumn}}
	}

	var missing []string
	for _, region := range RegionColumns {
		if _, ok := index[region]; !ok {
			missing = append(missing, region)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	observations := make([]DailyObservation, 0, len(table.Rows))
	for _, row := range table.Rows {
		if dateIdx >= len(row) {
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[dateIdx]))
		if err != nil {
			// Malformed or out-of-range dates (e.g. 31/02/2020) drop the row.
			continue
		}

		values := make(map[string]float64, len(columns))
		for i, name := range columns {
			if i == dateIdx || i >= len(row) {
				continue
			}
			if v, ok := parseNumeric(row[i]); ok {
				values[name] = v
			}
		}

		var total float64
		for _, region := range RegionColumns {
			total += values[region]
		}
		values[TotalCasesColumn] = total

		observations = append(observations, DailyObservation{Date: date, Values: values})
	}

	if len(observations) == 0 {
		return nil, &DataQualityError{Reason: "no rows with a parseable date"}
	}

	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
	return observations, nil
}

// parseNumeric parses a cell as float64. Empty and non-numeric cells report
// false and contribute nothing to the row.
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
