package domain

import (
	"sort"
	"time"
)

// Aggregate resamples daily observations into one row per calendar month,
// taking the arithmetic mean of every numeric column over the daily values
// available in that month. Columns are averaged independently: a row missing
// a weather reading still contributes its case counts, and a column with no
// values in a month is absent from that month's row.
//
// This is a mean of daily means, not a day-weighted total: a month with two
// reported days is averaged exactly like a fully reported one. The published
// dashboard behaves this way and downstream figures depend on it.
//
// Output rows are ordered ascending by (Year, Month). Months with no
// contributing daily rows do not appear.
func Aggregate(observations []DailyObservation) ([]MonthlyAggregate, error) {
	if len(observations) == 0 {
		return nil, &DataQualityError{Reason: "no daily observations to aggregate"}
	}

	type monthKey struct {
		year  int
		month int
	}
	type accumulator struct {
		sums   map[string]float64
		counts map[string]int
	}

	groups := make(map[monthKey]*accumulator)
	for _, obs := range observations {
		key := monthKey{year: obs.Date.Year(), month: int(obs.Date.Month())}
		acc := groups[key]
		if acc == nil {
			acc = &accumulator{sums: make(map[string]float64), counts: make(map[string]int)}
			groups[key] = acc
		}
		for column, v := range obs.Values {
			acc.sums[column] += v
			acc.counts[column]++
		}
	}

	keys := make([]monthKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	monthly := make([]MonthlyAggregate, 0, len(keys))
	totalSeen := false
	for _, key := range keys {
		acc := groups[key]
		values := make(map[string]float64, len(acc.sums))
		for column, sum := range acc.sums {
			values[column] = sum / float64(acc.counts[column])
		}
		if _, ok := values[TotalCasesColumn]; ok {
			totalSeen = true
		}
		monthly = append(monthly, MonthlyAggregate{
			Year:   key.year,
			Month:  key.month,
			Period: monthEnd(key.year, key.month),
			Values: values,
		})
	}

	if !totalSeen {
		return nil, &DataQualityError{Reason: "monthly aggregate has no total_cases values"}
	}
	return monthly, nil
}

// monthEnd returns the last calendar day of a month in UTC.
func monthEnd(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}
