package domain

import (
	"math"
	"sort"
	"strings"
)

// weatherFactors lists the weather variables in their fixed comparison order.
// Ties in the strongest-factor selection resolve to the earlier entry.
var weatherFactors = []struct {
	column string
	name   string
}{
	{column: "temp_c", name: "Temperature"},
	{column: "rain_c", name: "Rainfall"},
	{column: "rh_c", name: "Humidity"},
}

// Coefficient is a Pearson correlation coefficient that may be undefined.
// Undefined is distinct from zero: a variable absent from the dataset or with
// zero variance has no coefficient at all.
type Coefficient struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Float returns the coefficient value, or ErrStatisticUndefined when the
// coefficient could not be computed.
func (c Coefficient) Float() (float64, error) {
	if !c.Defined {
		return 0, ErrStatisticUndefined
	}
	return c.Value, nil
}

// CorrelationSummary holds the Pearson correlations between each weather
// variable and total_cases over the monthly aggregates, rounded to two
// decimal places.
type CorrelationSummary struct {
	Temperature Coefficient `json:"temperature"`
	Rainfall    Coefficient `json:"rainfall"`
	Humidity    Coefficient `json:"humidity"`

	// StrongestFactor is the display name of the weather variable with the
	// largest absolute defined coefficient. Empty when every coefficient is
	// undefined: no strongest factor can be determined.
	StrongestFactor string `json:"strongest_factor,omitempty"`
}

// YearMean is the mean of the monthly total_cases values within one year.
type YearMean struct {
	Year int     `json:"year"`
	Mean float64 `json:"mean"`
}

// MonthMean is the mean of total_cases for one calendar month across all
// years in the dataset.
type MonthMean struct {
	Month int     `json:"month"`
	Mean  float64 `json:"mean"`
}

// SeasonalSummary captures the temporal and seasonal trend statistics.
type SeasonalSummary struct {
	// AvgMonthlyCases is the mean of total_cases across all monthly rows.
	AvgMonthlyCases float64 `json:"avg_monthly_cases"`

	// PeakYear is the year with the highest mean monthly total_cases.
	// Ties resolve to the earliest year.
	PeakYear int `json:"peak_year"`

	// PeakMonths are the calendar months (1-12) with the highest mean
	// total_cases across all years: up to three, sorted into calendar order
	// for display. Ranking ties resolve to the earlier month.
	PeakMonths []int `json:"peak_months"`

	YearlyMeans  []YearMean  `json:"yearly_means"`
	MonthlyMeans []MonthMean `json:"monthly_means"`
}

// RegionStat is one region's monthly-mean statistics.
type RegionStat struct {
	Column string  `json:"column"`
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`

	// Normalized is the min-max scaled mean across regions, in [0, 1].
	Normalized float64 `json:"normalized"`
}

// RegionalSummary compares HFMD incidence across the five regions.
type RegionalSummary struct {
	// AvgMonthlyCases is the mean of the per-region monthly means.
	AvgMonthlyCases float64 `json:"avg_monthly_cases"`

	HighestRegion string  `json:"highest_region"`
	LowestRegion  string  `json:"lowest_region"`
	CaseGap       float64 `json:"case_gap"`

	Regions []RegionStat `json:"regions"`
}

// Summary bundles every derived statistic of one pipeline run.
type Summary struct {
	Seasonal    SeasonalSummary    `json:"seasonal"`
	Regional    RegionalSummary    `json:"regional"`
	Correlation CorrelationSummary `json:"correlation"`
}

// Summarize derives seasonal, regional, and correlation statistics from the
// monthly aggregates. Structural degeneracy (an empty monthly set, or no
// total_cases series) is a DataQualityError; individual undefined statistics
// are isolated and never abort the rest.
func Summarize(monthly []MonthlyAggregate) (Summary, error) {
	if len(monthly) == 0 {
		return Summary{}, &DataQualityError{Reason: "no monthly aggregates to summarize"}
	}

	totals := make([]float64, 0, len(monthly))
	for _, m := range monthly {
		if v, ok := m.Value(TotalCasesColumn); ok {
			totals = append(totals, v)
		}
	}
	if len(totals) == 0 {
		return Summary{}, &DataQualityError{Reason: "total_cases series is empty"}
	}

	return Summary{
		Seasonal:    summarizeSeasonal(monthly, mean(totals)),
		Regional:    summarizeRegions(monthly),
		Correlation: summarizeCorrelations(monthly),
	}, nil
}

func summarizeSeasonal(monthly []MonthlyAggregate, avgMonthly float64) SeasonalSummary {
	yearSums := make(map[int]float64)
	yearCounts := make(map[int]int)
	monthSums := make(map[int]float64)
	monthCounts := make(map[int]int)
	for _, m := range monthly {
		v, ok := m.Value(TotalCasesColumn)
		if !ok {
			continue
		}
		yearSums[m.Year] += v
		yearCounts[m.Year]++
		monthSums[m.Month] += v
		monthCounts[m.Month]++
	}

	years := sortedKeys(yearCounts)
	yearly := make([]YearMean, 0, len(years))
	peakYear := 0
	peakMean := math.Inf(-1)
	for _, year := range years {
		ym := yearSums[year] / float64(yearCounts[year])
		yearly = append(yearly, YearMean{Year: year, Mean: ym})
		// Strict comparison keeps the earliest year on ties (stable argmax).
		if ym > peakMean {
			peakMean = ym
			peakYear = year
		}
	}

	months := sortedKeys(monthCounts)
	monthMeans := make([]MonthMean, 0, len(months))
	for _, month := range months {
		monthMeans = append(monthMeans, MonthMean{
			Month: month,
			Mean:  monthSums[month] / float64(monthCounts[month]),
		})
	}

	return SeasonalSummary{
		AvgMonthlyCases: avgMonthly,
		PeakYear:        peakYear,
		PeakMonths:      topMonths(monthMeans, 3),
		YearlyMeans:     yearly,
		MonthlyMeans:    monthMeans,
	}
}

// topMonths picks the n months with the highest mean (ties broken by natural
// month order) and returns them re-sorted into calendar order for display.
func topMonths(monthMeans []MonthMean, n int) []int {
	ranked := make([]MonthMean, len(monthMeans))
	copy(ranked, monthMeans)
	// monthMeans arrives in calendar order, so a stable sort by mean keeps
	// natural month order among ties.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Mean > ranked[j].Mean })
	if n > len(ranked) {
		n = len(ranked)
	}
	top := make([]int, 0, n)
	for _, m := range ranked[:n] {
		top = append(top, m.Month)
	}
	// Calendar order, not magnitude order, for display.
	sort.Ints(top)
	return top
}

func summarizeRegions(monthly []MonthlyAggregate) RegionalSummary {
	stats := make([]RegionStat, 0, len(RegionColumns))
	for _, region := range RegionColumns {
		var vals []float64
		for _, m := range monthly {
			if v, ok := m.Value(region); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		stats = append(stats, RegionStat{
			Column: region,
			Name:   regionDisplayName(region),
			Mean:   mean(vals),
		})
	}
	if len(stats) == 0 {
		return RegionalSummary{}
	}

	minMean, maxMean := stats[0].Mean, stats[0].Mean
	highest, lowest := stats[0], stats[0]
	var sum float64
	for _, s := range stats {
		sum += s.Mean
		if s.Mean < minMean {
			minMean = s.Mean
		}
		if s.Mean > maxMean {
			maxMean = s.Mean
		}
		if s.Mean > highest.Mean {
			highest = s
		}
		if s.Mean < lowest.Mean {
			lowest = s
		}
	}
	// Epsilon keeps the normalization defined when all regions tie.
	spread := maxMean - minMean + 1e-9
	for i := range stats {
		stats[i].Normalized = (stats[i].Mean - minMean) / spread
	}

	return RegionalSummary{
		AvgMonthlyCases: sum / float64(len(stats)),
		HighestRegion:   highest.Name,
		LowestRegion:    lowest.Name,
		CaseGap:         maxMean - minMean,
		Regions:         stats,
	}
}

func summarizeCorrelations(monthly []MonthlyAggregate) CorrelationSummary {
	var summary CorrelationSummary
	coefficients := make([]Coefficient, len(weatherFactors))
	for i, factor := range weatherFactors {
		coefficients[i] = correlateWithTotal(monthly, factor.column)
	}
	summary.Temperature = coefficients[0]
	summary.Rainfall = coefficients[1]
	summary.Humidity = coefficients[2]

	bestAbs := math.Inf(-1)
	for i, factor := range weatherFactors {
		c := coefficients[i]
		if !c.Defined {
			// Undefined coefficients never compete: a missing variable must
			// not beat a real near-zero correlation.
			continue
		}
		if abs := math.Abs(c.Value); abs > bestAbs {
			bestAbs = abs
			summary.StrongestFactor = factor.name
		}
	}
	return summary
}

// correlateWithTotal computes the Pearson coefficient between a column and
// total_cases over monthly rows where both values exist, rounded to two
// decimal places.
func correlateWithTotal(monthly []MonthlyAggregate, column string) Coefficient {
	var xs, ys []float64
	for _, m := range monthly {
		x, okX := m.Value(column)
		y, okY := m.Value(TotalCasesColumn)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	r, ok := pearson(xs, ys)
	if !ok {
		return Coefficient{}
	}
	return Coefficient{Value: math.Round(r*100) / 100, Defined: true}
}

// pearson computes the Pearson correlation coefficient over paired samples.
// Reports false with fewer than two pairs or when either side has zero
// variance.
func pearson(xs, ys []float64) (float64, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}
	n := float64(len(xs))
	var sumX, sumY, sumXX, sumYY, sumXY float64
	for i := range xs {
		x, y := xs[i], ys[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 {
		return 0, false
	}
	r := (n*sumXY - sumX*sumY) / denom
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sortedKeys(counts map[int]int) []int {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// regionDisplayName converts a canonical region column to its display form,
// e.g. "east_coast" -> "East Coast".
func regionDisplayName(column string) string {
	words := strings.Split(column, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
