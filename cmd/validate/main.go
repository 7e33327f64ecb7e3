// Command validate runs the full analytics pipeline against a dataset (local
// file or URL) without serving anything, and reports phase-by-phase integrity
// checks: fetch and parse, normalization quality, aggregation consistency, and
// statistics sanity. Useful before pointing the service at a new dataset
// revision.
//
// Usage:
//
//	go run ./cmd/validate -source data/hfmd_synthetic.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/adapter/csvsource"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/observability"
)

// maxDropRatio is the fraction of raw rows allowed to fail date parsing before
// the dataset is considered suspect.
const maxDropRatio = 0.05

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	source := flag.String("source", "", "dataset path or URL to validate")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	flag.Parse()

	if *source == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*source, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(source string, timeout time.Duration) int {
	fmt.Println("=== HFMD Dataset Validation ===")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger := observability.NewLogger("error", "text")
	client := csvsource.NewClient(timeout, logger)

	table, err := client.Fetch(ctx, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: fetch dataset: %v\n", err)
		return 1
	}

	daily, err := domain.Normalize(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: normalize dataset: %v\n", err)
		return 1
	}

	monthly, err := domain.Aggregate(daily)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: aggregate dataset: %v\n", err)
		return 1
	}

	summary, err := domain.Summarize(monthly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: summarize dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateNormalization(table, daily),
		validateAggregation(daily, monthly),
		validateStatistics(monthly, summary),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d raw, %d daily, %d monthly (%d dropped)\n",
		len(table.Rows), len(daily), len(monthly), len(table.Rows)-len(daily))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Normalization ──
// Checks that row drops stay within tolerance and the daily series is clean.

func validateNormalization(table domain.RawTable, daily []domain.DailyObservation) *phase {
	p := &phase{name: "Phase 1: Normalization (rows)"}

	dropped := len(table.Rows) - len(daily)
	if len(table.Rows) > 0 {
		ratio := float64(dropped) / float64(len(table.Rows))
		if ratio > maxDropRatio {
			p.errorf("dropped %d of %d rows (%.1f%%), above %.0f%% tolerance",
				dropped, len(table.Rows), ratio*100, maxDropRatio*100)
		}
	}

	for i := 1; i < len(daily); i++ {
		if daily[i].Date.Before(daily[i-1].Date) {
			p.errorf("row %d: date %s precedes previous row", i, daily[i].Date.Format("2006-01-02"))
		}
	}

	for i, obs := range daily {
		for _, region := range domain.RegionColumns {
			if v, ok := obs.Value(region); ok && v < 0 {
				p.errorf("row %d (%s): negative %s count %g", i, obs.Date.Format("2006-01-02"), region, v)
			}
		}
	}

	return p
}

// ── Phase 2: Aggregation ──
// Checks that the monthly table is consistent with the daily series.

func validateAggregation(daily []domain.DailyObservation, monthly []domain.MonthlyAggregate) *phase {
	p := &phase{name: "Phase 2: Aggregation (monthly)"}

	months := map[[2]int]bool{}
	for _, obs := range daily {
		months[[2]int{obs.Date.Year(), int(obs.Date.Month())}] = true
	}
	if len(monthly) != len(months) {
		p.errorf("monthly row count %d does not match %d distinct observed months", len(monthly), len(months))
	}

	for i, m := range monthly {
		if !months[[2]int{m.Year, m.Month}] {
			p.errorf("monthly row %d: %d-%02d has no daily observations", i, m.Year, m.Month)
		}
		if m.Period.Year() != m.Year || int(m.Period.Month()) != m.Month {
			p.errorf("monthly row %d: period %s disagrees with %d-%02d", i, m.Period.Format("2006-01-02"), m.Year, m.Month)
		}
		if next := m.Period.AddDate(0, 0, 1); next.Day() != 1 {
			p.errorf("monthly row %d: period %s is not the last day of the month", i, m.Period.Format("2006-01-02"))
		}
		if i > 0 {
			prev := monthly[i-1]
			if m.Year < prev.Year || (m.Year == prev.Year && m.Month <= prev.Month) {
				p.errorf("monthly row %d: %d-%02d out of order", i, m.Year, m.Month)
			}
		}
	}

	return p
}

// ── Phase 3: Statistics ──
// Checks that every derived statistic is internally consistent.

func validateStatistics(monthly []domain.MonthlyAggregate, summary domain.Summary) *phase {
	p := &phase{name: "Phase 3: Statistics (summary)"}

	if summary.Seasonal.PeakYear == 0 {
		p.errorf("seasonal: no peak year determined")
	}
	if len(summary.Seasonal.PeakMonths) == 0 {
		p.errorf("seasonal: no peak months determined")
	}
	for _, month := range summary.Seasonal.PeakMonths {
		if month < 1 || month > 12 {
			p.errorf("seasonal: peak month %d outside 1-12", month)
		}
	}
	if summary.Seasonal.AvgMonthlyCases < 0 {
		p.errorf("seasonal: negative average monthly cases %g", summary.Seasonal.AvgMonthlyCases)
	}

	if len(summary.Regional.Regions) == 0 {
		p.errorf("regional: no region statistics computed")
	}
	for _, r := range summary.Regional.Regions {
		if r.Normalized < 0 || r.Normalized > 1 {
			p.errorf("regional: %s normalized mean %g outside [0, 1]", r.Name, r.Normalized)
		}
	}
	if summary.Regional.CaseGap < 0 {
		p.errorf("regional: negative case gap %g", summary.Regional.CaseGap)
	}

	checkCoefficient(p, "temperature", summary.Correlation.Temperature)
	checkCoefficient(p, "rainfall", summary.Correlation.Rainfall)
	checkCoefficient(p, "humidity", summary.Correlation.Humidity)

	anyDefined := summary.Correlation.Temperature.Defined ||
		summary.Correlation.Rainfall.Defined ||
		summary.Correlation.Humidity.Defined
	if anyDefined && summary.Correlation.StrongestFactor == "" {
		p.errorf("correlation: defined coefficients but no strongest factor")
	}
	if !anyDefined && len(monthly) >= 2 {
		p.errorf("correlation: no coefficient defined over %d monthly rows", len(monthly))
	}

	return p
}

func checkCoefficient(p *phase, name string, c domain.Coefficient) {
	if !c.Defined {
		return
	}
	if c.Value < -1 || c.Value > 1 {
		p.errorf("correlation: %s coefficient %g outside [-1, 1]", name, c.Value)
	}
}
