package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(year, m int, values map[string]float64) MonthlyAggregate {
	return MonthlyAggregate{
		Year:   year,
		Month:  m,
		Period: time.Date(year, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC),
		Values: values,
	}
}

// constantYear builds twelve 2020 months with identical totals and fixed
// per-region means.
func constantYear() []MonthlyAggregate {
	monthly := make([]MonthlyAggregate, 0, 12)
	for m := 1; m <= 12; m++ {
		monthly = append(monthly, month(2020, m, map[string]float64{
			"total_cases": 150,
			"southern":    10,
			"northern":    20,
			"central":     30,
			"east_coast":  40,
			"borneo":      50,
		}))
	}
	return monthly
}

func TestSummarize_ConstantYear(t *testing.T) {
	summary, err := Summarize(constantYear())
	require.NoError(t, err)

	assert.InDelta(t, 150.0, summary.Seasonal.AvgMonthlyCases, 1e-9)
	assert.Equal(t, 2020, summary.Seasonal.PeakYear)
	// All twelve months tie, so ranking keeps calendar order.
	assert.Equal(t, []int{1, 2, 3}, summary.Seasonal.PeakMonths)
	require.Len(t, summary.Seasonal.YearlyMeans, 1)
	require.Len(t, summary.Seasonal.MonthlyMeans, 12)

	assert.Equal(t, "Borneo", summary.Regional.HighestRegion)
	assert.Equal(t, "Southern", summary.Regional.LowestRegion)
	assert.InDelta(t, 40.0, summary.Regional.CaseGap, 1e-9)
	assert.InDelta(t, 30.0, summary.Regional.AvgMonthlyCases, 1e-9)

	// A constant total has zero variance: every coefficient is undefined and
	// no strongest factor exists.
	assert.False(t, summary.Correlation.Temperature.Defined)
	assert.False(t, summary.Correlation.Rainfall.Defined)
	assert.False(t, summary.Correlation.Humidity.Defined)
	assert.Empty(t, summary.Correlation.StrongestFactor)
}

func TestSummarize_PeakYearTieResolvesEarlier(t *testing.T) {
	monthly := []MonthlyAggregate{
		month(2019, 6, map[string]float64{"total_cases": 100}),
		month(2020, 6, map[string]float64{"total_cases": 100}),
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)
	assert.Equal(t, 2019, summary.Seasonal.PeakYear)
}

func TestSummarize_PeakMonthsCalendarOrder(t *testing.T) {
	monthly := make([]MonthlyAggregate, 0, 12)
	for m := 1; m <= 12; m++ {
		monthly = append(monthly, month(2020, m, map[string]float64{
			"total_cases": float64(m * 10), // October-December rank highest
		}))
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, summary.Seasonal.PeakMonths)
}

func TestSummarize_FewerThanThreeMonths(t *testing.T) {
	monthly := []MonthlyAggregate{
		month(2020, 3, map[string]float64{"total_cases": 50}),
		month(2020, 7, map[string]float64{"total_cases": 90}),
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, summary.Seasonal.PeakMonths)
}

func TestSummarize_CorrelationRounded(t *testing.T) {
	monthly := []MonthlyAggregate{
		month(2020, 1, map[string]float64{"total_cases": 1, "temp_c": 1}),
		month(2020, 2, map[string]float64{"total_cases": 2, "temp_c": 2}),
		month(2020, 3, map[string]float64{"total_cases": 4, "temp_c": 3}),
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)

	temp := summary.Correlation.Temperature
	require.True(t, temp.Defined)
	// Pearson r for (1,2,3) vs (1,2,4) is 0.9819..., rounded to two places.
	assert.Equal(t, 0.98, temp.Value)
	assert.Equal(t, "Temperature", summary.Correlation.StrongestFactor)

	assert.False(t, summary.Correlation.Rainfall.Defined)
	assert.False(t, summary.Correlation.Humidity.Defined)
}

func TestSummarize_UndefinedNeverBeatsDefined(t *testing.T) {
	// Temperature is absent and rainfall has zero variance; humidity carries a
	// weak negative correlation and must still win.
	monthly := []MonthlyAggregate{
		month(2020, 1, map[string]float64{"total_cases": 10, "rain_c": 5, "rh_c": 80}),
		month(2020, 2, map[string]float64{"total_cases": 12, "rain_c": 5, "rh_c": 79}),
		month(2020, 3, map[string]float64{"total_cases": 11, "rain_c": 5, "rh_c": 81}),
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)

	assert.False(t, summary.Correlation.Temperature.Defined)
	assert.False(t, summary.Correlation.Rainfall.Defined)
	assert.True(t, summary.Correlation.Humidity.Defined)
	assert.Equal(t, "Humidity", summary.Correlation.StrongestFactor)
}

func TestSummarize_StrongestFactorTieResolvesByOrder(t *testing.T) {
	// Temperature correlates +1 and rainfall -1: equal absolute strength, and
	// the fixed factor order keeps Temperature.
	monthly := []MonthlyAggregate{
		month(2020, 1, map[string]float64{"total_cases": 1, "temp_c": 10, "rain_c": 30}),
		month(2020, 2, map[string]float64{"total_cases": 2, "temp_c": 20, "rain_c": 20}),
		month(2020, 3, map[string]float64{"total_cases": 3, "temp_c": 30, "rain_c": 10}),
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)

	assert.Equal(t, 1.0, summary.Correlation.Temperature.Value)
	assert.Equal(t, -1.0, summary.Correlation.Rainfall.Value)
	assert.Equal(t, "Temperature", summary.Correlation.StrongestFactor)
}

func TestSummarize_SingleMonthCorrelationUndefined(t *testing.T) {
	monthly := []MonthlyAggregate{
		month(2020, 1, map[string]float64{"total_cases": 10, "temp_c": 28}),
	}

	summary, err := Summarize(monthly)
	require.NoError(t, err)
	assert.False(t, summary.Correlation.Temperature.Defined)
}

func TestSummarize_RegionalNormalization(t *testing.T) {
	summary, err := Summarize(constantYear())
	require.NoError(t, err)

	require.Len(t, summary.Regional.Regions, 5)
	byName := map[string]RegionStat{}
	for _, r := range summary.Regional.Regions {
		byName[r.Name] = r
	}

	assert.InDelta(t, 0.0, byName["Southern"].Normalized, 1e-6)
	assert.InDelta(t, 1.0, byName["Borneo"].Normalized, 1e-6)
	assert.InDelta(t, 0.5, byName["Central"].Normalized, 1e-6)
	assert.Equal(t, "East Coast", byName["East Coast"].Name)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	var qualityErr *DataQualityError
	require.ErrorAs(t, err, &qualityErr)
}

func TestSummarize_NoTotalSeries(t *testing.T) {
	monthly := []MonthlyAggregate{
		month(2020, 1, map[string]float64{"temp_c": 28}),
	}

	_, err := Summarize(monthly)
	var qualityErr *DataQualityError
	require.ErrorAs(t, err, &qualityErr)
}

func TestCoefficient_Float(t *testing.T) {
	defined := Coefficient{Value: 0.42, Defined: true}
	v, err := defined.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.42, v)

	var undefined Coefficient
	_, err = undefined.Float()
	assert.ErrorIs(t, err, ErrStatisticUndefined)
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		ys     []float64
		want   float64
		wantOK bool
	}{
		{name: "perfect positive", xs: []float64{1, 2, 3}, ys: []float64{2, 4, 6}, want: 1, wantOK: true},
		{name: "perfect negative", xs: []float64{1, 2, 3}, ys: []float64{6, 4, 2}, want: -1, wantOK: true},
		{name: "single pair", xs: []float64{1}, ys: []float64{2}, wantOK: false},
		{name: "zero variance x", xs: []float64{5, 5, 5}, ys: []float64{1, 2, 3}, wantOK: false},
		{name: "zero variance y", xs: []float64{1, 2, 3}, ys: []float64{5, 5, 5}, wantOK: false},
		{name: "length mismatch", xs: []float64{1, 2}, ys: []float64{1}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := pearson(tt.xs, tt.ys)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, r, 1e-9)
			}
		})
	}
}

func TestRegionDisplayName(t *testing.T) {
	assert.Equal(t, "East Coast", regionDisplayName("east_coast"))
	assert.Equal(t, "Borneo", regionDisplayName("borneo"))
}
