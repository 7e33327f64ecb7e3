// Package domain models the Malaysia HFMD (Hand, Foot and Mouth Disease)
// surveillance dataset and implements the core shaping and statistics stages
// of the analytics pipeline.
//
// # Data Source
//
// The raw dataset is a daily CSV of reported HFMD case counts per region of
// Malaysia together with weather readings, published as a single flat file
// (one row per reporting day, 2009-2019). Region case counts are maintained
// for five fixed geographic partitions whose daily counts sum to the national
// total.
//
// # Dataset Conventions
//
// Date format:
//
//	DD/MM/YYYY, e.g. "17/06/2012". Rows whose date fails to parse (malformed
//	text or impossible calendar dates such as 31/02/2020) are dropped during
//	normalization; they are a data-quality wrinkle, not a schema violation.
//	Dates are not unique: duplicate reporting rows are preserved as distinct
//	daily observations.
//
// Region columns (required, case/spacing-insensitive):
//
//	Southern, Northern, Central, East_Coast (or "East Coast"), Borneo.
//	Non-negative case counts. A missing or non-numeric region cell counts as
//	zero when deriving total_cases for that row, but contributes nothing to
//	that region's own monthly mean.
//
// Weather columns (optional):
//
//	Temp_C (temperature, °C), Rain_C (rainfall), RH_C (relative humidity, %).
//	Numeric or missing. An entirely absent weather column yields an undefined
//	correlation coefficient, never a zero.
//
// Header canonicalization:
//
//	Every column name is trimmed, lower-cased, and spaces become underscores,
//	so "East Coast" and "east_coast" address the same column. Collisions are
//	not expected in the published file; the last column wins if they occur.
//
// # Monthly Resample
//
// The daily series is resampled to one row per calendar month by taking the
// arithmetic mean of every numeric column over the daily values available in
// that month (a mean of daily means). A month with only two reported days
// weighs the same as a fully reported one; this matches the published
// dashboard figures and is a documented limitation, not an oversight. Months
// with no contributing daily rows do not appear.
//
// # Statistics
//
// Seasonal statistics (average monthly cases, peak outbreak year, top three
// seasonal months), regional comparison statistics (per-region means, spread,
// normalized intensity), and Pearson correlations between each weather
// variable and total_cases are derived from the monthly table. Coefficients
// are rounded to two decimals. Undefined statistics (absent variable, zero
// variance, fewer than two paired samples) are represented explicitly via
// [Coefficient] rather than collapsed to zero, so the strongest-factor
// selection can never be won by a variable that is simply missing.
package domain
