package csvsource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/observability"
)

// countingFetcher records how many times each source was fetched.
type countingFetcher struct {
	calls map[string]int
	err   error
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{calls: map[string]int{}}
}

func (f *countingFetcher) Fetch(_ context.Context, source string) (domain.RawTable, error) {
	f.calls[source]++
	if f.err != nil {
		return domain.RawTable{}, f.err
	}
	return domain.RawTable{Columns: []string{"date"}, Rows: [][]string{{source}}}, nil
}

func TestCachedFetcher_HitAvoidsRefetch(t *testing.T) {
	inner := newCountingFetcher()
	cached := NewCachedFetcher(inner, 4, observability.NewMetricsForTesting())
	ctx := context.Background()

	first, err := cached.Fetch(ctx, "a.csv")
	require.NoError(t, err)
	second, err := cached.Fetch(ctx, "a.csv")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls["a.csv"])
}

func TestCachedFetcher_DistinctSources(t *testing.T) {
	inner := newCountingFetcher()
	cached := NewCachedFetcher(inner, 4, observability.NewMetricsForTesting())
	ctx := context.Background()

	a, err := cached.Fetch(ctx, "a.csv")
	require.NoError(t, err)
	b, err := cached.Fetch(ctx, "b.csv")
	require.NoError(t, err)

	assert.NotEqual(t, a.Rows, b.Rows)
	assert.Equal(t, 1, inner.calls["a.csv"])
	assert.Equal(t, 1, inner.calls["b.csv"])
}

func TestCachedFetcher_FailuresNotCached(t *testing.T) {
	inner := newCountingFetcher()
	inner.err = errors.New("boom")
	cached := NewCachedFetcher(inner, 4, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, err := cached.Fetch(ctx, "a.csv")
	require.Error(t, err)

	// The source recovers; the next fetch must hit the origin again.
	inner.err = nil
	_, err = cached.Fetch(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls["a.csv"])
}

func TestCachedFetcher_Clear(t *testing.T) {
	inner := newCountingFetcher()
	cached := NewCachedFetcher(inner, 4, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, err := cached.Fetch(ctx, "a.csv")
	require.NoError(t, err)

	cached.Clear()

	_, err = cached.Fetch(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls["a.csv"])
}

func TestCachedFetcher_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := newCountingFetcher()
	cached := NewCachedFetcher(inner, 2, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.Fetch(ctx, "a.csv")
	_, _ = cached.Fetch(ctx, "b.csv")
	_, _ = cached.Fetch(ctx, "a.csv") // a is now most recently used
	_, _ = cached.Fetch(ctx, "c.csv") // evicts b

	_, _ = cached.Fetch(ctx, "a.csv")
	_, _ = cached.Fetch(ctx, "b.csv")

	assert.Equal(t, 1, inner.calls["a.csv"])
	assert.Equal(t, 2, inner.calls["b.csv"])
	assert.Equal(t, 1, inner.calls["c.csv"])
}
