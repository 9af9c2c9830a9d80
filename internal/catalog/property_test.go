package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jask/budregistry/internal/fixtures"
	"github.com/jask/budregistry/internal/product"
)

func TestApplyFiltersSubsetAndIdempotent(t *testing.T) {
	t.Parallel()

	items := fixtures.Products(200, 7)
	cases := [][]string{
		nil,
		{"type=Bundle"},
		{"status=active"},
		{"brand=pacific-bloom,old-pal"},
		{"category=flower,edible", "status=pending"},
		{"brand=high-desert-growers", "type=Product"},
	}
	for _, exprs := range cases {
		f, err := ParseFilters(exprs)
		require.NoError(t, err)

		once := ApplyFilters(items, f)
		twice := ApplyFilters(once, f)
		require.Empty(t, cmp.Diff(once, twice), "filter %v not idempotent", exprs)

		ids := map[string]int{}
		for i, it := range items {
			ids[it.ID] = i
		}
		last := -1
		for _, it := range once {
			pos, ok := ids[it.ID]
			require.True(t, ok, "%s not in source", it.ID)
			require.Greater(t, pos, last, "filter %v reordered entries", exprs)
			last = pos
		}
	}
}

func TestPaginateCoversEveryEntryOnce(t *testing.T) {
	t.Parallel()

	items := fixtures.Products(53, 11)
	for _, size := range PageSizes {
		first := Paginate(items, 1, size)
		require.Equal(t, max(1, (len(items)+size-1)/size), first.TotalPages)

		seen := map[string]bool{}
		for p := 1; p <= first.TotalPages; p++ {
			for _, it := range Paginate(items, p, size).Items {
				require.False(t, seen[it.ID], "%s appears twice", it.ID)
				seen[it.ID] = true
			}
		}
		require.Len(t, seen, len(items))

		beyond := Paginate(items, first.TotalPages+5, size)
		require.Equal(t, first.TotalPages, beyond.Page)
	}
}

func TestFixturesAreDeterministic(t *testing.T) {
	t.Parallel()

	a := fixtures.Products(20, 3)
	b := fixtures.Products(20, 3)
	require.Empty(t, cmp.Diff(a, b))
	for _, it := range a {
		require.Subset(t, product.Markets, it.Markets)
		require.GreaterOrEqual(t, it.MarketCapacity, it.TotalMarkets())
	}
}
