package search

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jask/budregistry/internal/product"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func resultIDs(items []product.Product) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestDefaultIndexSearch(t *testing.T) {
	t.Parallel()

	ix, err := DefaultIndex()
	require.NoError(t, err)
	require.Equal(t, 8, ix.Len())

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "exact name", query: "Blue Dream 3.5g", want: []string{"reg-1001"}},
		{name: "name prefix", query: "blue", want: []string{"reg-1001", "reg-1002"}},
		{name: "brand substring", query: "pacific", want: []string{"reg-1001", "reg-1002"}},
		{name: "license prefix", query: "C11-0000789", want: []string{"reg-1005"}},
		{name: "upc exact", query: "850012345041", want: []string{"reg-1008"}},
		{name: "typo", query: "weding", want: []string{"reg-1004"}},
		{name: "nothing", query: "zzzzzz", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ix.Search(context.Background(), tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.want, resultIDs(got))
		})
	}
}

func TestIndexRanksExactBeforeFuzzy(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]product.Product{
		{ID: "fuzzy", Name: "Gumny Drops"},
		{ID: "sub", Name: "Sour Gummy"},
		{ID: "prefix", Name: "Gummy Rings"},
		{ID: "exact", Name: "gummy"},
	}, 0)
	got, err := ix.Search(context.Background(), "  Gummy ")
	require.NoError(t, err)
	require.Equal(t, []string{"exact", "prefix", "sub", "fuzzy"}, resultIDs(got))
}

func TestIndexEmptyQueryAndCancelledContext(t *testing.T) {
	t.Parallel()

	ix, err := DefaultIndex()
	require.NoError(t, err)

	got, err := ix.Search(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ix.Search(ctx, "blue")
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmptySearcher(t *testing.T) {
	t.Parallel()

	got, err := Empty{}.Search(context.Background(), "Blue Dream")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLoadRegistryRejectsMissingID(t *testing.T) {
	t.Parallel()

	_, err := LoadRegistry(strings.NewReader("products:\n  - name: nameless\n"))
	require.Error(t, err)

	items, err := LoadRegistry(strings.NewReader("products:\n  - id: a\n    name: A\n    markets: [ca, xx]\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"CA"}, items[0].Markets)
}

func TestDelayedHonoursCancellation(t *testing.T) {
	t.Parallel()

	ix, err := DefaultIndex()
	require.NoError(t, err)
	d := Delayed{Inner: ix, Delay: time.Hour}

	l := Start(context.Background(), d, "blue")
	l.Cancel()
	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("lookup did not stop after cancel")
	}
	_, err = l.Result()
	require.ErrorIs(t, err, context.Canceled)
}

func TestLookupDeliversResults(t *testing.T) {
	t.Parallel()

	ix, err := DefaultIndex()
	require.NoError(t, err)
	l := Start(context.Background(), Delayed{Inner: ix, Delay: 10 * time.Millisecond}, "wedding cake 3.5g")
	got, err := l.Result()
	require.NoError(t, err)
	require.Equal(t, []string{"reg-1004"}, resultIDs(got))
	require.Equal(t, "wedding cake 3.5g", l.Query)
}
