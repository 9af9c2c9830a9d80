package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/budregistry/internal/product"
)

func TestBuildBundleUnionsBrandsAndMarkets(t *testing.T) {
	t.Parallel()

	p1 := product.DashboardProduct{ID: "p1", Name: "Blue Dream", Brands: []string{"Pacific Bloom"}, Markets: []string{"OR", "CA"}, Image: "bd.png"}
	p2 := product.DashboardProduct{ID: "p2", Name: "Gummies", Brands: []string{"Kind Kitchen", "pacific bloom"}, Markets: []string{"CO", "CA"}, Image: "g.png"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := BuildBundle(BundleRequest{
		Name:    " Starter ",
		Items:   []BundleItem{{Product: p1, Units: 5}, {Product: p2, Units: 3}},
		Price:   decimal.RequireFromString("49.50"),
		ID:      "b1",
		License: "BND-TEST",
		Now:     now,
	})
	require.NoError(t, err)
	require.Equal(t, product.TypeBundle, b.Type)
	require.Equal(t, "Starter", b.Name)
	require.Equal(t, []string{"CA", "CO", "OR"}, b.Markets)
	require.Equal(t, []string{"Pacific Bloom", "Kind Kitchen"}, b.Brands)
	require.Equal(t, 3, b.MarketCapacity)
	require.Equal(t, "bd.png", b.Image)
	require.Equal(t, "BND-TEST", b.LicenseNumber)
	require.Equal(t, []string{"Blue Dream", "Gummies"}, b.SubProducts)
	require.Equal(t, "5 x Blue Dream, 3 x Gummies", b.Description)
	require.True(t, b.Price.Equal(decimal.RequireFromString("49.5")))
	require.Equal(t, now, b.CreatedAt)
}

func TestBuildBundleRejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	item := BundleItem{Product: product.DashboardProduct{Name: "x"}, Units: 1}
	cases := []struct {
		name string
		req  BundleRequest
	}{
		{name: "missing name", req: BundleRequest{Items: []BundleItem{item}}},
		{name: "no items", req: BundleRequest{Name: "b"}},
		{name: "zero units", req: BundleRequest{Name: "b", Items: []BundleItem{{Product: item.Product}}}},
		{name: "negative price", req: BundleRequest{Name: "b", Items: []BundleItem{item}, Price: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildBundle(tc.req)
			require.ErrorIs(t, err, ErrInvalidBundle)
		})
	}
}
