package product

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNormalizePopulatesEveryField(t *testing.T) {
	t.Parallel()

	got := Normalize(Product{Name: "  Blue Dream ", Category: "flower", Markets: []string{"wa", "CA", "ca"}})
	want := Product{
		Name:           "Blue Dream",
		Category:       "Flower",
		Feelings:       []string{},
		Markets:        []string{"CA", "WA"},
		MarketCapacity: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 2, got.TotalMarkets())
}

func TestNormalizeKeepsCapacityAboveActiveMarkets(t *testing.T) {
	t.Parallel()

	got := Normalize(Product{Name: "x", Markets: []string{"CA"}, MarketCapacity: 7})
	require.Equal(t, 7, got.MarketCapacity)
	require.Equal(t, 1, got.TotalMarkets())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   Product
		ok   bool
	}{
		{name: "valid", in: Product{Name: "Gelato", Markets: []string{"CA"}}, ok: true},
		{name: "missing name", in: Product{Name: "  "}},
		{name: "unknown market", in: Product{Name: "Gelato", Markets: []string{"ZZ"}}},
		{name: "negative capacity", in: Product{Name: "Gelato", MarketCapacity: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidProduct))
		})
	}
}

func TestEditFormRoundTrip(t *testing.T) {
	t.Parallel()

	f := NewEditForm(Product{ID: "p1", Name: "Gelato", Brand: "Acme", Markets: []string{"CA"}})
	require.False(t, f.Dirty())

	require.NoError(t, f.Set(FieldName, "Gelato #41"))
	require.NoError(t, f.ToggleMarket("co"))
	require.NoError(t, f.ToggleMarket("CA"))
	f.ToggleFeeling("Relaxed")
	require.True(t, f.Dirty())
	require.True(t, f.HasMarket("CO"))
	require.False(t, f.HasMarket("CA"))

	out, err := f.Result()
	require.NoError(t, err)
	require.Equal(t, "Gelato #41", out.Name)
	require.Equal(t, []string{"CO"}, out.Markets)
	require.Equal(t, []string{"Relaxed"}, out.Feelings)
	require.Equal(t, 1, out.TotalMarkets())
}

func TestEditFormRejectsUnknownInput(t *testing.T) {
	t.Parallel()

	f := NewEditForm(Product{Name: "x"})
	require.ErrorIs(t, f.ToggleMarket("XX"), ErrInvalidProduct)
	require.ErrorIs(t, f.Set("nope", "v"), ErrInvalidProduct)
	require.ErrorIs(t, f.Set(FieldCapacity, "-3"), ErrInvalidProduct)

	require.NoError(t, f.Set(FieldName, ""))
	_, err := f.Result()
	require.ErrorIs(t, err, ErrInvalidProduct)
}

func TestApplyEditRecomputesMarkets(t *testing.T) {
	t.Parallel()

	d := DashboardProduct{
		ID:             "p1",
		Type:           TypeProduct,
		Name:           "Old",
		Brands:         []string{"Acme", "Acme Labs"},
		Markets:        []string{"CA", "CO", "WA"},
		MarketCapacity: 8,
	}
	p := FromDashboard(d)
	p.Name = "New"
	p.Markets = []string{"NV"}
	d.ApplyEdit(p)

	require.Equal(t, "New", d.Name)
	require.Equal(t, []string{"NV"}, d.Markets)
	require.Equal(t, 1, d.TotalMarkets())
	require.Equal(t, 8, d.MarketCapacity)
	require.Equal(t, []string{"Acme", "Acme Labs"}, d.Brands)

	p.Brand = "Other"
	d.ApplyEdit(p)
	require.Equal(t, []string{"Other"}, d.Brands)
}

func TestApplyEditHonoursLowerCapacity(t *testing.T) {
	t.Parallel()

	d := DashboardProduct{ID: "p1", Name: "Gelato", Markets: []string{"CA", "CO"}, MarketCapacity: 10}
	f := NewEditForm(FromDashboard(d))
	require.NoError(t, f.Set(FieldCapacity, "3"))
	p, err := f.Result()
	require.NoError(t, err)
	d.ApplyEdit(p)
	require.Equal(t, 3, d.MarketCapacity)

	// never below the markets that are active
	p.MarketCapacity = 1
	d.ApplyEdit(p)
	require.Equal(t, 2, d.MarketCapacity)
}

func TestEffectiveStatusDefaultsToActive(t *testing.T) {
	t.Parallel()

	require.Equal(t, StatusActive, DashboardProduct{}.EffectiveStatus())
	require.Equal(t, "inactive", DashboardProduct{Status: "inactive"}.EffectiveStatus())
}
