// Package fixtures generates sample catalog entries for tests and demos.
package fixtures

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jask/budregistry/internal/product"
)

var brands = []string{
	"Pacific Bloom",
	"Kind Kitchen",
	"Sunset Extracts",
	"High Desert / Growers",
	"Old Pal",
	"Orbit Farms",
}

// Products returns n entries. The same seed always yields the same entries.
// Roughly one in eight is a bundle and some carry no explicit status.
func Products(n int, seed uint64) []product.DashboardProduct {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]product.DashboardProduct, 0, n)
	for i := 0; i < n; i++ {
		brand := brands[r.IntN(len(brands))]
		category := product.Categories[r.IntN(len(product.Categories))]
		markets := pickMarkets(r)
		d := product.DashboardProduct{
			ID:             uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("fixture-%d-%d", seed, i))).String(),
			Type:           product.TypeProduct,
			Name:           fmt.Sprintf("%s %s #%d", brand, category, i+1),
			LicenseNumber:  fmt.Sprintf("C11-%07d-LIC", r.IntN(10_000_000)),
			Brands:         []string{brand},
			Category:       category,
			Markets:        markets,
			MarketCapacity: len(markets) + r.IntN(3),
			Status:         pickStatus(r),
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}
		if r.IntN(8) == 0 {
			d.Type = product.TypeBundle
			d.Category = "Bundle"
			second := brands[r.IntN(len(brands))]
			if second != brand {
				d.Brands = append(d.Brands, second)
			}
			d.SubProducts = []string{fmt.Sprintf("item-%d-a", i), fmt.Sprintf("item-%d-b", i)}
		}
		out = append(out, d)
	}
	return out
}

// markets come out in vocabulary order, which is sorted
func pickMarkets(r *rand.Rand) []string {
	out := []string{}
	for _, m := range product.Markets {
		if r.IntN(10) < 3 {
			out = append(out, m)
		}
	}
	return out
}

func pickStatus(r *rand.Rand) string {
	switch n := r.IntN(10); {
	case n < 2:
		return ""
	case n < 7:
		return product.StatusActive
	case n < 9:
		return "pending"
	default:
		return "inactive"
	}
}
