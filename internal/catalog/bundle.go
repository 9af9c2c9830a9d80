package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/budregistry/internal/product"
)

// ErrInvalidBundle is returned for bundle requests the builder would not allow.
var ErrInvalidBundle = errors.New("catalog: invalid bundle")

// BundleCategory is the category bundles are listed under.
const BundleCategory = "Bundle"

// BundleItem is one member of a bundle request.
type BundleItem struct {
	Product product.DashboardProduct
	Units   int
}

// BundleRequest carries everything BuildBundle needs besides the items.
type BundleRequest struct {
	Name    string
	Items   []BundleItem
	Price   decimal.Decimal
	ID      string
	License string
	Now     time.Time
}

// BuildBundle snapshots the members into a new bundle entry. Brands keep the
// order they are first seen in; markets are sorted. Neither is re-synced if a
// member changes later.
func BuildBundle(req BundleRequest) (product.DashboardProduct, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return product.DashboardProduct{}, fmt.Errorf("%w: name is required", ErrInvalidBundle)
	}
	if len(req.Items) == 0 {
		return product.DashboardProduct{}, fmt.Errorf("%w: at least one item is required", ErrInvalidBundle)
	}
	if req.Price.IsNegative() {
		return product.DashboardProduct{}, fmt.Errorf("%w: price must not be negative", ErrInvalidBundle)
	}

	var (
		brands   []string
		markets  []string
		names    []string
		lines    []string
		brandSet = map[string]struct{}{}
		mktSet   = map[string]struct{}{}
	)
	for _, it := range req.Items {
		if it.Units <= 0 {
			return product.DashboardProduct{}, fmt.Errorf("%w: %s: units must be positive", ErrInvalidBundle, it.Product.Name)
		}
		for _, b := range it.Product.Brands {
			key := strings.ToLower(strings.TrimSpace(b))
			if key == "" {
				continue
			}
			if _, ok := brandSet[key]; ok {
				continue
			}
			brandSet[key] = struct{}{}
			brands = append(brands, strings.TrimSpace(b))
		}
		for _, m := range it.Product.Markets {
			m = product.CanonicalMarket(m)
			if _, ok := mktSet[m]; ok || m == "" {
				continue
			}
			mktSet[m] = struct{}{}
			markets = append(markets, m)
		}
		names = append(names, it.Product.Name)
		lines = append(lines, fmt.Sprintf("%d x %s", it.Units, it.Product.Name))
	}
	sort.Strings(markets)
	if brands == nil {
		brands = []string{}
	}
	if markets == nil {
		markets = []string{}
	}

	return product.DashboardProduct{
		ID:             req.ID,
		Type:           product.TypeBundle,
		Name:           name,
		LicenseNumber:  req.License,
		Brands:         brands,
		Category:       BundleCategory,
		Markets:        markets,
		MarketCapacity: len(markets),
		Image:          req.Items[0].Product.Image,
		Status:         product.StatusActive,
		Description:    strings.Join(lines, ", "),
		SubProducts:    names,
		Price:          req.Price,
		CreatedAt:      req.Now,
	}, nil
}
