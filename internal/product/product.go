package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type tags a catalog entry as a single product or a bundle.
type Type string

const (
	TypeProduct Type = "Product"
	TypeBundle  Type = "Bundle"
)

// StatusActive is assumed for entries without an explicit status.
const StatusActive = "active"

// Product is a single sellable item as seen by the editor and the wizard.
type Product struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	LicenseNumber  string   `json:"licenseNumber" yaml:"license_number"`
	Brand          string   `json:"brand" yaml:"brand"`
	Category       string   `json:"category" yaml:"category"`
	Subspecies     string   `json:"subspecies,omitempty" yaml:"subspecies"`
	Strain         string   `json:"strain,omitempty" yaml:"strain"`
	Potency        string   `json:"potency,omitempty" yaml:"potency"`
	Feelings       []string `json:"feelings" yaml:"feelings"`
	Description    string   `json:"description" yaml:"description"`
	Markets        []string `json:"markets" yaml:"markets"`
	MarketCapacity int      `json:"marketCapacity" yaml:"market_capacity"`
	Image          string   `json:"image" yaml:"image"`
	UPC            string   `json:"upc,omitempty" yaml:"upc"`
}

// TotalMarkets is the number of markets the product is currently listed in.
func (p Product) TotalMarkets() int {
	return len(p.Markets)
}

// DashboardProduct is the catalog's list-display shape for products and bundles.
type DashboardProduct struct {
	ID             string          `json:"id" yaml:"id"`
	Type           Type            `json:"type" yaml:"type"`
	Name           string          `json:"name" yaml:"name"`
	LicenseNumber  string          `json:"licenseNumber" yaml:"license_number"`
	Brands         []string        `json:"brands" yaml:"brands"`
	Category       string          `json:"category" yaml:"category"`
	Potency        string          `json:"potency,omitempty" yaml:"potency"`
	Markets        []string        `json:"markets" yaml:"markets"`
	MarketCapacity int             `json:"marketCapacity" yaml:"market_capacity"`
	Image          string          `json:"image" yaml:"image"`
	Status         string          `json:"status,omitempty" yaml:"status"`
	Subspecies     string          `json:"subspecies,omitempty" yaml:"subspecies"`
	Strain         string          `json:"strain,omitempty" yaml:"strain"`
	Feelings       []string        `json:"feelings,omitempty" yaml:"feelings"`
	Description    string          `json:"description,omitempty" yaml:"description"`
	UPC            string          `json:"upc,omitempty" yaml:"upc"`
	SubProducts    []string        `json:"subProducts,omitempty" yaml:"sub_products"`
	Price          decimal.Decimal `json:"price" yaml:"-"`
	CreatedAt      time.Time       `json:"createdAt" yaml:"-"`
}

// TotalMarkets is the number of markets the entry is currently listed in.
func (d DashboardProduct) TotalMarkets() int {
	return len(d.Markets)
}

// EffectiveStatus returns the status, defaulting to active.
func (d DashboardProduct) EffectiveStatus() string {
	if d.Status == "" {
		return StatusActive
	}
	return d.Status
}

// IsBundle reports whether the entry is a bundle.
func (d DashboardProduct) IsBundle() bool {
	return d.Type == TypeBundle
}

// PrimaryBrand returns the first brand or an empty string.
func (d DashboardProduct) PrimaryBrand() string {
	if len(d.Brands) == 0 {
		return ""
	}
	return d.Brands[0]
}

// Clone returns a deep copy so callers can't mutate store-owned slices.
func (d DashboardProduct) Clone() DashboardProduct {
	out := d
	out.Brands = cloneStrings(d.Brands)
	out.Markets = cloneStrings(d.Markets)
	out.Feelings = cloneStrings(d.Feelings)
	out.SubProducts = cloneStrings(d.SubProducts)
	return out
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	out := p
	out.Feelings = cloneStrings(p.Feelings)
	out.Markets = cloneStrings(p.Markets)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
