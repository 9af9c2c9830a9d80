package product

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidProduct is returned when a product fails editor validation.
var ErrInvalidProduct = errors.New("invalid product")

// Field names accepted by EditForm.Set.
const (
	FieldName          = "name"
	FieldLicenseNumber = "license_number"
	FieldBrand         = "brand"
	FieldCategory      = "category"
	FieldSubspecies    = "subspecies"
	FieldStrain        = "strain"
	FieldPotency       = "potency"
	FieldDescription   = "description"
	FieldImage         = "image"
	FieldUPC           = "upc"
	FieldCapacity      = "market_capacity"
)

// TextFields is the editor's text field order.
var TextFields = []string{
	FieldName,
	FieldLicenseNumber,
	FieldBrand,
	FieldCategory,
	FieldSubspecies,
	FieldStrain,
	FieldPotency,
	FieldDescription,
	FieldImage,
	FieldUPC,
	FieldCapacity,
}

// Normalize returns p with every editable field populated: strings trimmed,
// nil slices replaced by empty ones, markets canonical, sorted and unique,
// feelings unique in their original order. Capacity never drops below the
// active market count.
func Normalize(p Product) Product {
	out := Product{
		ID:            strings.TrimSpace(p.ID),
		Name:          strings.TrimSpace(p.Name),
		LicenseNumber: strings.TrimSpace(p.LicenseNumber),
		Brand:         strings.TrimSpace(p.Brand),
		Category:      CanonicalCategory(p.Category),
		Subspecies:    strings.TrimSpace(p.Subspecies),
		Strain:        strings.TrimSpace(p.Strain),
		Potency:       strings.TrimSpace(p.Potency),
		Description:   strings.TrimSpace(p.Description),
		Image:         strings.TrimSpace(p.Image),
		UPC:           strings.TrimSpace(p.UPC),
	}
	out.Markets = normalizeMarkets(p.Markets)
	out.Feelings = uniqueTrimmed(p.Feelings)
	out.MarketCapacity = p.MarketCapacity
	if out.MarketCapacity < len(out.Markets) {
		out.MarketCapacity = len(out.Markets)
	}
	return out
}

// Validate enforces what the editor enforces: a name and known markets.
func Validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	for _, m := range p.Markets {
		if !IsKnownMarket(m) {
			return fmt.Errorf("%w: unknown market %q", ErrInvalidProduct, m)
		}
	}
	if p.MarketCapacity < 0 {
		return fmt.Errorf("%w: market capacity must not be negative", ErrInvalidProduct)
	}
	return nil
}

// FromDashboard builds the edit contract input from a catalog entry.
func FromDashboard(d DashboardProduct) Product {
	return Normalize(Product{
		ID:             d.ID,
		Name:           d.Name,
		LicenseNumber:  d.LicenseNumber,
		Brand:          d.PrimaryBrand(),
		Category:       d.Category,
		Subspecies:     d.Subspecies,
		Strain:         d.Strain,
		Potency:        d.Potency,
		Feelings:       d.Feelings,
		Description:    d.Description,
		Markets:        d.Markets,
		MarketCapacity: d.MarketCapacity,
		Image:          d.Image,
		UPC:            d.UPC,
	})
}

// ToDashboard builds a new catalog entry from an edited product.
func ToDashboard(p Product) DashboardProduct {
	d := DashboardProduct{ID: p.ID, Type: TypeProduct, LicenseNumber: p.LicenseNumber, UPC: p.UPC}
	d.ApplyEdit(p)
	return d
}

// ApplyEdit replaces the display fields of d with the edited product. The
// brand list keeps any secondary brands when the primary brand is unchanged.
// Capacity takes the edited value, clamped to the active market count.
func (d *DashboardProduct) ApplyEdit(p Product) {
	p = Normalize(p)
	d.Name = p.Name
	switch {
	case p.Brand == "":
		d.Brands = []string{}
	case len(d.Brands) > 0 && strings.EqualFold(d.Brands[0], p.Brand):
		brands := append([]string{p.Brand}, d.Brands[1:]...)
		d.Brands = brands
	default:
		d.Brands = []string{p.Brand}
	}
	d.Category = p.Category
	d.Potency = p.Potency
	d.Markets = p.Markets
	d.MarketCapacity = max(p.MarketCapacity, len(d.Markets))
	d.Image = p.Image
	d.Subspecies = p.Subspecies
	d.Strain = p.Strain
	d.Feelings = p.Feelings
	d.Description = p.Description
	if p.LicenseNumber != "" {
		d.LicenseNumber = p.LicenseNumber
	}
	if p.UPC != "" {
		d.UPC = p.UPC
	}
}

// EditForm is the shared product editor state used by both the catalog's
// edit path and the wizard's edit step.
type EditForm struct {
	original Product
	current  Product
}

// NewEditForm starts an edit of p.
func NewEditForm(p Product) *EditForm {
	n := Normalize(p)
	return &EditForm{original: n.Clone(), current: n.Clone()}
}

// Product returns the current, unvalidated form contents.
func (f *EditForm) Product() Product {
	return f.current.Clone()
}

// Get returns the text value of field.
func (f *EditForm) Get(field string) string {
	p := f.current
	switch field {
	case FieldName:
		return p.Name
	case FieldLicenseNumber:
		return p.LicenseNumber
	case FieldBrand:
		return p.Brand
	case FieldCategory:
		return p.Category
	case FieldSubspecies:
		return p.Subspecies
	case FieldStrain:
		return p.Strain
	case FieldPotency:
		return p.Potency
	case FieldDescription:
		return p.Description
	case FieldImage:
		return p.Image
	case FieldUPC:
		return p.UPC
	case FieldCapacity:
		return strconv.Itoa(p.MarketCapacity)
	}
	return ""
}

// Set assigns a text field.
func (f *EditForm) Set(field, value string) error {
	p := &f.current
	switch field {
	case FieldName:
		p.Name = value
	case FieldLicenseNumber:
		p.LicenseNumber = value
	case FieldBrand:
		p.Brand = value
	case FieldCategory:
		p.Category = value
	case FieldSubspecies:
		p.Subspecies = value
	case FieldStrain:
		p.Strain = value
	case FieldPotency:
		p.Potency = value
	case FieldDescription:
		p.Description = value
	case FieldImage:
		p.Image = value
	case FieldUPC:
		p.UPC = value
	case FieldCapacity:
		v := strings.TrimSpace(value)
		if v == "" {
			p.MarketCapacity = 0
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: market capacity %q", ErrInvalidProduct, value)
		}
		p.MarketCapacity = n
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidProduct, field)
	}
	return nil
}

// ToggleMarket adds or removes a market code.
func (f *EditForm) ToggleMarket(code string) error {
	code = CanonicalMarket(code)
	if !IsKnownMarket(code) {
		return fmt.Errorf("%w: unknown market %q", ErrInvalidProduct, code)
	}
	f.current.Markets = toggle(f.current.Markets, code)
	f.current.Markets = normalizeMarkets(f.current.Markets)
	return nil
}

// ToggleFeeling adds or removes a mood tag.
func (f *EditForm) ToggleFeeling(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	f.current.Feelings = toggle(f.current.Feelings, tag)
}

// HasMarket reports whether code is currently selected.
func (f *EditForm) HasMarket(code string) bool {
	return contains(f.current.Markets, CanonicalMarket(code))
}

// HasFeeling reports whether tag is currently selected.
func (f *EditForm) HasFeeling(tag string) bool {
	return contains(f.current.Feelings, tag)
}

// Dirty reports whether the form differs from the product it was opened with.
func (f *EditForm) Dirty() bool {
	a, b := Normalize(f.original), Normalize(f.current)
	if a.Name != b.Name || a.LicenseNumber != b.LicenseNumber || a.Brand != b.Brand ||
		a.Category != b.Category || a.Subspecies != b.Subspecies || a.Strain != b.Strain ||
		a.Potency != b.Potency || a.Description != b.Description || a.Image != b.Image ||
		a.UPC != b.UPC || a.MarketCapacity != b.MarketCapacity {
		return true
	}
	return !equalStrings(a.Markets, b.Markets) || !equalStrings(a.Feelings, b.Feelings)
}

// Result returns the normalized, validated product.
func (f *EditForm) Result() (Product, error) {
	out := Normalize(f.current)
	if err := Validate(out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func normalizeMarkets(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, m := range in {
		m = CanonicalMarket(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func uniqueTrimmed(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func toggle(list []string, v string) []string {
	for i, s := range list {
		if strings.EqualFold(s, v) {
			out := append([]string(nil), list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return append(append([]string(nil), list...), v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
