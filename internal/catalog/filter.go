package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jask/budregistry/internal/product"
)

// Facet identifies a filter category.
type Facet string

const (
	FacetBrand    Facet = "brand"
	FacetCategory Facet = "category"
	FacetStatus   Facet = "status"
	FacetType     Facet = "type"
)

// Facets lists every facet in display order.
var Facets = []Facet{FacetBrand, FacetCategory, FacetStatus, FacetType}

// ErrUnknownFacet is returned for facet names outside Facets.
var ErrUnknownFacet = errors.New("catalog: unknown filter facet")

// ParseFacet validates a facet name.
func ParseFacet(name string) (Facet, error) {
	f := Facet(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Facets {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFacet, name)
}

// Filters maps a facet to the set of accepted option ids. A facet with no
// options is never stored, so absent and empty mean the same thing.
type Filters struct {
	sets map[Facet]map[string]struct{}
}

// Toggle adds option to facet, or removes it when already present.
// It reports whether the option is selected afterwards.
func (f *Filters) Toggle(facet Facet, option string) (bool, error) {
	if _, err := ParseFacet(string(facet)); err != nil {
		return false, err
	}
	option = normalizeOption(facet, option)
	if option == "" {
		return false, nil
	}
	if f.sets == nil {
		f.sets = make(map[Facet]map[string]struct{})
	}
	set := f.sets[facet]
	if _, ok := set[option]; ok {
		delete(set, option)
		if len(set) == 0 {
			delete(f.sets, facet)
		}
		return false, nil
	}
	if set == nil {
		set = make(map[string]struct{})
		f.sets[facet] = set
	}
	set[option] = struct{}{}
	return true, nil
}

// Set replaces the options of facet. An empty list clears the facet.
func (f *Filters) Set(facet Facet, options ...string) error {
	if _, err := ParseFacet(string(facet)); err != nil {
		return err
	}
	f.Clear(facet)
	for _, o := range options {
		if f.Has(facet, o) {
			continue
		}
		if _, err := f.Toggle(facet, o); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every option of facet.
func (f *Filters) Clear(facet Facet) {
	if f.sets != nil {
		delete(f.sets, facet)
	}
}

// Reset removes every facet.
func (f *Filters) Reset() {
	f.sets = nil
}

// Has reports whether option is accepted for facet.
func (f Filters) Has(facet Facet, option string) bool {
	_, ok := f.sets[facet][normalizeOption(facet, option)]
	return ok
}

// Active reports whether facet constrains the result.
func (f Filters) Active(facet Facet) bool {
	return len(f.sets[facet]) > 0
}

// Options returns the sorted option ids of facet.
func (f Filters) Options(facet Facet) []string {
	set := f.sets[facet]
	out := make([]string, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// Len is the number of constrained facets.
func (f Filters) Len() int {
	return len(f.sets)
}

// Count is the total number of selected options across facets.
func (f Filters) Count() int {
	n := 0
	for _, set := range f.sets {
		n += len(set)
	}
	return n
}

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	out := Filters{}
	for facet, set := range f.sets {
		for o := range set {
			_, _ = out.Toggle(facet, o)
		}
	}
	return out
}

// String renders the filters as facet=a,b pairs, facets in display order.
func (f Filters) String() string {
	var parts []string
	for _, facet := range Facets {
		if !f.Active(facet) {
			continue
		}
		parts = append(parts, string(facet)+"="+strings.Join(f.Options(facet), ","))
	}
	return strings.Join(parts, " ")
}

// ParseFilters parses expressions like "brand=acme,old-pal" into Filters.
func ParseFilters(exprs []string) (Filters, error) {
	var out Filters
	for _, expr := range exprs {
		name, values, ok := strings.Cut(expr, "=")
		if !ok {
			return Filters{}, fmt.Errorf("catalog: filter %q: expected facet=value[,value]", expr)
		}
		facet, err := ParseFacet(name)
		if err != nil {
			return Filters{}, err
		}
		for _, v := range strings.Split(values, ",") {
			if strings.TrimSpace(v) == "" || out.Has(facet, v) {
				continue
			}
			if _, err := out.Toggle(facet, v); err != nil {
				return Filters{}, err
			}
		}
	}
	return out, nil
}

// ApplyFilters returns the entries accepted by every active facet, in their
// original order. It never modifies items.
func ApplyFilters(items []product.DashboardProduct, f Filters) []product.DashboardProduct {
	out := make([]product.DashboardProduct, 0, len(items))
	for _, it := range items {
		if matchesFilters(it, f) {
			out = append(out, it)
		}
	}
	return out
}

func matchesFilters(it product.DashboardProduct, f Filters) bool {
	for facet, set := range f.sets {
		if len(set) == 0 {
			continue
		}
		if !matchesFacet(it, facet, set) {
			return false
		}
	}
	return true
}

func matchesFacet(it product.DashboardProduct, facet Facet, set map[string]struct{}) bool {
	switch facet {
	case FacetBrand:
		for _, b := range it.Brands {
			if _, ok := set[Slug(b)]; ok {
				return true
			}
		}
		return false
	case FacetCategory:
		for o := range set {
			if strings.EqualFold(it.Category, o) {
				return true
			}
		}
		return false
	case FacetStatus:
		for o := range set {
			if strings.EqualFold(it.EffectiveStatus(), o) {
				return true
			}
		}
		return false
	case FacetType:
		_, ok := set[string(it.Type)]
		return ok
	}
	return true
}

// Slug folds case and turns spaces and slashes into dashes, collapsing runs.
func Slug(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		if r == ' ' || r == '/' || r == '-' {
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = true
			continue
		}
		dash = false
		b.WriteRune(r)
	}
	return strings.TrimSuffix(b.String(), "-")
}

func normalizeOption(facet Facet, option string) string {
	option = strings.TrimSpace(option)
	switch facet {
	case FacetBrand:
		return Slug(option)
	case FacetCategory, FacetStatus:
		return strings.ToLower(option)
	}
	return option
}

// FilterOption is one selectable value of a facet with its entry count.
type FilterOption struct {
	ID    string
	Label string
	Count int
}

// FilterGroup lists the options of one facet.
type FilterGroup struct {
	Facet   Facet
	Options []FilterOption
}

// BuildFilterGroups derives the options the filter panel offers from items.
func BuildFilterGroups(items []product.DashboardProduct) []FilterGroup {
	counts := map[Facet]map[string]*FilterOption{}
	add := func(facet Facet, label string) {
		id := normalizeOption(facet, label)
		if id == "" {
			return
		}
		if counts[facet] == nil {
			counts[facet] = map[string]*FilterOption{}
		}
		opt, ok := counts[facet][id]
		if !ok {
			opt = &FilterOption{ID: id, Label: label}
			counts[facet][id] = opt
		}
		opt.Count++
	}
	for _, it := range items {
		seen := map[string]bool{}
		for _, b := range it.Brands {
			if s := Slug(b); !seen[s] {
				seen[s] = true
				add(FacetBrand, b)
			}
		}
		add(FacetCategory, it.Category)
		add(FacetStatus, it.EffectiveStatus())
		add(FacetType, string(it.Type))
	}
	out := make([]FilterGroup, 0, len(Facets))
	for _, facet := range Facets {
		opts := make([]FilterOption, 0, len(counts[facet]))
		for _, o := range counts[facet] {
			opts = append(opts, *o)
		}
		sort.Slice(opts, func(i, j int) bool {
			return strings.ToLower(opts[i].Label) < strings.ToLower(opts[j].Label)
		})
		out = append(out, FilterGroup{Facet: facet, Options: opts})
	}
	return out
}
