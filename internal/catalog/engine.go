package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/product"
)

// Layout is how the catalog renders its page.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

// ParseLayout falls back to grid for unknown names.
func ParseLayout(s string) Layout {
	if strings.EqualFold(strings.TrimSpace(s), string(LayoutList)) {
		return LayoutList
	}
	return LayoutGrid
}

const bundleLicensePrefix = "BND-"

// EngineDeps bundles constructor inputs for the engine.
type EngineDeps struct {
	Store      Store
	Logger     *zap.Logger
	Clock      func() time.Time
	NewID      func() string
	NewLicense func() string
	PageSize   int
	Layout     Layout
}

// Engine is the catalog's resident view state: filters, search text, page,
// page size, layout and selection over an injected Store.
type Engine struct {
	store      Store
	log        *zap.Logger
	clock      func() time.Time
	newID      func() string
	newLicense func() string

	filters   Filters
	search    string
	page      int
	pageSize  int
	layout    Layout
	selection Selection
}

// View is the derived page the renderers consume.
type View struct {
	Page
	Filtered int
	All      int
	Layout   Layout
	Filters  Filters
	Search   string
}

// NewEngine constructs the engine with the supplied dependencies.
func NewEngine(deps EngineDeps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("catalog engine: store is required")
	}
	e := &Engine{
		store:      deps.Store,
		log:        deps.Logger,
		clock:      deps.Clock,
		newID:      deps.NewID,
		newLicense: deps.NewLicense,
		page:       1,
		pageSize:   deps.PageSize,
		layout:     deps.Layout,
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.newLicense == nil {
		e.newLicense = func() string { return bundleLicensePrefix + ulid.Make().String() }
	}
	if !ValidPageSize(e.pageSize) {
		e.pageSize = DefaultPageSize
	}
	if e.layout == "" {
		e.layout = LayoutGrid
	}
	return e, nil
}

// View derives the current page. The stored page number is clamped so the
// indicator never points past the last page.
func (e *Engine) View() View {
	all := e.store.List()
	visible := all
	if q := strings.TrimSpace(e.search); q != "" {
		visible = searchItems(visible, q)
	}
	filtered := ApplyFilters(visible, e.filters)
	page := Paginate(filtered, e.page, e.pageSize)
	e.page = page.Page
	return View{
		Page:     page,
		Filtered: len(filtered),
		All:      len(all),
		Layout:   e.layout,
		Filters:  e.filters.Clone(),
		Search:   e.search,
	}
}

// FilterGroups lists the filter panel options for the whole collection.
func (e *Engine) FilterGroups() []FilterGroup {
	return BuildFilterGroups(e.store.List())
}

// Filters returns a copy of the active filters.
func (e *Engine) Filters() Filters {
	return e.filters.Clone()
}

// ToggleFilter flips one option and returns to the first page.
func (e *Engine) ToggleFilter(facet Facet, option string) (bool, error) {
	on, err := e.filters.Toggle(facet, option)
	if err != nil {
		return false, err
	}
	e.page = 1
	return on, nil
}

// SetFilters replaces the active filters.
func (e *Engine) SetFilters(f Filters) {
	e.filters = f.Clone()
	e.page = 1
}

// ClearFilters removes every filter.
func (e *Engine) ClearFilters() {
	e.filters.Reset()
	e.page = 1
}

// SetSearch narrows the collection by name, brand or license substring.
func (e *Engine) SetSearch(q string) {
	e.search = q
	e.page = 1
}

func (e *Engine) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	e.page = n
}

func (e *Engine) NextPage() {
	v := e.View()
	if v.Page.Page < v.TotalPages {
		e.page = v.Page.Page + 1
	}
}

func (e *Engine) PrevPage() {
	if e.page > 1 {
		e.page--
	}
}

// SetPageSize accepts one of PageSizes.
func (e *Engine) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return fmt.Errorf("catalog: page size %d not in %v", n, PageSizes)
	}
	e.pageSize = n
	e.page = 1
	return nil
}

// CyclePageSize moves to the next page size and returns it.
func (e *Engine) CyclePageSize() int {
	e.pageSize = NextPageSize(e.pageSize)
	e.page = 1
	return e.pageSize
}

func (e *Engine) PageSize() int {
	return e.pageSize
}

func (e *Engine) Layout() Layout {
	return e.layout
}

// ToggleLayout switches between grid and list.
func (e *Engine) ToggleLayout() Layout {
	if e.layout == LayoutGrid {
		e.layout = LayoutList
	} else {
		e.layout = LayoutGrid
	}
	return e.layout
}

// ToggleSelect flips one id.
func (e *Engine) ToggleSelect(id string) bool {
	return e.selection.Toggle(id)
}

// ToggleSelectAll applies page-scoped select-all to the current page.
func (e *Engine) ToggleSelectAll() {
	e.selection.ToggleAll(e.View().IDs())
}

func (e *Engine) IsSelected(id string) bool {
	return e.selection.Contains(id)
}

func (e *Engine) SelectedIDs() []string {
	return e.selection.IDs()
}

func (e *Engine) ClearSelection() {
	e.selection.Clear()
}

// SelectedProducts returns the selected entries in catalog order.
func (e *Engine) SelectedProducts() []product.DashboardProduct {
	var out []product.DashboardProduct
	for _, it := range e.store.List() {
		if e.selection.Contains(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// Get looks up one entry.
func (e *Engine) Get(id string) (product.DashboardProduct, bool) {
	return e.store.Get(id)
}

// BulkDelete removes the selected entries, clears the selection and returns
// how many were removed.
func (e *Engine) BulkDelete() int {
	ids := e.selection.IDs()
	removed := e.store.Delete(ids)
	e.selection.Clear()
	e.log.Info("bulk delete", zap.Int("requested", len(ids)), zap.Int("removed", removed))
	return removed
}

// CreateBundle builds a bundle from items and prepends it to the collection.
func (e *Engine) CreateBundle(name string, items []BundleItem, price decimal.Decimal) (product.DashboardProduct, error) {
	b, err := BuildBundle(BundleRequest{
		Name:    name,
		Items:   items,
		Price:   price,
		ID:      e.newID(),
		License: e.newLicense(),
		Now:     e.clock().UTC(),
	})
	if err != nil {
		return product.DashboardProduct{}, err
	}
	if err := e.store.Prepend(b); err != nil {
		return product.DashboardProduct{}, err
	}
	e.log.Info("bundle created", zap.String("id", b.ID), zap.String("name", b.Name), zap.Int("items", len(items)))
	return b, nil
}

// EditProduct applies the shared edit contract to an existing entry.
func (e *Engine) EditProduct(p product.Product) (product.DashboardProduct, error) {
	p = product.Normalize(p)
	if err := product.Validate(p); err != nil {
		return product.DashboardProduct{}, err
	}
	cur, ok := e.store.Get(p.ID)
	if !ok {
		return product.DashboardProduct{}, fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	cur.ApplyEdit(p)
	if err := e.store.Update(cur); err != nil {
		return product.DashboardProduct{}, err
	}
	e.log.Info("product edited", zap.String("id", cur.ID), zap.Int("markets", cur.TotalMarkets()))
	return cur, nil
}

// Register stores a product saved from the registration wizard: existing ids
// are edited in place, new ones are appended.
func (e *Engine) Register(p product.Product) (product.DashboardProduct, error) {
	p = product.Normalize(p)
	if err := product.Validate(p); err != nil {
		return product.DashboardProduct{}, err
	}
	if p.ID != "" {
		if _, ok := e.store.Get(p.ID); ok {
			return e.EditProduct(p)
		}
	} else {
		p.ID = e.newID()
	}
	d := product.ToDashboard(p)
	d.Status = product.StatusActive
	d.CreatedAt = e.clock().UTC()
	if err := e.store.Append(d); err != nil {
		return product.DashboardProduct{}, err
	}
	e.log.Info("product registered", zap.String("id", d.ID), zap.String("name", d.Name))
	return d, nil
}

func searchItems(items []product.DashboardProduct, q string) []product.DashboardProduct {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]product.DashboardProduct, 0, len(items))
	for _, it := range items {
		if matchesSearch(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func matchesSearch(it product.DashboardProduct, q string) bool {
	if strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.LicenseNumber), q) {
		return true
	}
	for _, b := range it.Brands {
		if strings.Contains(strings.ToLower(b), q) {
			return true
		}
	}
	return false
}
