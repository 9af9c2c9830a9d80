package catalog

import (
	"fmt"

	"github.com/jask/budregistry/internal/product"
)

// PageSizes are the page sizes the catalog offers.
var PageSizes = []int{6, 12, 24}

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 6

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// NextPageSize cycles through PageSizes.
func NextPageSize(n int) int {
	for i, s := range PageSizes {
		if s == n {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return DefaultPageSize
}

// Page is one page of a filtered collection.
type Page struct {
	Items      []product.DashboardProduct
	Page       int
	TotalPages int
	PageSize   int
	Total      int
}

// IDs returns the ids of the page items in order.
func (p Page) IDs() []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.ID
	}
	return out
}

// Label renders "page X of Y".
func (p Page) Label() string {
	return fmt.Sprintf("page %d of %d", p.Page, p.TotalPages)
}

// Paginate slices items into pages of pageSize. TotalPages is at least one and
// out-of-range pages clamp to the nearest valid page.
func Paginate(items []product.DashboardProduct, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	var pageItems []product.DashboardProduct
	if start < end {
		pageItems = items[start:end]
	}
	return Page{
		Items:      pageItems,
		Page:       page,
		TotalPages: totalPages,
		PageSize:   pageSize,
		Total:      total,
	}
}
