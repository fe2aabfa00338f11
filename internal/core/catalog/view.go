package catalog

import (
	"fmt"
	"slices"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the number of products on one shop page.
const DefaultPageSize = 9

// View filters, sorts and paginates products. The input is never modified.
//
// An empty result has zero TotalCount and TotalPages. A page below one
// is treated as the first page, a page past the end holds no items.
func View(
	products []domain.Product, cfg domain.FilterConfig, page, pageSize int,
) (domain.Page, error) {
	const op = "catalog.View"

	if pageSize <= 0 {
		return domain.Page{}, fmt.Errorf("%s: %w: %d", op, domain.ErrInvalidPageSize, pageSize)
	}
	if err := cfg.Validate(); err != nil {
		return domain.Page{}, fmt.Errorf("%s: %w", op, err)
	}
	if page < 1 {
		page = 1
	}

	filtered := Filter(products, cfg)
	Sort(filtered, cfg.Sort)

	total := len(filtered)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	res := domain.Page{
		Items:      []domain.Product{},
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
	}

	// compare pages before multiplying, (page-1)*pageSize may overflow
	if page > totalPages {
		return res, nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	res.Items = filtered[start:end]
	return res, nil
}

// Filter returns a new slice with products matching all of cfg predicates.
func Filter(products []domain.Product, cfg domain.FilterConfig) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if match(p, cfg) {
			out = append(out, p)
		}
	}
	return out
}

func match(p domain.Product, cfg domain.FilterConfig) bool {
	if cfg.Category != "" && p.Category != cfg.Category {
		return false
	}
	if p.Price.GreaterThan(cfg.MaxPrice) {
		return false
	}
	if cfg.Color != "" && p.Color != cfg.Color {
		return false
	}
	return true
}

// Sort orders products in place with a stable sort.
// SortNone keeps the current order.
func Sort(products []domain.Product, key domain.SortKey) {
	switch key {
	case domain.SortNameAsc, domain.SortNameDesc:
		// collator keeps internal buffers, one per call
		c := collate.New(language.English)
		desc := key == domain.SortNameDesc
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			if desc {
				return c.CompareString(b.Name, a.Name)
			}
			return c.CompareString(a.Name, b.Name)
		})
	case domain.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	}
}
