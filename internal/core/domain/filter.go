package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// A FilterConfig selects and orders catalog items.
//
// Empty Category and Color match everything, MaxPrice is inclusive.
type FilterConfig struct {
	Category Category
	MaxPrice decimal.Decimal
	Color    string
	Sort     SortKey
}

// DefaultMaxPrice is the upper bound of the shop price slider.
var DefaultMaxPrice = decimal.NewFromInt(100000)

// DefaultFilter is the initial shop page configuration.
func DefaultFilter() FilterConfig {
	return FilterConfig{
		MaxPrice: DefaultMaxPrice,
		Sort:     SortNameAsc,
	}
}

func (f FilterConfig) Validate() error {
	if f.Category != "" && !f.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, f.Category)
	}
	if !f.Sort.Valid() {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, f.Sort)
	}
	if f.MaxPrice.IsNegative() {
		return fmt.Errorf("%w: negative max price", ErrInvalidFilter)
	}
	return nil
}

// A Page is one slice of a filtered and sorted product list.
type Page struct {
	Items      []Product
	TotalCount int
	TotalPages int
	Page       int
}
