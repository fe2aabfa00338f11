package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryTravelSouvenirs     Category = "Travel Souvenirs"
	CategoryPersonalizedGifts   Category = "Personalized Gifts"
	CategoryHandmadeCrafts      Category = "Handmade Crafts"
	CategorySeasonalCollections Category = "Seasonal Collections"
)

// Categories lists the enumerated categories in display order.
var Categories = []Category{
	CategoryTravelSouvenirs,
	CategoryPersonalizedGifts,
	CategoryHandmadeCrafts,
	CategorySeasonalCollections,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// A Product is a catalog record. Values are treated as immutable:
// the cart and the wishlist keep their own copies.
type Product struct {
	ID          int
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	Color       string
	Images      []string
	Video       string
	Rating      float64
	ReviewCount int
}

// Clone returns a deep copy so callers never share the images slice.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = make([]string, len(p.Images))
		copy(c.Images, p.Images)
	}
	return c
}

func (p Product) Validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if p.Price.IsNegative() {
		errs = append(errs, errors.New("price is negative"))
	}
	if !p.Category.Valid() {
		errs = append(errs, fmt.Errorf("unknown category %q", p.Category))
	}
	if len(p.Images) == 0 {
		errs = append(errs, errors.New("no images"))
	}
	if p.Rating < 0 || p.Rating > 5 {
		errs = append(errs, fmt.Errorf("rating %v out of range", p.Rating))
	}
	if p.ReviewCount < 0 {
		errs = append(errs, errors.New("review count is negative"))
	}

	if len(errs) != 0 {
		return fmt.Errorf("product %d: %w", p.ID, errors.Join(errs...))
	}
	return nil
}
