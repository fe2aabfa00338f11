package domain

import "github.com/shopspring/decimal"

// A CartLine pairs a product snapshot with a quantity.
type CartLine struct {
	Product
	Quantity int
}

// Subtotal uses the price captured when the line was created.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type WishlistEntry struct {
	Product
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
