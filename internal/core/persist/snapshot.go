package persist

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const snapshotVersion = 0

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type (
	envelope[S any] struct {
		State   S   `json:"state"`
		Version int `json:"version"`
	}

	cartState struct {
		Items []cartItem `json:"items"`
	}

	wishlistState struct {
		Items []product `json:"items"`
	}

	themeState struct {
		Theme string `json:"theme"`
	}

	product struct {
		ID          int             `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Category    string          `json:"category"`
		Color       string          `json:"color"`
		Images      []string        `json:"images"`
		Video       string          `json:"video,omitempty"`
		Rating      float64         `json:"rating"`
		ReviewCount int             `json:"reviewCount"`
	}

	cartItem struct {
		product
		Quantity int `json:"quantity"`
	}
)

func encode[S any](s S) ([]byte, error) {
	return json.Marshal(envelope[S]{State: s, Version: snapshotVersion})
}

func decode[S any](data []byte) (S, error) {
	var env envelope[S]
	if err := json.Unmarshal(data, &env); err != nil {
		return env.State, err
	}
	if env.Version != snapshotVersion {
		var zero S
		return zero, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env.State, nil
}

func EncodeCart(lines []domain.CartLine) ([]byte, error) {
	s := cartState{Items: make([]cartItem, len(lines))}
	for i, l := range lines {
		s.Items[i] = cartItem{product: fromDomain(l.Product), Quantity: l.Quantity}
	}
	return encode(s)
}

func DecodeCart(data []byte) ([]domain.CartLine, error) {
	s, err := decode[cartState](data)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, len(s.Items))
	for i, it := range s.Items {
		lines[i] = domain.CartLine{Product: it.toDomain(), Quantity: it.Quantity}
	}
	return lines, nil
}

func EncodeWishlist(entries []domain.WishlistEntry) ([]byte, error) {
	s := wishlistState{Items: make([]product, len(entries))}
	for i, e := range entries {
		s.Items[i] = fromDomain(e.Product)
	}
	return encode(s)
}

func DecodeWishlist(data []byte) ([]domain.WishlistEntry, error) {
	s, err := decode[wishlistState](data)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.WishlistEntry, len(s.Items))
	for i, it := range s.Items {
		entries[i] = domain.WishlistEntry{Product: it.toDomain()}
	}
	return entries, nil
}

func EncodeTheme(t domain.Theme) ([]byte, error) {
	return encode(themeState{Theme: string(t)})
}

func DecodeTheme(data []byte) (domain.Theme, error) {
	s, err := decode[themeState](data)
	if err != nil {
		return "", err
	}
	t := domain.Theme(s.Theme)
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q", s.Theme)
	}
	return t, nil
}

func fromDomain(p domain.Product) product {
	return product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		Color:       p.Color,
		Images:      p.Images,
		Video:       p.Video,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
}

func (p product) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    domain.Category(p.Category),
		Color:       p.Color,
		Images:      p.Images,
		Video:       p.Video,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
}
