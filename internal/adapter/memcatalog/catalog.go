// Package memcatalog serves the read-only product catalog from memory
// with an artificial network latency.
package memcatalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/pkg/delay"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var _ port.CatalogSupplier = (*Catalog)(nil)

// DefaultLatency simulates one network round trip.
const DefaultLatency = 500 * time.Millisecond

var (
	//go:embed catalog.yaml
	seed []byte

	//go:embed content.yaml
	contentSeed []byte
)

var ErrDuplicateID = errors.New("duplicate product id")

type (
	catalogFile struct {
		Products []productRecord `yaml:"products"`
	}

	productRecord struct {
		ID          int      `yaml:"id"`
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Price       string   `yaml:"price"`
		Category    string   `yaml:"category"`
		Color       string   `yaml:"color"`
		Images      []string `yaml:"images"`
		Video       string   `yaml:"video"`
		Rating      float64  `yaml:"rating"`
		ReviewCount int      `yaml:"review_count"`
	}
)

type Opt func(*catalogOpts) error

type catalogOpts struct {
	latency time.Duration
	data    []byte
	content []byte
}

func LatencyOpt(d time.Duration) Opt {
	return func(o *catalogOpts) error {
		if d < 0 {
			return errors.New("latency is negative")
		}
		o.latency = d
		return nil
	}
}

// FileOpt replaces the embedded seed with a YAML file.
func FileOpt(path string) Opt {
	return func(o *catalogOpts) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		o.data = data
		return nil
	}
}

// SeedOpt uses raw YAML instead of the embedded seed.
func SeedOpt(data []byte) Opt {
	return func(o *catalogOpts) error {
		o.data = data
		return nil
	}
}

// ContentSeedOpt uses raw YAML for testimonials and team members.
func ContentSeedOpt(data []byte) Opt {
	return func(o *catalogOpts) error {
		o.content = data
		return nil
	}
}

type Catalog struct {
	products []domain.Product
	byID     map[int]int
	content  content
	latency  time.Duration
}

func New(opts ...Opt) (Catalog, error) {
	const op = "memcatalog.New"

	options := catalogOpts{
		latency: DefaultLatency,
		data:    seed,
		content: contentSeed,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Catalog{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	products, err := Parse(options.data)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[int]int, len(products))
	for i, p := range products {
		if _, ok := byID[p.ID]; ok {
			return Catalog{}, fmt.Errorf("%s: %w: %d", op, ErrDuplicateID, p.ID)
		}
		byID[p.ID] = i
	}

	content, err := parseContent(options.content)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	slog.Info(
		"catalog loaded", "op", op,
		"products", len(products),
		"testimonials", len(content.testimonials),
		"team", len(content.team),
	)

	return Catalog{
		products: products,
		byID:     byID,
		content:  content,
		latency:  options.latency,
	}, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]domain.Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	var errs []error
	products := make([]domain.Product, 0, len(f.Products))
	for _, r := range f.Products {
		p, err := r.toDomain()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		products = append(products, p)
	}
	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}
	return products, nil
}

func (r productRecord) toDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: price: %w", r.ID, err)
	}
	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		Category:    domain.Category(r.Category),
		Color:       r.Color,
		Images:      r.Images,
		Video:       r.Video,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
	}
	return p, p.Validate()
}

// List returns the products matching f, in catalog order.
func (c Catalog) List(
	ctx context.Context, f port.ListFilter,
) ([]domain.Product, error) {
	const op = "Catalog.List"

	if err := delay.Wait(ctx, c.latency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if !f.MaxPrice.IsZero() && p.Price.GreaterThan(f.MaxPrice) {
			continue
		}
		if f.Color != "" && p.Color != f.Color {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (c Catalog) GetByID(
	ctx context.Context, id int,
) (domain.Product, bool, error) {
	const op = "Catalog.GetByID"

	if err := delay.Wait(ctx, c.latency); err != nil {
		return domain.Product{}, false, fmt.Errorf("%s: %w", op, err)
	}

	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false, nil
	}
	return c.products[i].Clone(), true, nil
}
