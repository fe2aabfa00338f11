package port

import (
	"context"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/shopspring/decimal"
)

type closer interface {
	Close()
}

// A ListFilter narrows the catalog supplier listing.
// Zero fields are ignored.
type ListFilter struct {
	Category domain.Category
	MaxPrice decimal.Decimal
	Color    string
}

type CatalogSupplier interface {
	List(context.Context, ListFilter) ([]domain.Product, error)
	// GetByID reports ok false for unknown ids instead of an error.
	GetByID(ctx context.Context, id int) (p domain.Product, ok bool, err error)
	Testimonials(context.Context) ([]domain.Testimonial, error)
	TeamMembers(context.Context) ([]domain.TeamMember, error)
}

type OrderSubmitter interface {
	SubmitOrder(context.Context, domain.Order) (domain.OrderReceipt, error)
}

type OrderHistory interface {
	UserOrders(ctx context.Context, email string) ([]domain.Order, error)
}

// A KVStorage is the durable client storage. Get reports ok false
// for absent keys.
type KVStorage interface {
	Get(ctx context.Context, key string) (v []byte, ok bool, err error)
	Set(ctx context.Context, key string, v []byte) error
}

type OrderHistoryProcessor interface {
	Run(ctx context.Context, stopFn context.CancelFunc)
	closer
}
