package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
	"github.com/niksmo/souvenir-shop/internal/core/notify"
	"github.com/niksmo/souvenir-shop/internal/core/persist"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/internal/core/state"
	"github.com/niksmo/souvenir-shop/pkg/retry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalogSupplier struct {
	mock.Mock
}

func (m *MockCatalogSupplier) List(
	ctx context.Context, f port.ListFilter,
) ([]domain.Product, error) {
	args := m.Called(ctx, f)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockCatalogSupplier) GetByID(
	ctx context.Context, id int,
) (domain.Product, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Bool(1), args.Error(2)
}

func (m *MockCatalogSupplier) Testimonials(
	ctx context.Context,
) ([]domain.Testimonial, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]domain.Testimonial)
	return ts, args.Error(1)
}

func (m *MockCatalogSupplier) TeamMembers(
	ctx context.Context,
) ([]domain.TeamMember, error) {
	args := m.Called(ctx)
	team, _ := args.Get(0).([]domain.TeamMember)
	return team, args.Error(1)
}

type MockOrderSubmitter struct {
	mock.Mock
}

func (m *MockOrderSubmitter) SubmitOrder(
	ctx context.Context, o domain.Order,
) (domain.OrderReceipt, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(domain.OrderReceipt), args.Error(1)
}

type MockOrderHistory struct {
	mock.Mock
}

func (m *MockOrderHistory) UserOrders(
	ctx context.Context, email string,
) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	os, _ := args.Get(0).([]domain.Order)
	return os, args.Error(1)
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func noopAfterFunc(time.Duration, func()) notify.Timer { return noopTimer{} }

type fixture struct {
	svc     *Service
	catalog *MockCatalogSupplier
	orders  *MockOrderSubmitter
	history *MockOrderHistory
	stores  persist.Stores
}

func product(id int, name, price, color string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: domain.CategoryHandmadeCrafts,
		Color:    color,
		Images:   []string{"img.jpg"},
	}
}

var testProducts = []domain.Product{
	product(1, "Kente Scarf", "8500", "Multicolor"),
	product(2, "Brass Keychain", "2500", "Gold"),
	product(3, "Adinkra Stamp", "4000", "Brown"),
	product(4, "Beaded Bracelet", "3000", "Gold"),
	product(5, "Wooden Mask", "12000", "Brown"),
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		catalog: new(MockCatalogSupplier),
		orders:  new(MockOrderSubmitter),
		history: new(MockOrderHistory),
		stores: persist.Stores{
			Cart:     state.NewCart(),
			Wishlist: state.NewWishlist(),
			Theme:    state.NewTheme(),
		},
	}
	f.stores.Cart.Restore(nil)
	f.stores.Wishlist.Restore(nil)
	f.stores.Theme.Restore(domain.ThemeLight)

	svc, err := New(
		f.catalog, f.orders, f.history, f.stores,
		notify.New(notify.AfterFuncOpt(noopAfterFunc)),
		AuthLatencyOpt(0),
		WarmupRetryOpt(retry.RetryConfig{
			MaxAttempts: 2,
			Backoff:     retry.LineareBackoff(time.Millisecond),
		}),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f fixture) warm(t *testing.T) {
	t.Helper()
	f.catalog.On("List", mock.Anything, port.ListFilter{}).
		Return(testProducts, nil).Once()
	require.NoError(t, f.svc.Warmup(t.Context()))
}

func lastToast(t *testing.T, s *Service) domain.Toast {
	t.Helper()
	toasts := s.Toasts()
	require.NotEmpty(t, toasts)
	return toasts[len(toasts)-1]
}

func TestBrowseLoading(t *testing.T) {
	f := newFixture(t)

	listing, err := f.svc.Browse(domain.DefaultFilter(), 1)
	require.NoError(t, err)
	assert.True(t, listing.Loading)
	assert.Empty(t, listing.Items)
	assert.Zero(t, listing.TotalCount)

	featured, loading := f.svc.Featured()
	assert.True(t, loading)
	assert.Empty(t, featured)

	f.warm(t)

	listing, err = f.svc.Browse(domain.DefaultFilter(), 1)
	require.NoError(t, err)
	assert.False(t, listing.Loading)
	assert.Equal(t, 5, listing.TotalCount)
	assert.Equal(t, 1, listing.TotalPages)
	assert.Equal(t, "Adinkra Stamp", listing.Items[0].Name)

	featured, loading = f.svc.Featured()
	assert.False(t, loading)
	assert.Len(t, featured, 4)
}

func TestBrowseLoadedNoResults(t *testing.T) {
	f := newFixture(t)
	f.warm(t)

	cfg := domain.DefaultFilter()
	cfg.Color = "Purple"
	listing, err := f.svc.Browse(cfg, 1)
	require.NoError(t, err)
	assert.False(t, listing.Loading)
	assert.Empty(t, listing.Items)
	assert.Zero(t, listing.TotalPages)
}

func TestBrowseInvalidFilter(t *testing.T) {
	f := newFixture(t)

	cfg := domain.DefaultFilter()
	cfg.Sort = "rating"
	_, err := f.svc.Browse(cfg, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestWarmupRetries(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("List", mock.Anything, port.ListFilter{}).
		Return(nil, errors.New("timeout")).Once()
	f.catalog.On("List", mock.Anything, port.ListFilter{}).
		Return(testProducts, nil).Once()

	require.NoError(t, f.svc.Warmup(t.Context()))
	f.catalog.AssertNumberOfCalls(t, "List", 2)
}

func TestFacets(t *testing.T) {
	f := newFixture(t)
	f.warm(t)

	facets, loading := f.svc.Facets()
	assert.False(t, loading)
	assert.Equal(t, domain.Categories, facets.Categories)
	assert.Equal(t, []string{"Multicolor", "Gold", "Brown"}, facets.Colors)
}

func TestProduct(t *testing.T) {
	t.Run("BeforeWarmup", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("GetByID", mock.Anything, 2).Return(testProducts[1], true, nil)
		f.catalog.On("GetByID", mock.Anything, 99).Return(domain.Product{}, false, nil)

		p, err := f.svc.Product(t.Context(), 2)
		require.NoError(t, err)
		assert.Equal(t, "Brass Keychain", p.Name)

		_, err = f.svc.Product(t.Context(), 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("FromCache", func(t *testing.T) {
		f := newFixture(t)
		f.warm(t)

		p, err := f.svc.Product(t.Context(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Adinkra Stamp", p.Name)
		f.catalog.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)

		_, err = f.svc.Product(t.Context(), 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAddToCart(t *testing.T) {
	f := newFixture(t)
	f.warm(t)

	view, err := f.svc.AddToCart(t.Context(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems)
	toast := lastToast(t, f.svc)
	assert.Equal(t, "Kente Scarf added to cart!", toast.Message)
	assert.Equal(t, domain.SeveritySuccess, toast.Severity)

	view, err = f.svc.AddToCart(t.Context(), 1, 3)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 4, view.Lines[0].Quantity)
	assert.Equal(t, "3 x Kente Scarf added to cart!", lastToast(t, f.svc).Message)
	assert.True(t, decimal.NewFromInt(34000).Equal(view.TotalPrice))

	_, err = f.svc.AddToCart(t.Context(), 1, 0)
	var verr domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.AddToCart(t.Context(), 99, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartMutations(t *testing.T) {
	f := newFixture(t)
	f.warm(t)

	_, err := f.svc.AddToCart(t.Context(), 1, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(t.Context(), 2, 1)
	require.NoError(t, err)

	view := f.svc.UpdateCartQuantity(1, 5)
	assert.Equal(t, 6, view.TotalItems)

	view = f.svc.UpdateCartQuantity(1, -5)
	assert.Equal(t, 1, view.TotalItems)

	view = f.svc.UpdateCartQuantity(42, 3)
	assert.Equal(t, 1, view.TotalItems)

	view = f.svc.RemoveFromCart(2)
	assert.Empty(t, view.Lines)

	_, err = f.svc.AddToCart(t.Context(), 3, 1)
	require.NoError(t, err)
	f.svc.ClearCart()
	view, st := f.svc.Cart()
	assert.Empty(t, view.Lines)
	assert.Equal(t, hydration.Empty, st)
}

func TestToggleWishlist(t *testing.T) {
	f := newFixture(t)
	f.warm(t)

	added, err := f.svc.ToggleWishlist(t.Context(), 2)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "Brass Keychain added to wishlist!", lastToast(t, f.svc).Message)

	added, err = f.svc.ToggleWishlist(t.Context(), 2)
	require.NoError(t, err)
	assert.False(t, added)
	toast := lastToast(t, f.svc)
	assert.Equal(t, "Brass Keychain removed from wishlist.", toast.Message)
	assert.Equal(t, domain.SeverityInfo, toast.Severity)

	_, err = f.svc.ToggleWishlist(t.Context(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveToCart(t *testing.T) {
	f := newFixture(t)
	f.warm(t)

	_, err := f.svc.ToggleWishlist(t.Context(), 4)
	require.NoError(t, err)

	require.NoError(t, f.svc.MoveToCart(4))
	assert.Equal(t, "Beaded Bracelet moved to cart!", lastToast(t, f.svc).Message)

	entries, _ := f.svc.Wishlist()
	assert.Empty(t, entries)
	view, _ := f.svc.Cart()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 4, view.Lines[0].ID)

	assert.ErrorIs(t, f.svc.MoveToCart(4), domain.ErrNotFound)

	_, err = f.svc.ToggleWishlist(t.Context(), 5)
	require.NoError(t, err)
	f.svc.RemoveFromWishlist(5)
	entries, _ = f.svc.Wishlist()
	assert.Empty(t, entries)
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   "Ama Mensah",
		Email:      "ama@example.com",
		Address:    "12 Ring Road",
		City:       "Accra",
		Country:    "Ghana",
		CardNumber: "4111111111111111",
		ExpiryDate: "09/27",
		CVV:        "123",
	}
}

func TestCheckout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.warm(t)
		_, err := f.svc.AddToCart(t.Context(), 1, 2)
		require.NoError(t, err)

		f.orders.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
			return len(o.Items) == 1 &&
				o.Items[0].Quantity == 2 &&
				o.Total.Equal(decimal.NewFromInt(17000)) &&
				o.Shipping.Email == "ama@example.com"
		})).Return(domain.OrderReceipt{Success: true, OrderID: "ES12345"}, nil)

		receipt, err := f.svc.Checkout(t.Context(), validShipping())
		require.NoError(t, err)
		assert.Equal(t, "ES12345", receipt.OrderID)

		view, _ := f.svc.Cart()
		assert.Empty(t, view.Lines)
		assert.Equal(t, "Your order has been placed!", lastToast(t, f.svc).Message)
	})

	t.Run("Rejected", func(t *testing.T) {
		f := newFixture(t)
		f.warm(t)
		_, err := f.svc.AddToCart(t.Context(), 1, 2)
		require.NoError(t, err)

		f.orders.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(domain.OrderReceipt{Success: false}, nil)

		_, err = f.svc.Checkout(t.Context(), validShipping())
		assert.ErrorIs(t, err, domain.ErrOrderRejected)

		view, _ := f.svc.Cart()
		assert.Equal(t, 2, view.TotalItems)
		toast := lastToast(t, f.svc)
		assert.Equal(t, "There was an error placing your order.", toast.Message)
		assert.Equal(t, domain.SeverityError, toast.Severity)
	})

	t.Run("SubmitFailure", func(t *testing.T) {
		f := newFixture(t)
		f.warm(t)
		_, err := f.svc.AddToCart(t.Context(), 1, 1)
		require.NoError(t, err)

		f.orders.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(domain.OrderReceipt{}, errors.New("broker down"))

		_, err = f.svc.Checkout(t.Context(), validShipping())
		assert.ErrorContains(t, err, "broker down")

		view, _ := f.svc.Cart()
		assert.Equal(t, 1, view.TotalItems)
		assert.Equal(t, domain.SeverityError, lastToast(t, f.svc).Severity)
	})

	t.Run("InvalidShipping", func(t *testing.T) {
		f := newFixture(t)
		f.warm(t)
		_, err := f.svc.AddToCart(t.Context(), 1, 1)
		require.NoError(t, err)

		info := validShipping()
		info.CardNumber = "1234"
		info.Email = "nope"

		_, err = f.svc.Checkout(t.Context(), info)
		var verr domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
		f.orders.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Checkout(t.Context(), validShipping())
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("KeepsLinesAddedWhileSubmitting", func(t *testing.T) {
		f := newFixture(t)
		f.warm(t)
		_, err := f.svc.AddToCart(t.Context(), 1, 2)
		require.NoError(t, err)

		f.orders.On("SubmitOrder", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				_, err := f.svc.AddToCart(t.Context(), 1, 1)
				require.NoError(t, err)
				_, err = f.svc.AddToCart(t.Context(), 2, 1)
				require.NoError(t, err)
			}).
			Return(domain.OrderReceipt{Success: true, OrderID: "ES12345"}, nil)

		_, err = f.svc.Checkout(t.Context(), validShipping())
		require.NoError(t, err)

		view, _ := f.svc.Cart()
		require.Len(t, view.Lines, 2)
		assert.Equal(t, 1, view.Lines[0].ID)
		assert.Equal(t, 1, view.Lines[0].Quantity)
		assert.Equal(t, 2, view.Lines[1].ID)
		assert.Equal(t, 1, view.Lines[1].Quantity)
	})
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Subscribe("not-an-email")
	var verr domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	toast := lastToast(t, f.svc)
	assert.Equal(t, "Please enter a valid email.", toast.Message)
	assert.Equal(t, domain.SeverityError, toast.Severity)

	require.NoError(t, f.svc.Subscribe("ama@example.com"))
	assert.Equal(t, "Thank you for subscribing!", lastToast(t, f.svc).Message)
}

func TestContact(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Contact(ContactMessage{Name: "Ama"})
	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	require.NoError(t, f.svc.Contact(ContactMessage{
		Name: "Ama", Email: "ama@example.com", Message: "Hello",
	}))
	assert.Equal(t, "Your message has been sent!", lastToast(t, f.svc).Message)
}

func TestTheme(t *testing.T) {
	f := newFixture(t)

	theme, st := f.svc.Theme()
	assert.Equal(t, domain.ThemeLight, theme)
	assert.NotEqual(t, hydration.NotLoaded, st)

	assert.Equal(t, domain.ThemeDark, f.svc.ToggleTheme())
	assert.Equal(t, domain.ThemeLight, f.svc.ToggleTheme())
}

func TestAuthAndOrders(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Orders(t.Context())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.svc.Login(t.Context(), "", "")
	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	u, err := f.svc.Login(t.Context(), "ama@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: 1, Name: "Demo User", Email: "ama@example.com"}, u)
	assert.Equal(t, "Welcome back!", lastToast(t, f.svc).Message)

	orders := []domain.Order{{ID: "ES10001"}}
	f.history.On("UserOrders", mock.Anything, "ama@example.com").Return(orders, nil)
	got, err := f.svc.Orders(t.Context())
	require.NoError(t, err)
	assert.Equal(t, orders, got)

	f.svc.Logout()
	_, ok := f.svc.CurrentUser()
	assert.False(t, ok)

	u, err = f.svc.Register(t.Context(), "Kofi", "kofi@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Kofi", u.Name)
	assert.Equal(t, "Account created successfully!", lastToast(t, f.svc).Message)

	current, ok := f.svc.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, u, current)
}

func TestLoginHonorsContext(t *testing.T) {
	f := newFixture(t)
	f.svc.authLatency = time.Hour

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err := f.svc.Login(ctx, "ama@example.com", "secret")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := f.svc.CurrentUser()
	assert.False(t, ok)
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t)

	assert.Error(t, f.svc.ForgotPassword(" "))
	require.NoError(t, f.svc.ForgotPassword("ama@example.com"))
	toast := lastToast(t, f.svc)
	assert.Equal(t, "Password reset link sent to your email (mock).", toast.Message)
	assert.Equal(t, domain.SeverityInfo, toast.Severity)
}

func TestDismissToast(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Subscribe("ama@example.com"))
	id := lastToast(t, f.svc).ID

	f.svc.DismissToast(id)
	f.svc.DismissToast(id)
	assert.Empty(t, f.svc.Toasts())
}

func TestStorefrontContent(t *testing.T) {
	t.Run("Testimonials", func(t *testing.T) {
		f := newFixture(t)
		want := []domain.Testimonial{
			{ID: 1, Name: "Amara", Location: "London", Quote: "Lovely"},
		}
		f.catalog.On("Testimonials", mock.Anything).Return(want, nil).Once()

		got, err := f.svc.Testimonials(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, got)
		f.catalog.AssertExpectations(t)
	})

	t.Run("TeamMembers", func(t *testing.T) {
		f := newFixture(t)
		want := []domain.TeamMember{{ID: 1, Name: "Chiamaka", Role: "Founder"}}
		f.catalog.On("TeamMembers", mock.Anything).Return(want, nil).Once()

		got, err := f.svc.TeamMembers(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("SupplierFailure", func(t *testing.T) {
		f := newFixture(t)
		errUnavailable := errors.New("unavailable")
		f.catalog.On("Testimonials", mock.Anything).Return(nil, errUnavailable)
		f.catalog.On("TeamMembers", mock.Anything).Return(nil, errUnavailable)

		_, err := f.svc.Testimonials(t.Context())
		assert.ErrorIs(t, err, errUnavailable)
		_, err = f.svc.TeamMembers(t.Context())
		assert.ErrorIs(t, err, errUnavailable)
	})
}
