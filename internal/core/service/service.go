package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/catalog"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
	"github.com/niksmo/souvenir-shop/internal/core/notify"
	"github.com/niksmo/souvenir-shop/internal/core/persist"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/internal/core/state"
	"github.com/niksmo/souvenir-shop/pkg/delay"
	"github.com/niksmo/souvenir-shop/pkg/retry"
)

const (
	DefaultAuthLatency = time.Second
	featuredCount      = 4
	demoUserID         = 1
	demoUserName       = "Demo User"
)

// A Listing is one catalog page. Loading is set until the catalog
// has been fetched once, so an empty page is never mistaken for
// "no results".
type Listing struct {
	domain.Page
	Loading bool
}

// Facets lists the filter choices the catalog offers.
type Facets struct {
	Categories []domain.Category
	Colors     []string
}

type Opt func(*Service) error

func AuthLatencyOpt(d time.Duration) Opt {
	return func(s *Service) error {
		if d < 0 {
			return errors.New("auth latency is negative")
		}
		s.authLatency = d
		return nil
	}
}

func WarmupRetryOpt(c retry.RetryConfig) Opt {
	return func(s *Service) error {
		s.warmupRetry = c
		return nil
	}
}

// A Service is the storefront state model as seen by the
// interaction layer. Outcomes are reported through the toast channel.
type Service struct {
	catalog  port.CatalogSupplier
	orders   port.OrderSubmitter
	history  port.OrderHistory
	cart     *state.Cart
	wishlist *state.Wishlist
	theme    *state.Theme
	toasts   *notify.Channel

	products    hydration.Value[[]domain.Product]
	authLatency time.Duration
	warmupRetry retry.RetryConfig

	mu   sync.Mutex
	user *domain.User
}

func New(
	supplier port.CatalogSupplier,
	orders port.OrderSubmitter,
	history port.OrderHistory,
	stores persist.Stores,
	toasts *notify.Channel,
	opts ...Opt,
) (*Service, error) {
	const op = "service.New"

	s := &Service{
		catalog:     supplier,
		orders:      orders,
		history:     history,
		cart:        stores.Cart,
		wishlist:    stores.Wishlist,
		theme:       stores.Theme,
		toasts:      toasts,
		authLatency: DefaultAuthLatency,
		warmupRetry: retry.RetryConfig{
			MaxAttempts: 5,
			Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
			ShouldRetry: func(err error) bool {
				return !errors.Is(err, context.Canceled)
			},
		},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s, nil
}

// Warmup fetches the full catalog once. Browse reports Loading
// until it succeeds.
func (s *Service) Warmup(ctx context.Context) error {
	const op = "Service.Warmup"
	log := slog.With("op", op)

	products, err := retry.DoWithResult(ctx, s.warmupRetry,
		func() ([]domain.Product, error) {
			return s.catalog.List(ctx, port.ListFilter{})
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.products.Settle(products, len(products) == 0)
	log.Info("catalog is ready", "products", len(products))
	return nil
}

func (s *Service) Browse(cfg domain.FilterConfig, page int) (Listing, error) {
	const op = "Service.Browse"

	products, st := s.products.Get()
	if st == hydration.NotLoaded {
		if err := cfg.Validate(); err != nil {
			return Listing{}, fmt.Errorf("%s: %w", op, err)
		}
		return Listing{
			Page:    domain.Page{Items: []domain.Product{}, Page: max(page, 1)},
			Loading: true,
		}, nil
	}

	p, err := catalog.View(products, cfg, page, catalog.DefaultPageSize)
	if err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}
	return Listing{Page: p}, nil
}

// Featured returns the first catalog products for the home page.
func (s *Service) Featured() (products []domain.Product, loading bool) {
	all, st := s.products.Get()
	if st == hydration.NotLoaded {
		return []domain.Product{}, true
	}
	n := min(featuredCount, len(all))
	out := make([]domain.Product, n)
	for i := range n {
		out[i] = all[i].Clone()
	}
	return out, false
}

func (s *Service) Facets() (Facets, bool) {
	all, st := s.products.Get()
	f := Facets{Categories: domain.Categories, Colors: []string{}}
	if st == hydration.NotLoaded {
		return f, true
	}
	seen := make(map[string]bool)
	for _, p := range all {
		if p.Color != "" && !seen[p.Color] {
			seen[p.Color] = true
			f.Colors = append(f.Colors, p.Color)
		}
	}
	return f, false
}

// Testimonials fetches the home page quotes from the supplier on
// every call, the way the page does on mount.
func (s *Service) Testimonials(
	ctx context.Context,
) ([]domain.Testimonial, error) {
	const op = "Service.Testimonials"

	ts, err := s.catalog.Testimonials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ts, nil
}

func (s *Service) TeamMembers(ctx context.Context) ([]domain.TeamMember, error) {
	const op = "Service.TeamMembers"

	team, err := s.catalog.TeamMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return team, nil
}

// Product reports domain.ErrNotFound for unknown ids.
func (s *Service) Product(ctx context.Context, id int) (domain.Product, error) {
	const op = "Service.Product"

	p, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Service) lookup(ctx context.Context, id int) (domain.Product, error) {
	if products, st := s.products.Get(); st != hydration.NotLoaded {
		for _, p := range products {
			if p.ID == id {
				return p.Clone(), nil
			}
		}
		return domain.Product{}, domain.ErrNotFound
	}

	p, ok, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) AddToCart(
	ctx context.Context, id, qty int,
) (state.CartView, error) {
	const op = "Service.AddToCart"

	if qty < 1 {
		var verr domain.ValidationError
		verr.Add("quantity", "Quantity must be at least 1")
		return state.CartView{}, fmt.Errorf("%s: %w", op, verr)
	}

	p, err := s.lookup(ctx, id)
	if err != nil {
		return state.CartView{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cart.AddItem(p, qty)
	if qty == 1 {
		s.toasts.Success(p.Name + " added to cart!")
	} else {
		s.toasts.Success(fmt.Sprintf("%d x %s added to cart!", qty, p.Name))
	}

	view, _ := s.cart.View()
	return view, nil
}

func (s *Service) UpdateCartQuantity(id, qty int) state.CartView {
	s.cart.UpdateQuantity(id, qty)
	view, _ := s.cart.View()
	return view
}

func (s *Service) RemoveFromCart(id int) state.CartView {
	s.cart.RemoveItem(id)
	view, _ := s.cart.View()
	return view
}

func (s *Service) ClearCart() {
	s.cart.Clear()
}

func (s *Service) Cart() (state.CartView, hydration.State) {
	return s.cart.View()
}

// ToggleWishlist reports whether the product is now saved.
func (s *Service) ToggleWishlist(ctx context.Context, id int) (bool, error) {
	const op = "Service.ToggleWishlist"

	p, err := s.lookup(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	added := s.wishlist.Toggle(p)
	if added {
		s.toasts.Success(p.Name + " added to wishlist!")
	} else {
		s.toasts.Info(p.Name + " removed from wishlist.")
	}
	return added, nil
}

func (s *Service) RemoveFromWishlist(id int) {
	s.wishlist.RemoveItem(id)
}

func (s *Service) Wishlist() ([]domain.WishlistEntry, hydration.State) {
	return s.wishlist.Items()
}

// MoveToCart takes the entry out of the wishlist and adds one unit
// of it to the cart.
func (s *Service) MoveToCart(id int) error {
	const op = "Service.MoveToCart"

	entry, ok := s.wishlist.Take(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	s.cart.AddItem(entry.Product, 1)
	s.toasts.Success(entry.Name + " moved to cart!")
	return nil
}

// Checkout submits the cart as an order. The ordered lines leave the
// cart only after the order is accepted.
func (s *Service) Checkout(
	ctx context.Context, info domain.ShippingInfo,
) (domain.OrderReceipt, error) {
	const op = "Service.Checkout"
	log := slog.With("op", op)

	if err := info.Validate(); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("%s: %w", op, err)
	}

	view, _ := s.cart.View()
	if len(view.Lines) == 0 {
		return domain.OrderReceipt{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	order := domain.Order{
		Shipping: info,
		Items:    view.Lines,
		Total:    view.TotalPrice,
	}

	receipt, err := s.orders.SubmitOrder(ctx, order)
	if err != nil {
		log.Error("failed to submit order", "err", err)
		s.toasts.Error("An unexpected error occurred.")
		return domain.OrderReceipt{}, fmt.Errorf("%s: %w", op, err)
	}
	if !receipt.Success {
		s.toasts.Error("There was an error placing your order.")
		return receipt, fmt.Errorf("%s: %w", op, domain.ErrOrderRejected)
	}

	s.cart.RemoveOrdered(order.Items)
	s.toasts.Success("Your order has been placed!")
	log.Info("order placed", "orderID", receipt.OrderID)
	return receipt, nil
}

// Subscribe signs the email up for the newsletter.
func (s *Service) Subscribe(email string) error {
	const op = "Service.Subscribe"

	if !domain.ValidEmail(email) {
		s.toasts.Error("Please enter a valid email.")
		var verr domain.ValidationError
		verr.Add("email", "Valid email address is required")
		return fmt.Errorf("%s: %w", op, verr)
	}
	s.toasts.Success("Thank you for subscribing!")
	return nil
}

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (m ContactMessage) Validate() error {
	var verr domain.ValidationError
	if strings.TrimSpace(m.Name) == "" {
		verr.Add("name", "Name is required.")
	}
	if !domain.ValidEmail(m.Email) {
		verr.Add("email", "Valid email is required.")
	}
	if strings.TrimSpace(m.Message) == "" {
		verr.Add("message", "Message is required.")
	}
	return verr.OrNil()
}

func (s *Service) Contact(m ContactMessage) error {
	const op = "Service.Contact"

	if err := m.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("contact message received", "op", op, "subject", m.Subject)
	s.toasts.Success("Your message has been sent!")
	return nil
}

func (s *Service) ToggleTheme() domain.Theme {
	return s.theme.Toggle()
}

func (s *Service) Theme() (domain.Theme, hydration.State) {
	return s.theme.Get()
}

func (s *Service) Login(
	ctx context.Context, email, password string,
) (domain.User, error) {
	const op = "Service.Login"

	var verr domain.ValidationError
	if strings.TrimSpace(email) == "" {
		verr.Add("email", "This field is required")
	}
	if password == "" {
		verr.Add("password", "This field is required")
	}
	if err := verr.OrNil(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.signIn(ctx, demoUserName, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	s.toasts.Success("Welcome back!")
	return u, nil
}

func (s *Service) Register(
	ctx context.Context, name, email, password string,
) (domain.User, error) {
	const op = "Service.Register"

	var verr domain.ValidationError
	if strings.TrimSpace(name) == "" {
		verr.Add("fullName", "This field is required")
	}
	if strings.TrimSpace(email) == "" {
		verr.Add("email", "This field is required")
	}
	if password == "" {
		verr.Add("password", "This field is required")
	}
	if err := verr.OrNil(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.signIn(ctx, name, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	s.toasts.Success("Account created successfully!")
	return u, nil
}

func (s *Service) signIn(
	ctx context.Context, name, email string,
) (domain.User, error) {
	if err := delay.Wait(ctx, s.authLatency); err != nil {
		return domain.User{}, err
	}

	u := domain.User{ID: demoUserID, Name: name, Email: strings.TrimSpace(email)}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

func (s *Service) ForgotPassword(email string) error {
	const op = "Service.ForgotPassword"

	if strings.TrimSpace(email) == "" {
		var verr domain.ValidationError
		verr.Add("email", "This field is required")
		return fmt.Errorf("%s: %w", op, verr)
	}
	s.toasts.Info("Password reset link sent to your email (mock).")
	return nil
}

func (s *Service) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Service) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Orders returns the signed-in user's orders, newest first.
func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	const op = "Service.Orders"

	u, ok := s.CurrentUser()
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}

	orders, err := s.history.UserOrders(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *Service) Toasts() []domain.Toast {
	return s.toasts.List()
}

func (s *Service) DismissToast(id int64) {
	s.toasts.Remove(id)
}
