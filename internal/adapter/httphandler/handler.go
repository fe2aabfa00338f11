package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
	"github.com/niksmo/souvenir-shop/internal/core/service"
	"github.com/niksmo/souvenir-shop/internal/core/state"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A Storefront is the state model behind the HTTP interaction layer.
type Storefront interface {
	Browse(cfg domain.FilterConfig, page int) (service.Listing, error)
	Featured() ([]domain.Product, bool)
	Facets() (service.Facets, bool)
	Product(ctx context.Context, id int) (domain.Product, error)
	Testimonials(ctx context.Context) ([]domain.Testimonial, error)
	TeamMembers(ctx context.Context) ([]domain.TeamMember, error)

	AddToCart(ctx context.Context, id, qty int) (state.CartView, error)
	UpdateCartQuantity(id, qty int) state.CartView
	RemoveFromCart(id int) state.CartView
	ClearCart()
	Cart() (state.CartView, hydration.State)

	ToggleWishlist(ctx context.Context, id int) (bool, error)
	RemoveFromWishlist(id int)
	Wishlist() ([]domain.WishlistEntry, hydration.State)
	MoveToCart(id int) error

	Checkout(ctx context.Context, info domain.ShippingInfo) (domain.OrderReceipt, error)
	Orders(ctx context.Context) ([]domain.Order, error)

	Subscribe(email string) error
	Contact(m service.ContactMessage) error
	ToggleTheme() domain.Theme
	Theme() (domain.Theme, hydration.State)

	Login(ctx context.Context, email, password string) (domain.User, error)
	Register(ctx context.Context, name, email, password string) (domain.User, error)
	ForgotPassword(email string) error
	Logout()
	CurrentUser() (domain.User, bool)

	Toasts() []domain.Toast
	DismissToast(id int64)
}

// GET v1/products?category=&maxPrice=&color=&sort=&page= (200 OK, 400 Bad request)
// GET v1/products/featured, GET v1/products/facets (200 OK)
// GET v1/products/{id} (200 OK, 404 Not found)
type ProductsHandler struct {
	shop Storefront
}

func RegisterProducts(mux *http.ServeMux, shop Storefront) {
	h := ProductsHandler{shop}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/featured", h.GetFeatured)
	mux.HandleFunc("GET /v1/products/facets", h.GetFacets)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	cfg, page, err := parseFilter(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	listing, err := h.shop.Browse(cfg, page)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromListing(listing))
}

func (h ProductsHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetFeatured"
	log := slog.With("op", op)

	products, loading := h.shop.Featured()
	writeJSON(w, log, http.StatusOK, Featured{
		Items:   fromProducts(products),
		Loading: loading,
	})
}

func (h ProductsHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetFacets"
	log := slog.With("op", op)

	f, loading := h.shop.Facets()
	categories := make([]string, len(f.Categories))
	for i, c := range f.Categories {
		categories[i] = string(c)
	}
	writeJSON(w, log, http.StatusOK, Facets{
		Categories: categories,
		Colors:     f.Colors,
		Loading:    loading,
	})
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.shop.Product(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromProduct(p))
}

func parseFilter(r *http.Request) (domain.FilterConfig, int, error) {
	q := r.URL.Query()
	cfg := domain.DefaultFilter()

	cfg.Category = domain.Category(q.Get("category"))
	cfg.Color = q.Get("color")
	if v := q.Get("sort"); v != "" {
		cfg.Sort = domain.SortKey(v)
	}
	if v := q.Get("maxPrice"); v != "" {
		maxPrice, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, 0, domain.ErrInvalidFilter
		}
		cfg.MaxPrice = maxPrice
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, 0, domain.ErrInvalidFilter
		}
		page = n
	}
	return cfg, page, nil
}

// GET|DELETE v1/cart (200 OK, 204 No content)
// POST v1/cart/items JSON {"productId", "quantity"} (200 OK, 400, 404, 422)
// PATCH v1/cart/items/{id} JSON {"quantity"} (200 OK)
// DELETE v1/cart/items/{id} (200 OK)
type CartHandler struct {
	shop Storefront
}

func RegisterCart(mux *http.ServeMux, shop Storefront) {
	h := CartHandler{shop}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("DELETE /v1/cart", h.ClearCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("PATCH /v1/cart/items/{id}", h.PatchItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.DeleteItem)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	log := slog.With("op", op)

	view, st := h.shop.Cart()
	writeJSON(w, log, http.StatusOK, fromCart(view, st))
}

func (h CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.shop.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req AddCartItem
	if !decodeJSON(w, r, log, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.shop.AddToCart(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromCart(view, hydration.Loaded))
}

func (h CartHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PatchItem"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateCartItem
	if !decodeJSON(w, r, log, &req) {
		return
	}

	view := h.shop.UpdateCartQuantity(id, req.Quantity)
	writeJSON(w, log, http.StatusOK, fromCart(view, hydration.Loaded))
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view := h.shop.RemoveFromCart(id)
	writeJSON(w, log, http.StatusOK, fromCart(view, hydration.Loaded))
}

// GET v1/wishlist (200 OK)
// POST v1/wishlist/{id}/toggle (200 OK, 404 Not found)
// POST v1/wishlist/{id}/move-to-cart (204 No content, 404 Not found)
// DELETE v1/wishlist/{id} (204 No content)
type WishlistHandler struct {
	shop Storefront
}

func RegisterWishlist(mux *http.ServeMux, shop Storefront) {
	h := WishlistHandler{shop}
	mux.HandleFunc("GET /v1/wishlist", h.GetWishlist)
	mux.HandleFunc("POST /v1/wishlist/{id}/toggle", h.Toggle)
	mux.HandleFunc("POST /v1/wishlist/{id}/move-to-cart", h.MoveToCart)
	mux.HandleFunc("DELETE /v1/wishlist/{id}", h.Delete)
}

func (h WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.GetWishlist"
	log := slog.With("op", op)

	entries, st := h.shop.Wishlist()
	writeJSON(w, log, http.StatusOK, fromWishlist(entries, st))
}

func (h WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.Toggle"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	added, err := h.shop.ToggleWishlist(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, WishlistToggle{InWishlist: added})
}

func (h WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	const op = "WishlistHandler.MoveToCart"
	log := slog.With("op", op)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.shop.MoveToCart(id); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.shop.RemoveFromWishlist(id)
	w.WriteHeader(http.StatusNoContent)
}

// GET v1/testimonials, GET v1/team (200 OK)
type ContentHandler struct {
	shop Storefront
}

func RegisterContent(mux *http.ServeMux, shop Storefront) {
	h := ContentHandler{shop}
	mux.HandleFunc("GET /v1/testimonials", h.GetTestimonials)
	mux.HandleFunc("GET /v1/team", h.GetTeam)
}

func (h ContentHandler) GetTestimonials(w http.ResponseWriter, r *http.Request) {
	const op = "ContentHandler.GetTestimonials"
	log := slog.With("op", op)

	ts, err := h.shop.Testimonials(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromTestimonials(ts))
}

func (h ContentHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "ContentHandler.GetTeam"
	log := slog.With("op", op)

	team, err := h.shop.TeamMembers(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromTeam(team))
}

// POST v1/checkout JSON [shipping form] (201 Created, 409, 422, 502)
// GET v1/orders (200 OK, 401 Unauthorized)
type OrdersHandler struct {
	shop Storefront
}

func RegisterOrders(mux *http.ServeMux, shop Storefront) {
	h := OrdersHandler{shop}
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
	mux.HandleFunc("GET /v1/orders", h.GetOrders)
}

func (h OrdersHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PostCheckout"
	log := slog.With("op", op)

	var req Shipping
	if !decodeJSON(w, r, log, &req) {
		return
	}

	receipt, err := h.shop.Checkout(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, Receipt{
		Success: receipt.Success,
		OrderID: receipt.OrderID,
	})
}

func (h OrdersHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetOrders"
	log := slog.With("op", op)

	orders, err := h.shop.Orders(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromOrders(orders))
}

// GET v1/toasts (200 OK), DELETE v1/toasts/{id} (204 No content)
// GET v1/theme (200 OK), POST v1/theme/toggle (200 OK)
// POST v1/newsletter JSON {"email"} (204 No content, 422)
// POST v1/contact JSON {"name", "email", "subject", "message"} (204 No content, 422)
type UIHandler struct {
	shop Storefront
}

func RegisterUI(mux *http.ServeMux, shop Storefront) {
	h := UIHandler{shop}
	mux.HandleFunc("GET /v1/toasts", h.GetToasts)
	mux.HandleFunc("DELETE /v1/toasts/{id}", h.DeleteToast)
	mux.HandleFunc("GET /v1/theme", h.GetTheme)
	mux.HandleFunc("POST /v1/theme/toggle", h.ToggleTheme)
	mux.HandleFunc("POST /v1/newsletter", h.PostNewsletter)
	mux.HandleFunc("POST /v1/contact", h.PostContact)
}

func (h UIHandler) GetToasts(w http.ResponseWriter, r *http.Request) {
	const op = "UIHandler.GetToasts"
	log := slog.With("op", op)

	writeJSON(w, log, http.StatusOK, fromToasts(h.shop.Toasts()))
}

func (h UIHandler) DeleteToast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid toast id", http.StatusBadRequest)
		return
	}
	h.shop.DismissToast(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h UIHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	const op = "UIHandler.GetTheme"
	log := slog.With("op", op)

	theme, st := h.shop.Theme()
	writeJSON(w, log, http.StatusOK, Theme{
		Theme:    string(theme),
		Hydrated: st != hydration.NotLoaded,
	})
}

func (h UIHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	const op = "UIHandler.ToggleTheme"
	log := slog.With("op", op)

	theme := h.shop.ToggleTheme()
	writeJSON(w, log, http.StatusOK, Theme{Theme: string(theme), Hydrated: true})
}

func (h UIHandler) PostNewsletter(w http.ResponseWriter, r *http.Request) {
	const op = "UIHandler.PostNewsletter"
	log := slog.With("op", op)

	var req Newsletter
	if !decodeJSON(w, r, log, &req) {
		return
	}
	if err := h.shop.Subscribe(req.Email); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h UIHandler) PostContact(w http.ResponseWriter, r *http.Request) {
	const op = "UIHandler.PostContact"
	log := slog.With("op", op)

	var req Contact
	if !decodeJSON(w, r, log, &req) {
		return
	}
	err := h.shop.Contact(service.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST v1/auth/login JSON {"email", "password"} (200 OK, 422)
// POST v1/auth/register JSON {"fullName", "email", "password"} (201 Created, 422)
// POST v1/auth/forgot JSON {"email"} (204 No content, 422)
// POST v1/auth/logout (204 No content)
// GET v1/auth/me (200 OK, 401 Unauthorized)
type AuthHandler struct {
	shop Storefront
}

func RegisterAuth(mux *http.ServeMux, shop Storefront) {
	h := AuthHandler{shop}
	mux.HandleFunc("POST /v1/auth/login", h.Login)
	mux.HandleFunc("POST /v1/auth/register", h.Register)
	mux.HandleFunc("POST /v1/auth/forgot", h.Forgot)
	mux.HandleFunc("POST /v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /v1/auth/me", h.Me)
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Login"
	log := slog.With("op", op)

	var req Credentials
	if !decodeJSON(w, r, log, &req) {
		return
	}
	u, err := h.shop.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromUser(u))
}

func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Register"
	log := slog.With("op", op)

	var req Credentials
	if !decodeJSON(w, r, log, &req) {
		return
	}
	u, err := h.shop.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, fromUser(u))
}

func (h AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Forgot"
	log := slog.With("op", op)

	var req Credentials
	if !decodeJSON(w, r, log, &req) {
		return
	}
	if err := h.shop.ForgotPassword(req.Email); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.shop.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Me"
	log := slog.With("op", op)

	u, ok := h.shop.CurrentUser()
	if !ok {
		writeError(w, log, domain.ErrUnauthenticated)
		return
	}
	writeJSON(w, log, http.StatusOK, fromUser(u))
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeJSON(
	w http.ResponseWriter, r *http.Request, log *slog.Logger, v any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		log.Error("failed to encode response", "err", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		body := ErrorBody{Error: "validation failed"}
		for _, f := range verr.Fields {
			body.Fields = append(body.Fields, FieldError(f))
		}
		writeJSON(w, log, http.StatusUnprocessableEntity, body)
		return
	}

	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidPageSize):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyCart):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOrderRejected):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	default:
		log.Error("request failed", "err", err)
	}

	writeJSON(w, log, status, ErrorBody{Error: http.StatusText(status)})
}
