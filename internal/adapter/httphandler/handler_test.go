package httphandler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/souvenir-shop/internal/adapter/checkout"
	"github.com/niksmo/souvenir-shop/internal/adapter/memcatalog"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/notify"
	"github.com/niksmo/souvenir-shop/internal/core/persist"
	"github.com/niksmo/souvenir-shop/internal/core/service"
	"github.com/niksmo/souvenir-shop/internal/core/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testShop struct {
	svc     *service.Service
	stores  persist.Stores
	handler http.Handler
}

func newTestShop(t *testing.T) testShop {
	t.Helper()

	catalog, err := memcatalog.New(memcatalog.LatencyOpt(0))
	require.NoError(t, err)
	orders, err := checkout.NewMockSubmitter(checkout.LatencyOpt(0))
	require.NoError(t, err)

	toasts := notify.New(notify.TTLOpt(time.Minute))
	t.Cleanup(toasts.Close)

	stores := persist.Stores{
		Cart:     state.NewCart(),
		Wishlist: state.NewWishlist(),
		Theme:    state.NewTheme(),
	}
	svc, err := service.New(
		catalog, orders, orders, stores, toasts, service.AuthLatencyOpt(0),
	)
	require.NoError(t, err)

	return testShop{svc: svc, stores: stores, handler: NewHandler(svc)}
}

func (s testShop) ready(t *testing.T) {
	t.Helper()
	s.stores.Cart.Restore(nil)
	s.stores.Wishlist.Restore(nil)
	s.stores.Theme.Restore(domain.ThemeLight)
	require.NoError(t, s.svc.Warmup(t.Context()))
}

func (s testShop) do(
	t *testing.T, method, target, body string,
) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCartBeforeHydration(t *testing.T) {
	s := newTestShop(t)

	w := s.do(t, http.MethodGet, "/v1/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[Cart](t, w)
	assert.False(t, cart.Hydrated)
	assert.Empty(t, cart.Items)

	s.ready(t)

	w = s.do(t, http.MethodGet, "/v1/cart", "")
	cart = decode[Cart](t, w)
	assert.True(t, cart.Hydrated)
}

func TestProductsLoadingThenLoaded(t *testing.T) {
	s := newTestShop(t)

	w := s.do(t, http.MethodGet, "/v1/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[ProductPage](t, w)
	assert.True(t, page.Loading)
	assert.Empty(t, page.Items)

	s.ready(t)

	w = s.do(t, http.MethodGet, "/v1/products?sort=price-desc&page=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[ProductPage](t, w)
	assert.False(t, page.Loading)
	assert.Len(t, page.Items, 9)
	assert.Equal(t, 2, page.TotalPages)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].Price.GreaterThan(page.Items[i-1].Price))
	}

	w = s.do(t, http.MethodGet, "/v1/products?category=Travel+Souvenirs&maxPrice=10000", "")
	page = decode[ProductPage](t, w)
	require.NotEmpty(t, page.Items)
	for _, p := range page.Items {
		assert.Equal(t, string(domain.CategoryTravelSouvenirs), p.Category)
		assert.True(t, p.Price.LessThanOrEqual(decimal.NewFromInt(10000)), p.Name)
	}

	w = s.do(t, http.MethodGet, "/v1/products?color=Purple", "")
	page = decode[ProductPage](t, w)
	assert.False(t, page.Loading)
	assert.Zero(t, page.TotalCount)
	assert.NotNil(t, page.Items)
}

func TestProductsBadQuery(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	for _, target := range []string{
		"/v1/products?sort=rating",
		"/v1/products?maxPrice=cheap",
		"/v1/products?page=two",
		"/v1/products?category=Toys",
	} {
		w := s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestProductsPageFarBeyondLast(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	w := s.do(t, http.MethodGet, "/v1/products?page=2049638230412172402", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[ProductPage](t, w)
	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.TotalPages)
}

func TestStorefrontContent(t *testing.T) {
	s := newTestShop(t)

	w := s.do(t, http.MethodGet, "/v1/testimonials", "")
	require.Equal(t, http.StatusOK, w.Code)
	testimonials := decode[[]Testimonial](t, w)
	require.NotEmpty(t, testimonials)
	for _, ts := range testimonials {
		assert.NotEmpty(t, ts.Name)
		assert.NotEmpty(t, ts.Quote)
	}

	w = s.do(t, http.MethodGet, "/v1/team", "")
	require.Equal(t, http.StatusOK, w.Code)
	team := decode[[]TeamMember](t, w)
	require.NotEmpty(t, team)
	assert.NotEmpty(t, team[0].Role)
}

func TestProductByID(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	w := s.do(t, http.MethodGet, "/v1/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[Product](t, w)
	assert.Equal(t, 1, p.ID)
	assert.NotEmpty(t, p.Images)

	w = s.do(t, http.MethodGet, "/v1/products/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/v1/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/products/featured", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[Featured](t, w).Items, 4)

	w = s.do(t, http.MethodGet, "/v1/products/facets", "")
	require.Equal(t, http.StatusOK, w.Code)
	facets := decode[Facets](t, w)
	assert.Len(t, facets.Categories, 4)
	assert.NotEmpty(t, facets.Colors)
}

func TestCartFlow(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	w := s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":2,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[Cart](t, w)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 3, cart.TotalItems)

	w = s.do(t, http.MethodPatch, "/v1/cart/items/2", `{"quantity":5}`)
	cart = decode[Cart](t, w)
	assert.Equal(t, 5, cart.TotalItems)

	w = s.do(t, http.MethodPatch, "/v1/cart/items/2", `{"quantity":0}`)
	cart = decode[Cart](t, w)
	assert.Empty(t, cart.Items)

	w = s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":999}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":1,"quantity":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/v1/cart/items/1", "")
	assert.Empty(t, decode[Cart](t, w).Items)

	w = s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/v1/cart", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/v1/cart", "")
	assert.Empty(t, decode[Cart](t, w).Items)
}

func TestWishlistFlow(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	w := s.do(t, http.MethodPost, "/v1/wishlist/3/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[WishlistToggle](t, w).InWishlist)

	w = s.do(t, http.MethodGet, "/v1/wishlist", "")
	list := decode[Wishlist](t, w)
	assert.True(t, list.Hydrated)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 3, list.Items[0].ID)

	w = s.do(t, http.MethodPost, "/v1/wishlist/3/move-to-cart", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodPost, "/v1/wishlist/3/move-to-cart", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/v1/cart", "")
	assert.Equal(t, 1, decode[Cart](t, w).TotalItems)

	s.do(t, http.MethodPost, "/v1/wishlist/4/toggle", "")
	w = s.do(t, http.MethodDelete, "/v1/wishlist/4", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/v1/wishlist", "")
	assert.Empty(t, decode[Wishlist](t, w).Items)
}

const validShippingJSON = `{
	"fullName": "Ama Mensah",
	"email": "ama@example.com",
	"address": "12 Ring Road",
	"city": "Accra",
	"country": "Ghana",
	"cardNumber": "4111111111111111",
	"expiryDate": "09/27",
	"cvv": "123"
}`

func TestCheckoutAndOrders(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	w := s.do(t, http.MethodPost, "/v1/checkout", validShippingJSON)
	assert.Equal(t, http.StatusConflict, w.Code)

	s.do(t, http.MethodPost, "/v1/cart/items", `{"productId":2,"quantity":2}`)

	w = s.do(t, http.MethodPost, "/v1/checkout", `{"email":"ama"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[ErrorBody](t, w)
	assert.NotEmpty(t, body.Fields)

	w = s.do(t, http.MethodGet, "/v1/cart", "")
	assert.Equal(t, 2, decode[Cart](t, w).TotalItems)

	w = s.do(t, http.MethodPost, "/v1/checkout", validShippingJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	receipt := decode[Receipt](t, w)
	assert.True(t, receipt.Success)
	assert.Regexp(t, `^ES\d{5}$`, receipt.OrderID)

	w = s.do(t, http.MethodGet, "/v1/cart", "")
	assert.Empty(t, decode[Cart](t, w).Items)

	w = s.do(t, http.MethodGet, "/v1/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/v1/auth/login", `{"email":"ama@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ama@example.com", decode[User](t, w).Email)

	w = s.do(t, http.MethodGet, "/v1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[[]Order](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, receipt.OrderID, orders[0].ID)
	assert.Equal(t, "Processing", orders[0].Status)
}

func TestAuth(t *testing.T) {
	s := newTestShop(t)

	w := s.do(t, http.MethodGet, "/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/v1/auth/register", `{"fullName":"Kofi","email":"k@e.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/v1/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, User{ID: 1, Name: "Kofi", Email: "k@e.com"}, decode[User](t, w))

	w = s.do(t, http.MethodPost, "/v1/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/v1/auth/login", `{"email":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/v1/auth/forgot", `{"email":"k@e.com"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestToastsAndTheme(t *testing.T) {
	s := newTestShop(t)
	s.ready(t)

	w := s.do(t, http.MethodPost, "/v1/newsletter", `{"email":"bad"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = s.do(t, http.MethodPost, "/v1/newsletter", `{"email":"ama@example.com"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodPost, "/v1/contact", `{"name":"Ama","email":"ama@example.com","message":"Hi"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/v1/toasts", "")
	toasts := decode[[]Toast](t, w)
	require.Len(t, toasts, 3)
	assert.Equal(t, "Please enter a valid email.", toasts[0].Message)
	assert.Equal(t, "error", toasts[0].Severity)
	assert.Equal(t, "Thank you for subscribing!", toasts[1].Message)

	w = s.do(t, http.MethodDelete, "/v1/toasts/"+itoa(toasts[0].ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, "/v1/toasts/"+itoa(toasts[0].ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/v1/toasts", "")
	assert.Len(t, decode[[]Toast](t, w), 2)

	w = s.do(t, http.MethodGet, "/v1/theme", "")
	assert.Equal(t, Theme{Theme: "light", Hydrated: true}, decode[Theme](t, w))
	w = s.do(t, http.MethodPost, "/v1/theme/toggle", "")
	assert.Equal(t, "dark", decode[Theme](t, w).Theme)
}

func TestAllowJSON(t *testing.T) {
	s := newTestShop(t)

	r := httptest.NewRequest(http.MethodPost, "/v1/newsletter", strings.NewReader("email=a@b.c"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/v1/newsletter", strings.NewReader(`{"email":"a@b.c"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/v1/newsletter", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
