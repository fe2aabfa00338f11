package httphandler

import (
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
	"github.com/niksmo/souvenir-shop/internal/core/service"
	"github.com/niksmo/souvenir-shop/internal/core/state"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
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

	ProductPage struct {
		Items      []Product `json:"items"`
		TotalCount int       `json:"totalCount"`
		TotalPages int       `json:"totalPages"`
		Page       int       `json:"page"`
		Loading    bool      `json:"loading"`
	}

	Featured struct {
		Items   []Product `json:"items"`
		Loading bool      `json:"loading"`
	}

	Facets struct {
		Categories []string `json:"categories"`
		Colors     []string `json:"colors"`
		Loading    bool     `json:"loading"`
	}
)

type (
	CartLine struct {
		Product
		Quantity int             `json:"quantity"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}

	// Hydrated is false until the persisted cart is restored.
	// Items are empty then and must not be read as an empty cart.
	Cart struct {
		Hydrated   bool            `json:"hydrated"`
		Items      []CartLine      `json:"items"`
		TotalItems int             `json:"totalItems"`
		TotalPrice decimal.Decimal `json:"totalPrice"`
	}

	AddCartItem struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
	}

	UpdateCartItem struct {
		Quantity int `json:"quantity"`
	}

	Wishlist struct {
		Hydrated bool      `json:"hydrated"`
		Items    []Product `json:"items"`
	}

	WishlistToggle struct {
		InWishlist bool `json:"inWishlist"`
	}
)

type (
	Shipping struct {
		FullName   string `json:"fullName"`
		Email      string `json:"email"`
		Address    string `json:"address"`
		City       string `json:"city"`
		Country    string `json:"country"`
		CardNumber string `json:"cardNumber"`
		ExpiryDate string `json:"expiryDate"`
		CVV        string `json:"cvv"`
	}

	Receipt struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
	}

	Order struct {
		ID     string          `json:"id"`
		Date   time.Time       `json:"date"`
		Items  []CartLine      `json:"items"`
		Total  decimal.Decimal `json:"total"`
		Status string          `json:"status"`
	}
)

type (
	Testimonial struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Location string `json:"location"`
		Quote    string `json:"quote"`
		Avatar   string `json:"avatar"`
	}

	TeamMember struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Role  string `json:"role"`
		Bio   string `json:"bio"`
		Image string `json:"image"`
	}
)

type (
	Toast struct {
		ID       int64  `json:"id"`
		Message  string `json:"message"`
		Severity string `json:"type"`
	}

	Theme struct {
		Theme    string `json:"theme"`
		Hydrated bool   `json:"hydrated"`
	}

	Newsletter struct {
		Email string `json:"email"`
	}

	Contact struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}

	Credentials struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	User struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	ErrorBody struct {
		Error  string       `json:"error"`
		Fields []FieldError `json:"fields,omitempty"`
	}
)

func fromProduct(p domain.Product) Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		Color:       p.Color,
		Images:      images,
		Video:       p.Video,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
}

func fromProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = fromProduct(p)
	}
	return out
}

func fromListing(l service.Listing) ProductPage {
	return ProductPage{
		Items:      fromProducts(l.Items),
		TotalCount: l.TotalCount,
		TotalPages: l.TotalPages,
		Page:       l.Page.Page,
		Loading:    l.Loading,
	}
}

func fromLines(lines []domain.CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		out[i] = CartLine{
			Product:  fromProduct(l.Product),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		}
	}
	return out
}

func fromCart(v state.CartView, st hydration.State) Cart {
	return Cart{
		Hydrated:   st != hydration.NotLoaded,
		Items:      fromLines(v.Lines),
		TotalItems: v.TotalItems,
		TotalPrice: v.TotalPrice,
	}
}

func fromWishlist(entries []domain.WishlistEntry, st hydration.State) Wishlist {
	items := make([]Product, len(entries))
	for i, e := range entries {
		items[i] = fromProduct(e.Product)
	}
	return Wishlist{Hydrated: st != hydration.NotLoaded, Items: items}
}

func fromOrders(orders []domain.Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = Order{
			ID:     o.ID,
			Date:   o.Date,
			Items:  fromLines(o.Items),
			Total:  o.Total,
			Status: string(o.Status),
		}
	}
	return out
}

func fromTestimonials(ts []domain.Testimonial) []Testimonial {
	out := make([]Testimonial, len(ts))
	for i, t := range ts {
		out[i] = Testimonial(t)
	}
	return out
}

func fromTeam(team []domain.TeamMember) []TeamMember {
	out := make([]TeamMember, len(team))
	for i, m := range team {
		out[i] = TeamMember(m)
	}
	return out
}

func fromToasts(ts []domain.Toast) []Toast {
	out := make([]Toast, len(ts))
	for i, t := range ts {
		out[i] = Toast{ID: t.ID, Message: t.Message, Severity: string(t.Severity)}
	}
	return out
}

func fromUser(u domain.User) User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s Shipping) toDomain() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   s.FullName,
		Email:      s.Email,
		Address:    s.Address,
		City:       s.City,
		Country:    s.Country,
		CardNumber: s.CardNumber,
		ExpiryDate: s.ExpiryDate,
		CVV:        s.CVV,
	}
}
