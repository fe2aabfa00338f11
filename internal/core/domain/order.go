package domain

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
)

// ShippingInfo holds the checkout form fields.
type ShippingInfo struct {
	FullName   string
	Email      string
	Address    string
	City       string
	Country    string
	CardNumber string
	ExpiryDate string
	CVV        string
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryDateRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
)

func (s ShippingInfo) Validate() error {
	var verr ValidationError

	required := []struct {
		field, value string
	}{
		{"fullName", s.FullName},
		{"email", s.Email},
		{"address", s.Address},
		{"city", s.City},
		{"country", s.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.Add(r.field, "This field is required")
		}
	}
	if s.Email != "" && !ValidEmail(s.Email) {
		verr.Add("email", "Valid email address is required")
	}
	if !cardNumberRe.MatchString(s.CardNumber) {
		verr.Add("cardNumber", "Valid 16-digit card number is required")
	}
	if !expiryDateRe.MatchString(s.ExpiryDate) {
		verr.Add("expiryDate", "Valid MM/YY is required")
	}
	if !cvvRe.MatchString(s.CVV) {
		verr.Add("cvv", "Valid 3-digit CVV is required")
	}

	return verr.OrNil()
}

// ValidEmail is the storefront's loose email check.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.Contains(email, "@")
}

// An Order is the payload handed to the order submitter.
type Order struct {
	ID       string
	Date     time.Time
	Shipping ShippingInfo
	Items    []CartLine
	Total    decimal.Decimal
	Status   OrderStatus
}

type OrderReceipt struct {
	Success bool
	OrderID string
}

type User struct {
	ID    int
	Name  string
	Email string
}

// NewOrderID returns a storefront order number, "ES" and five digits.
func NewOrderID() string {
	return fmt.Sprintf("ES%05d", 10000+rand.IntN(90000))
}
