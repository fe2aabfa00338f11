package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

// Card data never leaves the storefront, so it has no field here.
const OrderSchemaTextV1 = `{
	"type": "record",
	"namespace": "shop.orders",
	"name": "order",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "placed_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "full_name", "type": "string"},
		{"name": "email", "type": "string"},
		{"name": "address", "type": "string"},
		{"name": "city", "type": "string"},
		{"name": "country", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_line",
				"fields": [
					{"name": "product_id", "type": "long"},
					{"name": "name", "type": "string"},
					{"name": "price", "type": "string"},
					{"name": "quantity", "type": "int"}
				]
			}
		}},
		{"name": "total", "type": "string"},
		{"name": "status", "type": "string"}
	]
}`

type (
	// Prices travel as decimal strings.
	OrderV1 struct {
		OrderID  string        `avro:"order_id" json:"order_id"`
		PlacedAt time.Time     `avro:"placed_at" json:"placed_at"`
		FullName string        `avro:"full_name" json:"full_name"`
		Email    string        `avro:"email" json:"email"`
		Address  string        `avro:"address" json:"address"`
		City     string        `avro:"city" json:"city"`
		Country  string        `avro:"country" json:"country"`
		Items    []OrderLineV1 `avro:"items" json:"items"`
		Total    string        `avro:"total" json:"total"`
		Status   string        `avro:"status" json:"status"`
	}

	OrderLineV1 struct {
		ProductID int64  `avro:"product_id" json:"product_id"`
		Name      string `avro:"name" json:"name"`
		Price     string `avro:"price" json:"price"`
		Quantity  int    `avro:"quantity" json:"quantity"`
	}
)

// OrderV1Avro panics on a malformed schema text.
func OrderV1Avro() avro.Schema {
	return avro.MustParse(OrderSchemaTextV1)
}
