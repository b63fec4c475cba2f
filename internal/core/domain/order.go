package domain

import "time"

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone"    validate:"required,max=20"`
	Street   string `json:"street"   validate:"required"`
	City     string `json:"city"     validate:"required"`
	State    string `json:"state"    validate:"required"`
	ZipCode  string `json:"zipCode"  validate:"required"`
	Country  string `json:"country"  validate:"required"`
}

// OrderItem is one submitted line: product id, quantity and the unit price the
// buyer saw.
type OrderItem struct {
	ProductID string  `json:"product"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderRequest is the payload of POST /orders.
type OrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []OrderItem     `json:"items"`
	Total           float64         `json:"total"`
}

// Order is a placed order as reported by the backend.
type Order struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	Total           float64         `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}
