package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// envelope is the {success, message} wrapper every backend answer carries.
type envelope struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e envelope) failed() (bool, string) {
	return e.Success != nil && !*e.Success, e.Message
}

// wireUser accepts both _id and id.
type wireUser struct {
	MongoID      string `json:"_id"`
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profileImage"`
}

func (w wireUser) toDomain() domain.UserProfile {
	return domain.UserProfile{
		ID:           firstNonEmpty(w.MongoID, w.ID),
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		Email:        w.Email,
		Role:         domain.Role(w.Role),
		Phone:        w.Phone,
		ProfileImage: w.ProfileImage,
	}
}

// profile rejects a missing user, a missing id or a role outside the known set.
func (w *wireUser) profile() (domain.UserProfile, error) {
	if w == nil {
		return domain.UserProfile{}, fmt.Errorf("%w: missing user", domain.ErrUnexpectedResponse)
	}
	u := w.toDomain()
	if u.ID == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: missing user id", domain.ErrUnexpectedResponse)
	}
	if !u.Role.Valid() {
		return domain.UserProfile{}, fmt.Errorf("%w: unknown role %q", domain.ErrUnexpectedResponse, w.Role)
	}
	return u, nil
}

type authResponse struct {
	envelope
	Token string    `json:"token"`
	User  *wireUser `json:"user"`
}

type profileResponse struct {
	envelope
	User *wireUser `json:"user"`
}

// wireProduct is the union of the field names the backend has used for
// products: _id|id, name|title, image|images, stock|inStock.
type wireProduct struct {
	MongoID     string   `json:"_id"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Image       string   `json:"image"`
	Dimensions  string   `json:"dimensions"`
	Material    string   `json:"material"`
	InStock     *bool    `json:"inStock"`
	Stock       *int     `json:"stock"`
	CreatedAt   string   `json:"createdAt"`
}

func (w wireProduct) toDomain() domain.Product {
	p := domain.Product{
		ID:          firstNonEmpty(w.MongoID, w.ID),
		Title:       firstNonEmpty(w.Title, w.Name),
		Description: w.Description,
		Price:       w.Price,
		Category:    w.Category,
		Dimensions:  w.Dimensions,
		Material:    w.Material,
	}
	switch {
	case len(w.Images) > 0:
		p.Images = append([]string(nil), w.Images...)
	case w.Image != "":
		p.Images = []string{w.Image}
	}
	switch {
	case w.InStock != nil:
		p.InStock = *w.InStock
	case w.Stock != nil:
		p.InStock = *w.Stock > 0
	default:
		p.InStock = true
	}
	if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	return p
}

// productPayload is what the backend accepts on create and update. Both name
// variants are sent.
type productPayload struct {
	Title       string   `json:"title"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Dimensions  string   `json:"dimensions,omitempty"`
	Material    string   `json:"material,omitempty"`
	InStock     bool     `json:"inStock"`
}

func newProductPayload(d domain.ProductDraft) productPayload {
	return productPayload{
		Title:       d.Title,
		Name:        d.Title,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Images:      d.Images,
		Dimensions:  d.Dimensions,
		Material:    d.Material,
		InStock:     d.InStock,
	}
}

// productList decodes either {products:[...]} or a bare array.
type productList struct {
	envelope
	Products []wireProduct
}

func (l *productList) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.Products)
	}
	var aux struct {
		envelope
		Products []wireProduct `json:"products"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	l.envelope, l.Products = aux.envelope, aux.Products
	return nil
}

// productResponse decodes either {product:{...}} or a bare product.
type productResponse struct {
	envelope
	Product wireProduct
}

func (r *productResponse) UnmarshalJSON(b []byte) error {
	var aux struct {
		envelope
		Product *wireProduct `json:"product"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.envelope = aux.envelope
	if aux.Product != nil {
		r.Product = *aux.Product
		return nil
	}
	return json.Unmarshal(b, &r.Product)
}

type cartResponse struct {
	envelope
	Cart struct {
		Items []wireCartItem `json:"items"`
		Total float64        `json:"total"`
	} `json:"cart"`
}

// wireCartItem.Product is either a product id or the populated product.
type wireCartItem struct {
	ID       string          `json:"_id"`
	Product  json.RawMessage `json:"product"`
	Price    float64         `json:"price"`
	Quantity int             `json:"quantity"`
}

func (r cartResponse) toDomain() domain.Cart {
	cart := domain.Cart{Lines: make([]domain.CartLine, 0, len(r.Cart.Items))}
	for _, it := range r.Cart.Items {
		if it.Quantity < 1 {
			continue
		}
		line := domain.CartLine{ItemID: it.ID, UnitPrice: it.Price, Quantity: it.Quantity}
		var id string
		if json.Unmarshal(it.Product, &id) == nil {
			line.Product = domain.ProductRef{ID: id}
		} else {
			var wp wireProduct
			if json.Unmarshal(it.Product, &wp) == nil {
				snap := wp.toDomain()
				line.Product = domain.ProductRef{ID: snap.ID, Snapshot: &snap}
				if line.UnitPrice == 0 {
					line.UnitPrice = snap.Price
				}
			}
		}
		if line.ItemID == "" {
			line.ItemID = line.Product.ID
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart
}

type wireOrder struct {
	MongoID         string                 `json:"_id"`
	ID              string                 `json:"id"`
	Status          string                 `json:"status"`
	Items           []wireOrderItem        `json:"items"`
	Total           float64                `json:"total"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	CreatedAt       string                 `json:"createdAt"`
}

type wireOrderItem struct {
	Product  json.RawMessage `json:"product"`
	Quantity int             `json:"quantity"`
	Price    float64         `json:"price"`
}

func (w wireOrder) toDomain() domain.Order {
	o := domain.Order{
		ID:              firstNonEmpty(w.MongoID, w.ID),
		Status:          w.Status,
		Total:           w.Total,
		ShippingAddress: w.ShippingAddress,
		Items:           make([]domain.OrderItem, 0, len(w.Items)),
	}
	if o.Total == 0 {
		o.Total = w.TotalAmount
	}
	for _, it := range w.Items {
		item := domain.OrderItem{Quantity: it.Quantity, Price: it.Price}
		if json.Unmarshal(it.Product, &item.ProductID) != nil {
			var wp wireProduct
			if json.Unmarshal(it.Product, &wp) == nil {
				item.ProductID = firstNonEmpty(wp.MongoID, wp.ID)
			}
		}
		o.Items = append(o.Items, item)
	}
	if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
		o.CreatedAt = t
	}
	return o
}

type orderResponse struct {
	envelope
	Order *wireOrder `json:"order"`
}

// orderList decodes either {orders:[...]} or a bare array.
type orderList struct {
	envelope
	Orders []wireOrder
}

func (l *orderList) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.Orders)
	}
	var aux struct {
		envelope
		Orders []wireOrder `json:"orders"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	l.envelope, l.Orders = aux.envelope, aux.Orders
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
