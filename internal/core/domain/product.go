package domain

import "time"

// Product is the canonical catalog record. Backend field variants (name/title,
// image/images, stock/inStock) are mapped onto it at the backend boundary.
type Product struct {
	ID          string    `json:"id"          validate:"required"`
	Title       string    `json:"title"       validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Price       float64   `json:"price"       validate:"gte=0"`
	Category    string    `json:"category"    validate:"required"`
	Images      []string  `json:"images"      validate:"omitempty,dive,url"`
	Dimensions  string    `json:"dimensions,omitempty"`
	Material    string    `json:"material,omitempty"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductDraft is a product before the catalog assigns its id and timestamp.
type ProductDraft struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price"       validate:"gte=0"`
	Category    string   `json:"category"    validate:"required"`
	Images      []string `json:"images"      validate:"omitempty,dive,url"`
	Dimensions  string   `json:"dimensions,omitempty"`
	Material    string   `json:"material,omitempty"`
	InStock     bool     `json:"inStock"`
}

// Product materialises the draft under the given identity.
func (d ProductDraft) Product(id string, createdAt time.Time) Product {
	return Product{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Images:      append([]string(nil), d.Images...),
		Dimensions:  d.Dimensions,
		Material:    d.Material,
		InStock:     d.InStock,
		CreatedAt:   createdAt,
	}
}

// Draft strips identity from p.
func (p Product) Draft() ProductDraft {
	return ProductDraft{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Images:      append([]string(nil), p.Images...),
		Dimensions:  p.Dimensions,
		Material:    p.Material,
		InStock:     p.InStock,
	}
}

// Clone returns a deep copy of p.
func (p Product) Clone() Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

// PrimaryImage returns the first image URL, or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
