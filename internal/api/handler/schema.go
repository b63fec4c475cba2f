package handler

import "github.com/handmade-gallery/storefront/internal/core/domain"

// --- Session ---

type sessionResponse struct {
	Status domain.SessionStatus `json:"status"`
	User   *domain.UserProfile  `json:"user,omitempty"`
}

func newSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{Status: s.Status, User: s.User}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Token string `json:"token"`
}

type localAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// --- Cart ---

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"max=999"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"max=999"`
}

type cartResponse struct {
	Mode       domain.CartMode   `json:"mode"`
	Lines      []domain.CartLine `json:"lines"`
	Total      float64           `json:"total"`
	TotalItems int               `json:"totalItems"`
}

func newCartResponse(mode domain.CartMode, cart domain.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		Mode:       mode,
		Lines:      lines,
		Total:      cart.Total(),
		TotalItems: cart.TotalItems(),
	}
}

// --- Catalog ---

type productListResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

type importResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// --- Checkout ---

type checkoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

type orderListResponse struct {
	Orders []domain.Order `json:"orders"`
}

// --- Views ---

type viewResponse struct {
	View string              `json:"view"`
	User *domain.UserProfile `json:"user"`
}
