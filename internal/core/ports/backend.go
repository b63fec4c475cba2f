package ports

import (
	"context"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// AuthAPI covers the backend's /auth endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Credential, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Credential, error)
	GoogleLogin(ctx context.Context, idToken string) (*domain.Credential, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
	// Profile verifies token by fetching the profile it belongs to. The token is
	// passed explicitly so boot can verify before a session is published.
	Profile(ctx context.Context, token string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.UserProfile, error)
}

// CartAPI covers the backend's /cart endpoints. Every call returns the
// backend's view of the cart after the operation where the backend provides it.
type CartAPI interface {
	GetCart(ctx context.Context) (domain.Cart, error)
	AddCartItem(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// ProductAPI covers the backend's /products endpoints.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// OrderAPI covers the backend's /orders endpoints.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
