package handler

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/api/middleware"
	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func newContext(method, target string, body io.Reader, s *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if s != nil {
		c.Set(middleware.SessionKey, *s)
	}
	return c, rec
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

func buyer() *domain.Session {
	s := domain.SignedIn(domain.Credential{
		Token: "tok",
		User:  domain.UserProfile{ID: "u1", FirstName: "Ada", Email: "ada@example.com", Role: domain.RoleBuyer},
	})
	return &s
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

// --- session ---

type stubSessionService struct {
	current  domain.Session
	signInFn func(ctx context.Context, email, password string) (domain.Session, error)
	register func(ctx context.Context, reg domain.Registration) (domain.Session, error)
	logouts  int
	err      error
}

func (s *stubSessionService) Current() domain.Session { return s.current }
func (s *stubSessionService) Ready() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (s *stubSessionService) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	return s.signInFn(ctx, email, password)
}
func (s *stubSessionService) GoogleSignIn(context.Context, string) (domain.Session, error) {
	return s.current, s.err
}
func (s *stubSessionService) Register(ctx context.Context, reg domain.Registration) (domain.Session, error) {
	return s.register(ctx, reg)
}
func (s *stubSessionService) SignInLocalAdmin(context.Context, string, string) (domain.Session, error) {
	return s.current, s.err
}
func (s *stubSessionService) ForgotPassword(context.Context, string) error        { return s.err }
func (s *stubSessionService) ResetPassword(context.Context, string, string) error { return s.err }
func (s *stubSessionService) UpdateProfile(context.Context, domain.ProfileUpdate) (domain.Session, error) {
	return s.current, s.err
}
func (s *stubSessionService) Logout(context.Context) error {
	s.logouts++
	s.current = domain.Guest()
	return nil
}

// --- cart ---

type stubCart struct {
	cart    domain.Cart
	added   []domain.Product
	qty     []int
	removed []string
	err     error
}

func (s *stubCart) Mode() domain.CartMode                             { return domain.CartModeLocal }
func (s *stubCart) Load(context.Context) error                        { return nil }
func (s *stubCart) Cart(context.Context) (domain.Cart, error)         { return s.cart.Clone(), nil }
func (s *stubCart) Reset(context.Context)                             {}
func (s *stubCart) TotalItems() int                                   { return s.cart.TotalItems() }
func (s *stubCart) TotalPrice() float64                               { return s.cart.Total() }
func (s *stubCart) UpdateQuantity(context.Context, string, int) error { return s.err }
func (s *stubCart) ClearCart(context.Context) error {
	s.cart = domain.Cart{}
	return s.err
}
func (s *stubCart) RemoveFromCart(_ context.Context, itemID string) error {
	s.removed = append(s.removed, itemID)
	return s.err
}
func (s *stubCart) AddToCart(_ context.Context, p domain.Product, quantity int) error {
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, p)
	s.qty = append(s.qty, quantity)
	s.cart.Lines = append(s.cart.Lines, domain.CartLine{
		ItemID:    p.ID,
		Product:   domain.ProductRef{ID: p.ID},
		UnitPrice: p.Price,
		Quantity:  max(quantity, 1),
	})
	return nil
}

// --- catalog ---

type stubCatalog struct {
	products []domain.Product
	nextID   int
}

func (s *stubCatalog) Load(context.Context) error { return nil }
func (s *stubCatalog) List(context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), s.products...), nil
}
func (s *stubCatalog) FindByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}
func (s *stubCatalog) AddProduct(_ context.Context, d domain.ProductDraft) (*domain.Product, error) {
	if d.Category == "" {
		return nil, domain.NewValidationError("category", "category is required")
	}
	s.nextID++
	p := d.Product(fmt.Sprintf("p%d", s.nextID), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.products = append(s.products, p)
	return &p, nil
}
func (s *stubCatalog) UpdateProduct(_ context.Context, id string, d domain.ProductDraft) (*domain.Product, error) {
	for i, p := range s.products {
		if p.ID == id {
			next := d.Product(id, p.CreatedAt)
			s.products[i] = next
			return &next, nil
		}
	}
	return nil, nil
}
func (s *stubCatalog) DeleteProduct(context.Context, string) error { return nil }

// --- checkout ---

type stubCheckout struct {
	addr  domain.ShippingAddress
	order *domain.Order
	err   error
}

func (s *stubCheckout) PlaceOrder(_ context.Context, addr domain.ShippingAddress) (*domain.Order, error) {
	s.addr = addr
	return s.order, s.err
}
func (s *stubCheckout) Orders(context.Context) ([]domain.Order, error) { return nil, s.err }
