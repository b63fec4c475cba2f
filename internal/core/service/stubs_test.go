package service

import (
	"context"
	"errors"
	"sync"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

var errNetwork = errors.New("dial tcp: connection refused")

// ---------------------------------------------------------------------------
// In-memory stub KV store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet map[string]error // Set on these keys returns the error
	sets    int
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string]string), failSet: make(map[string]error)}
}

func (s *stubStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSet[key]; err != nil {
		return err
	}
	s.sets++
	s.data[key] = value
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubStore) Ping(context.Context) error { return nil }
func (s *stubStore) Close() error               { return nil }

func (s *stubStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// ---------------------------------------------------------------------------
// Stub backend APIs
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	profile     *domain.UserProfile
	profileErr  error
	profileHits int
	// entered is closed when Profile is called; block then holds it until closed.
	entered chan struct{}
	block   chan struct{}

	loginCred *domain.Credential
	loginErr  error

	updated   *domain.UserProfile
	updateErr error
}

func (a *stubAuthAPI) Login(context.Context, string, string) (*domain.Credential, error) {
	return a.loginCred, a.loginErr
}

func (a *stubAuthAPI) Register(context.Context, domain.Registration) (*domain.Credential, error) {
	return a.loginCred, a.loginErr
}

func (a *stubAuthAPI) GoogleLogin(context.Context, string) (*domain.Credential, error) {
	return a.loginCred, a.loginErr
}

func (a *stubAuthAPI) ForgotPassword(context.Context, string) error { return nil }

func (a *stubAuthAPI) ResetPassword(context.Context, string, string) error { return nil }

func (a *stubAuthAPI) Profile(context.Context, string) (*domain.UserProfile, error) {
	a.profileHits++
	if a.entered != nil {
		close(a.entered)
	}
	if a.block != nil {
		<-a.block
	}
	return a.profile, a.profileErr
}

func (a *stubAuthAPI) UpdateProfile(context.Context, domain.ProfileUpdate) (*domain.UserProfile, error) {
	return a.updated, a.updateErr
}

type stubCartAPI struct {
	mu       sync.Mutex
	cart     domain.Cart
	getErr   error
	mutErr   error
	calls    []string
	onMutate func()
}

func (a *stubCartAPI) GetCart(context.Context) (domain.Cart, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, "get")
	if a.getErr != nil {
		return domain.Cart{}, a.getErr
	}
	return a.cart.Clone(), nil
}

func (a *stubCartAPI) AddCartItem(_ context.Context, productID string, quantity int) error {
	return a.mutation("add", func() {
		if i, ok := a.cart.Index(productID); ok {
			a.cart.Lines[i].Quantity += quantity
			return
		}
		a.cart.Lines = append(a.cart.Lines, domain.CartLine{
			ItemID: "item-" + productID, Product: domain.ProductRef{ID: productID}, UnitPrice: 10, Quantity: quantity,
		})
	})
}

func (a *stubCartAPI) UpdateCartItem(_ context.Context, itemID string, quantity int) error {
	return a.mutation("update", func() {
		if i, ok := a.cart.Index(itemID); ok {
			a.cart.Lines[i].Quantity = quantity
		}
	})
}

func (a *stubCartAPI) RemoveCartItem(_ context.Context, itemID string) error {
	return a.mutation("remove", func() {
		if i, ok := a.cart.Index(itemID); ok {
			a.cart.Lines = append(a.cart.Lines[:i], a.cart.Lines[i+1:]...)
		}
	})
}

func (a *stubCartAPI) ClearCart(context.Context) error {
	return a.mutation("clear", func() { a.cart.Lines = nil })
}

func (a *stubCartAPI) mutation(name string, apply func()) error {
	a.mu.Lock()
	a.calls = append(a.calls, name)
	if a.mutErr != nil {
		a.mu.Unlock()
		return a.mutErr
	}
	apply()
	hook := a.onMutate
	a.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (a *stubCartAPI) callLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

type stubOrderAPI struct {
	got   *domain.OrderRequest
	order *domain.Order
	err   error
}

func (a *stubOrderAPI) CreateOrder(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	a.got = &req
	return a.order, a.err
}

func (a *stubOrderAPI) ListOrders(context.Context) ([]domain.Order, error) {
	if a.order == nil {
		return nil, a.err
	}
	return []domain.Order{*a.order}, a.err
}

// ---------------------------------------------------------------------------
// Session and event stubs
// ---------------------------------------------------------------------------

type staticSession struct {
	mu sync.Mutex
	s  domain.Session
}

func signedInAs(role domain.Role) *staticSession {
	return &staticSession{s: domain.SignedIn(domain.Credential{
		Token: "tok",
		User:  domain.UserProfile{ID: "u1", FirstName: "Ada", Role: role},
	})}
}

func (s *staticSession) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

func (s *staticSession) set(sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s = sess
}

type recordingEvents struct {
	mu     sync.Mutex
	topics []domain.Topic
}

func (r *recordingEvents) Publish(t domain.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, t)
}

func (r *recordingEvents) count(t domain.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.topics {
		if got == t {
			n++
		}
	}
	return n
}
