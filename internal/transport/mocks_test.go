package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type mockUserRepository struct {
	users map[string]*domain.User
	// withOrders marks users whose delete hits the orders foreign key.
	withOrders map[uuid.UUID]bool
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	for email, u := range m.users {
		if u.ID == user.ID {
			delete(m.users, email)
			m.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.withOrders[id] {
		return repository.ErrUserHasOrders
	}
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context, filter domain.UserFilter, page domain.PageRequest) ([]*domain.User, int, error) {
	var out []*domain.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Query != "" && !strings.Contains(u.Email, strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, u)
	}
	total := len(out)
	if page.Offset() >= total {
		return nil, total, nil
	}
	end := page.Offset() + page.PageSize
	if end > total {
		end = total
	}
	return out[page.Offset():end], total, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for key, t := range m.tokens {
		if t.ExpiresAt.Before(cutoff) || (t.Revoked && t.CreatedAt.Before(cutoff)) {
			delete(m.tokens, key)
			n++
		}
	}
	return n, nil
}

// Service stubs embed the interface so that a test only implements the
// methods it exercises; anything else panics.

type stubCatalogService struct {
	service.CatalogService
	listProducts func(filter domain.ProductFilter, page domain.PageRequest) (domain.Page[*domain.Product], error)
	getProduct   func(id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error)
	createProd   func(input service.ProductInput) (*domain.Product, error)
	deleteCat    func(id uuid.UUID) error
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[*domain.Product], error) {
	return s.listProducts(filter, page)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error) {
	return s.getProduct(id, includeInactive)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return s.createProd(input)
}

func (s *stubCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.deleteCat(id)
}

type stubCartService struct {
	service.CartService
	addItem     func(userID, productID uuid.UUID, quantity int) (*domain.CartView, error)
	setQuantity func(userID, productID uuid.UUID, quantity int) (*domain.CartView, error)
}

func (s *stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartView, error) {
	return s.addItem(userID, productID, quantity)
}

func (s *stubCartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartView, error) {
	return s.setQuantity(userID, productID, quantity)
}

type stubCheckoutService struct {
	service.CheckoutService
	checkout func(userID, addressID uuid.UUID) (*service.CheckoutResult, error)
	webhook  func(payload []byte, signature string) error
}

func (s *stubCheckoutService) Checkout(ctx context.Context, userID, addressID uuid.UUID) (*service.CheckoutResult, error) {
	return s.checkout(userID, addressID)
}

func (s *stubCheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.webhook(payload, signature)
}

type stubOrderService struct {
	service.OrderService
	list         func(filter domain.OrderFilter, page domain.PageRequest) (domain.Page[*domain.Order], error)
	updateStatus func(orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

func (s *stubOrderService) List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[*domain.Order], error) {
	return s.list(filter, page)
}

func (s *stubOrderService) ListForUser(ctx context.Context, userID uuid.UUID, status domain.OrderStatus, page domain.PageRequest) (domain.Page[*domain.Order], error) {
	return s.list(domain.OrderFilter{UserID: &userID, Status: status}, page)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	return s.updateStatus(orderID, status)
}

type stubUploadService struct {
	received []byte
	err      error
}

func (s *stubUploadService) StoreImage(ctx context.Context, r io.Reader, size int64) (*service.StoredFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.received = data
	return &service.StoredFile{Path: "images/test.png", URL: "http://cdn.test/images/test.png"}, nil
}

// asUser stands in for the JWT middleware.
func asUser(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), userID, role)))
		})
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Message
}
