package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories shared by the service tests.

type mockUserRepository struct {
	users map[string]*domain.User
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
		if filter.Query != "" && !strings.Contains(u.Email, filter.Query) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return paginate(out, page), len(out), nil
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
	if !exists || refreshToken.Revoked {
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

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	listCalls  int
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.listCalls++
	out := []*domain.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	// afterFind runs once FindByID has copied the row, letting tests commit a
	// concurrent change between a read and the following write.
	afterFind func(id uuid.UUID)
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) add(name string, price float64, stock int) *domain.Product {
	p := &domain.Product{ID: uuid.New(), Name: name, Price: price, Stock: stock, IsActive: true}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, c repository.ProductChanges) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Name = c.Name
	p.Description = c.Description
	p.Price = c.Price
	p.CategoryID = c.CategoryID
	p.ImageURL = c.ImageURL
	p.Stock = max(p.Stock+c.StockDelta, 0)
	if c.IsActive != nil {
		p.IsActive = *c.IsActive
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.IsActive = !p.IsActive
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	if m.afterFind != nil {
		m.afterFind(id)
	}
	return &cp, nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := map[uuid.UUID]*domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if !filter.IncludeInactive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page), len(out), nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

type mockReviewRepository struct {
	reviews map[uuid.UUID]*domain.Review
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (m *mockReviewRepository) Upsert(ctx context.Context, r *domain.Review) error {
	for _, existing := range m.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			r.ID = existing.ID
			r.CreatedAt = existing.CreatedAt
		}
	}
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	return r, nil
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page domain.PageRequest) ([]*domain.Review, int, error) {
	var out []*domain.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return paginate(out, page), len(out), nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockReviewRepository) DeleteByAuthor(ctx context.Context, productID, userID uuid.UUID) error {
	for id, r := range m.reviews {
		if r.ProductID == productID && r.UserID == userID {
			delete(m.reviews, id)
			return nil
		}
	}
	return repository.ErrReviewNotFound
}

func (m *mockReviewRepository) Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	sum, n := 0, 0
	for _, r := range m.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

// mockCartRepository joins lines against the product repository like the SQL
// implementation does.
type mockCartRepository struct {
	products *mockProductRepository
	carts    map[uuid.UUID]*domain.Cart // by user
	lines    map[uuid.UUID][]*domain.CartItem
}

func newMockCartRepository(products *mockProductRepository) *mockCartRepository {
	return &mockCartRepository{
		products: products,
		carts:    make(map[uuid.UUID]*domain.Cart),
		lines:    make(map[uuid.UUID][]*domain.CartItem),
	}
}

func (m *mockCartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if c, ok := m.carts[userID]; ok {
		return c, nil
	}
	c := &domain.Cart{ID: uuid.New(), UserID: userID}
	m.carts[userID] = c
	return c, nil
}

func (m *mockCartRepository) joined(line *domain.CartItem) domain.CartItem {
	item := *line
	if p, ok := m.products.products[line.ProductID]; ok {
		item.ProductName = p.Name
		item.UnitPrice = p.Price
		item.Stock = p.Stock
		item.IsActive = p.IsActive
		item.LineTotal = domain.RoundCents(p.Price * float64(item.Quantity))
	}
	return item
}

func (m *mockCartRepository) Items(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	for _, line := range m.lines[cartID] {
		items = append(items, m.joined(line))
	}
	return items, nil
}

func (m *mockCartRepository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.CartItem, error) {
	for _, line := range m.lines[cartID] {
		if line.ProductID == productID {
			item := m.joined(line)
			return &item, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *mockCartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	for _, line := range m.lines[cartID] {
		if line.ProductID == productID {
			line.Quantity = quantity
			return nil
		}
	}
	m.lines[cartID] = append(m.lines[cartID], &domain.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: quantity})
	return nil
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	lines := m.lines[cartID]
	for i, line := range lines {
		if line.ProductID == productID {
			m.lines[cartID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	delete(m.lines, cartID)
	return nil
}

func (m *mockCartRepository) SubtractOrdered(ctx context.Context, userID uuid.UUID, items []domain.OrderItem) error {
	c, ok := m.carts[userID]
	if !ok {
		return nil
	}
	ordered := map[uuid.UUID]int{}
	for _, item := range items {
		ordered[item.ProductID] += item.Quantity
	}
	kept := []*domain.CartItem{}
	for _, line := range m.lines[c.ID] {
		line.Quantity -= ordered[line.ProductID]
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	m.lines[c.ID] = kept
	return nil
}

type mockAddressRepository struct {
	addresses map[uuid.UUID]*domain.Address
}

func newMockAddressRepository() *mockAddressRepository {
	return &mockAddressRepository{addresses: make(map[uuid.UUID]*domain.Address)}
}

func (m *mockAddressRepository) Create(ctx context.Context, a *domain.Address) error {
	m.addresses[a.ID] = a
	return nil
}

func (m *mockAddressRepository) Update(ctx context.Context, a *domain.Address) error {
	m.addresses[a.ID] = a
	return nil
}

func (m *mockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := m.FindByID(ctx, userID, id); err != nil {
		return err
	}
	delete(m.addresses, id)
	return nil
}

func (m *mockAddressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrAddressNotFound
	}
	return a, nil
}

func (m *mockAddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	out := []*domain.Address{}
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// mockOrderRepository reserves and restores stock on the product repository.
type mockOrderRepository struct {
	products *mockProductRepository
	orders   map[uuid.UUID]*domain.Order
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{products: products, orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) CreateWithItems(ctx context.Context, order *domain.Order) error {
	if _, err := m.FindPendingByUser(ctx, order.UserID); err == nil {
		return repository.ErrPendingOrderExists
	}
	for _, item := range order.Items {
		p, ok := m.products.products[item.ProductID]
		if !ok || !p.IsActive || p.Stock < item.Quantity {
			return repository.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		m.products.products[item.ProductID].Stock -= item.Quantity
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepository) FindByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	for _, o := range m.orders {
		if sessionID != "" && o.PaymentSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == domain.OrderStatusPending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) ([]*domain.Order, int, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), len(out), nil
}

func (m *mockOrderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return repository.ErrOrderStatusConflict
	}
	o.Status = to
	if to == domain.OrderStatusCanceled {
		for _, item := range o.Items {
			if p, ok := m.products.products[item.ProductID]; ok {
				p.Stock += item.Quantity
			}
		}
	}
	return nil
}

func (m *mockOrderRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.PaymentSessionID = sessionID
	return nil
}

func (m *mockOrderRepository) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	for _, o := range m.orders {
		if o.UserID != userID || !o.Status.Settled() {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockOrderRepository) Stats(ctx context.Context) (map[domain.OrderStatus]int, float64, error) {
	counts := map[domain.OrderStatus]int{}
	for _, s := range domain.AllOrderStatuses {
		counts[s] = 0
	}
	revenue := 0.0
	for _, o := range m.orders {
		counts[o.Status]++
		if o.Status.Settled() {
			revenue += o.Total
		}
	}
	return counts, revenue, nil
}

type mockBannerRepository struct {
	banners []*domain.Banner
}

func (m *mockBannerRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error) {
	out := []*domain.Banner{}
	for _, b := range m.banners {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	for _, b := range m.banners {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBannerNotFound
}

func (m *mockBannerRepository) Create(ctx context.Context, b *domain.Banner) error {
	b.Position = len(m.banners)
	m.banners = append(m.banners, b)
	return nil
}

func (m *mockBannerRepository) Update(ctx context.Context, b *domain.Banner) error {
	for i, existing := range m.banners {
		if existing.ID == b.ID {
			m.banners[i] = b
			return nil
		}
	}
	return repository.ErrBannerNotFound
}

func (m *mockBannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, b := range m.banners {
		if b.ID == id {
			m.banners = append(m.banners[:i], m.banners[i+1:]...)
			for pos, rest := range m.banners {
				rest.Position = pos
			}
			return nil
		}
	}
	return repository.ErrBannerNotFound
}

func (m *mockBannerRepository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) != len(m.banners) {
		return repository.ErrInvalidOrder
	}
	byID := map[uuid.UUID]*domain.Banner{}
	for _, b := range m.banners {
		byID[b.ID] = b
	}
	reordered := make([]*domain.Banner, 0, len(ids))
	for pos, id := range ids {
		b, ok := byID[id]
		if !ok {
			return repository.ErrInvalidOrder
		}
		delete(byID, id)
		b.Position = pos
		reordered = append(reordered, b)
	}
	m.banners = reordered
	return nil
}

type mockCarouselRepository struct {
	items []*domain.CarouselItem
}

func (m *mockCarouselRepository) List(ctx context.Context, activeOnly bool) ([]*domain.CarouselItem, error) {
	return append([]*domain.CarouselItem{}, m.items...), nil
}

func (m *mockCarouselRepository) Add(ctx context.Context, item *domain.CarouselItem) error {
	for _, existing := range m.items {
		if existing.ProductID == item.ProductID {
			return repository.ErrCarouselItemExists
		}
	}
	item.Position = len(m.items)
	m.items = append(m.items, item)
	return nil
}

func (m *mockCarouselRepository) Remove(ctx context.Context, id uuid.UUID) error {
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCarouselItemNotFound
}

func (m *mockCarouselRepository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) != len(m.items) {
		return repository.ErrInvalidOrder
	}
	return nil
}

type mockPaymentConfigRepository struct {
	cfg *domain.PaymentConfig
}

func (m *mockPaymentConfigRepository) Get(ctx context.Context) (*domain.PaymentConfig, error) {
	if m.cfg == nil {
		return nil, repository.ErrPaymentConfigNotFound
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockPaymentConfigRepository) Save(ctx context.Context, cfg *domain.PaymentConfig) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

// fakeProvider records sessions and hands back canned webhook events.
// Sessions listed in completed can no longer be expired.
type fakeProvider struct {
	mu        sync.Mutex
	requests  []payment.SessionRequest
	expired   []string
	completed map[string]bool
	fail      error
	expireErr error
	event     *payment.Event
}

func (f *fakeProvider) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.requests = append(f.requests, req)
	id := "cs_" + uuid.NewString()
	return &payment.Session{ID: id, URL: "https://pay.test/" + id}, nil
}

func (f *fakeProvider) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	if signature != "valid" {
		return nil, payment.ErrInvalidSignature
	}
	return f.event, nil
}

// memDisk is a storage.Disk kept in memory.
type memDisk struct {
	files map[string][]byte
}

func (d *memDisk) Put(ctx context.Context, path string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if d.files == nil {
		d.files = map[string][]byte{}
	}
	d.files[path] = data
	return nil
}

func (d *memDisk) Delete(ctx context.Context, path string) error {
	delete(d.files, path)
	return nil
}

func (d *memDisk) URL(path string) string {
	return "http://cdn.test/" + path
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (f *fakeProvider) ExpireSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expireErr != nil {
		return f.expireErr
	}
	if f.completed[sessionID] {
		return payment.ErrSessionCompleted
	}
	f.expired = append(f.expired, sessionID)
	return nil
}
