package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStorage = errors.New("storage unavailable")

// memStore - хранилище в памяти. Транзакции сериализуются через txMu,
// при ошибке состояние восстанавливается из снимка.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products map[uuid.UUID]domain.Product
	carts    map[uuid.UUID]*domain.Cart // по UserID
	orders   map[uuid.UUID]domain.Order
	users    map[string]domain.User
	events   []OutboxEvent

	failOn          map[string]error
	beforeDecrement func()
}

type memSnapshot struct {
	products map[uuid.UUID]domain.Product
	carts    map[uuid.UUID]*domain.Cart
	orders   map[uuid.UUID]domain.Order
	users    map[string]domain.User
	events   []OutboxEvent
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]domain.Product),
		carts:    make(map[uuid.UUID]*domain.Cart),
		orders:   make(map[uuid.UUID]domain.Order),
		users:    make(map[string]domain.User),
		failOn:   make(map[string]error),
	}
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		products: make(map[uuid.UUID]domain.Product, len(s.products)),
		carts:    make(map[uuid.UUID]*domain.Cart, len(s.carts)),
		orders:   make(map[uuid.UUID]domain.Order, len(s.orders)),
		users:    make(map[string]domain.User, len(s.users)),
		events:   slices.Clone(s.events),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = cloneCart(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.users = snap.users
	s.events = snap.events
}

func cloneCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Lines = slices.Clone(c.Lines)
	return &cp
}

// Помощники для подготовки данных в тестах

func (s *memStore) addProduct(name string, price string, stock int) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *domain.NewProduct(name, "", decimal.RequireFromString(price), stock)
	s.products[p.ID] = p
	return p
}

func (s *memStore) product(id uuid.UUID) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *memStore) setStock(id uuid.UUID, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Stock = stock
	s.products[id] = p
}

func (s *memStore) setPrice(id uuid.UUID, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Price = decimal.RequireFromString(price)
	s.products[id] = p
}

func (s *memStore) deleteProduct(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *memStore) putCart(userID uuid.UUID, lines ...domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := domain.NewCart(userID)
	cart.Lines = lines
	s.carts[userID] = cart
}

func (s *memStore) cartLines(userID uuid.UUID) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return nil
	}
	return slices.Clone(cart.Lines)
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) outbox() []OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func line(productID uuid.UUID, quantity int) domain.CartLine {
	return domain.CartLine{ProductID: productID, Quantity: quantity}
}

// TX MANAGER

type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}

	if err := ctx.Err(); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// PRODUCTS

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("product.create"); err != nil {
		return nil, err
	}
	p := *product
	p.CreatedAt = time.Now()
	r.store.products[p.ID] = p
	return &p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, e.ErrProductMissing
	}
	return &p, nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	products := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int { return strings.Compare(a.Name, b.Name) })
	return products, nil
}

func (r *fakeProductRepo) GetProductsInfo(_ context.Context, ids []uuid.UUID) ([]ProductInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("product.info"); err != nil {
		return nil, err
	}
	var res []ProductInfo
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			res = append(res, NewProductInfo(&p))
		}
	}
	return res, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, changes []domain.StockChange) error {
	if r.store.beforeDecrement != nil {
		r.store.beforeDecrement()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("stock.decrement"); err != nil {
		return err
	}
	for _, c := range changes {
		p, ok := r.store.products[c.ProductID]
		if !ok || p.Stock < c.Quantity {
			return &StockConflictError{ProductID: c.ProductID}
		}
		p.Stock -= c.Quantity
		r.store.products[c.ProductID] = p
	}
	return nil
}

func (r *fakeProductRepo) IncrementStock(_ context.Context, changes []domain.StockChange) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, c := range changes {
		p, ok := r.store.products[c.ProductID]
		if !ok {
			continue
		}
		p.Stock += c.Quantity
		r.store.products[c.ProductID] = p
	}
	return nil
}

// CARTS

type fakeCartRepo struct {
	store *memStore
}

func (r *fakeCartRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cart, ok := r.store.carts[userID]
	if !ok {
		cart = domain.NewCart(userID)
		r.store.carts[userID] = cart
	}
	return cloneCart(cart), nil
}

func (r *fakeCartRepo) GetWithProducts(_ context.Context, userID uuid.UUID) (*domain.CartView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.view(userID), nil
}

func (r *fakeCartRepo) LockWithProducts(_ context.Context, userID uuid.UUID) (*domain.CartView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("cart.lock"); err != nil {
		return nil, err
	}
	return r.view(userID), nil
}

func (r *fakeCartRepo) view(userID uuid.UUID) *domain.CartView {
	cart, ok := r.store.carts[userID]
	if !ok {
		return nil
	}
	view := &domain.CartView{CartID: cart.ID, UserID: cart.UserID}
	for _, l := range cart.Lines {
		lv := domain.CartLineView{ProductID: l.ProductID, Quantity: l.Quantity}
		if p, ok := r.store.products[l.ProductID]; ok {
			lv.Product = &p
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}

func (r *fakeCartRepo) SetLine(_ context.Context, cartID uuid.UUID, l domain.CartLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, cart := range r.store.carts {
		if cart.ID != cartID {
			continue
		}
		for i := range cart.Lines {
			if cart.Lines[i].ProductID == l.ProductID {
				cart.Lines[i].Quantity = l.Quantity
				return nil
			}
		}
		cart.Lines = append(cart.Lines, l)
		return nil
	}
	return fmt.Errorf("cart %s not found", cartID)
}

func (r *fakeCartRepo) RemoveLine(_ context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, cart := range r.store.carts {
		if cart.ID != cartID {
			continue
		}
		for i := range cart.Lines {
			if cart.Lines[i].ProductID == productID {
				cart.Lines = slices.Delete(cart.Lines, i, i+1)
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeCartRepo) Clear(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("cart.clear"); err != nil {
		return err
	}
	if cart, ok := r.store.carts[userID]; ok {
		cart.Lines = nil
	}
	return nil
}

// ORDERS

type fakeOrderRepo struct {
	store *memStore
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("order.create"); err != nil {
		return nil, err
	}
	o := *order
	o.Lines = slices.Clone(order.Lines)
	r.store.orders[o.ID] = o
	return &o, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.OrderView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	return r.view(o), nil
}

func (r *fakeOrderRepo) view(o domain.Order) *domain.OrderView {
	view := &domain.OrderView{Order: o, Products: make(map[uuid.UUID]*domain.Product)}
	for _, l := range o.Lines {
		if p, ok := r.store.products[l.ProductID]; ok {
			view.Products[l.ProductID] = &p
		}
	}
	return view
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.OrderView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var res []domain.OrderView
	for _, o := range r.store.orders {
		if o.UserID == userID {
			res = append(res, *r.view(o))
		}
	}
	slices.SortFunc(res, func(a, b domain.OrderView) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return res, nil
}

func (r *fakeOrderRepo) LockByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	now := time.Now()
	o.Status = status
	o.UpdatedAt = &now
	r.store.orders[id] = o
	return &o, nil
}

// OUTBOX

type fakeOutboxRepo struct {
	store *memStore
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.fail("outbox.create"); err != nil {
		return nil, err
	}
	ev := *event
	ev.ID = int64(len(r.store.events) + 1)
	r.store.events = append(r.store.events, ev)
	return &ev, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	return nil
}

func (r *fakeOutboxRepo) Release(_ context.Context, id int64) error {
	return nil
}

// USERS

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.Username]; ok {
		return nil, e.ErrUserAlreadyExists
	}
	u := *user
	r.store.users[u.Username] = u
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[username]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return &u, nil
}

// CACHE

type fakeCache struct {
	mu       sync.Mutex
	products map[uuid.UUID]ProductInfo
	deleted  []uuid.UUID
	err      error
	setCh    chan []ProductInfo
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		products: make(map[uuid.UUID]ProductInfo),
		setCh:    make(chan []ProductInfo, 8),
	}
}

func (c *fakeCache) GetProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]ProductInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	res := make(map[uuid.UUID]ProductInfo)
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			res[id] = p
		}
	}
	return res, nil
}

func (c *fakeCache) SetProducts(_ context.Context, products []ProductInfo) error {
	c.mu.Lock()
	for _, p := range products {
		c.products[p.ID] = p
	}
	c.mu.Unlock()

	c.setCh <- products
	return nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deleted = append(c.deleted, ids...)
	for _, id := range ids {
		delete(c.products, id)
	}
	return c.err
}

func (c *fakeCache) deletedIDs() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.deleted)
}

// IDEMPOTENCY

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
	err  error
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: make(map[string]uuid.UUID)}
}

func (f *fakeIdempotency) Reserve(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = uuid.Nil
	return true, nil
}

func (f *fakeIdempotency) Get(_ context.Context, key string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return uuid.Nil, false, f.err
	}
	id, ok := f.keys[key]
	return id, ok, nil
}

func (f *fakeIdempotency) Complete(_ context.Context, key string, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = orderID
	return nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}

func (f *fakeIdempotency) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}

// RECEIPTS

type fakeReceipts struct {
	mu     sync.Mutex
	stored []uuid.UUID
}

func (f *fakeReceipts) StoreReceipt(order *domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, order.ID)
}

func (f *fakeReceipts) ReceiptURL(_ context.Context, orderID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !slices.Contains(f.stored, orderID) {
		return "", e.ErrReceiptNotFound
	}
	return "https://receipts.local/" + orderID.String(), nil
}

func (f *fakeReceipts) storedIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.stored)
}

// METRICS

type fakeMetrics struct {
	mu       sync.Mutex
	results  map[string]int
	replayed int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{results: make(map[string]int)}
}

func (m *fakeMetrics) ObserveCheckout(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result]++
}

func (m *fakeMetrics) ObserveIdempotentReplay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replayed++
}

func (m *fakeMetrics) count(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[result]
}

// AUTH

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(p domain.Principal) (string, time.Time, error) {
	return fmt.Sprintf("%s|%s", p.UserID, p.Role), time.Now().Add(time.Hour), nil
}

func (fakeTokens) Parse(token string) (domain.Principal, error) {
	id, role, ok := strings.Cut(token, "|")
	if !ok {
		return domain.Principal{}, errors.New("malformed token")
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: userID, Role: domain.Role(role)}, nil
}

// ENVIRONMENT

type env struct {
	store       *memStore
	cache       *fakeCache
	idempotency *fakeIdempotency
	receipts    *fakeReceipts
	metrics     *fakeMetrics
	orders      *OrderUseCase
	carts       *CartUseCase
	products    *ProductUseCase
	auth        *AuthUseCase
}

func newEnv(restockOnCancel bool) *env {
	store := newMemStore()
	tx := &fakeTxManager{store: store}
	productRepo := &fakeProductRepo{store: store}
	cartRepo := &fakeCartRepo{store: store}
	log := logger.NewDiscardLogger()

	en := &env{
		store:       store,
		cache:       newFakeCache(),
		idempotency: newFakeIdempotency(),
		receipts:    &fakeReceipts{},
		metrics:     newFakeMetrics(),
	}
	en.orders = NewOrderUC(
		tx,
		productRepo,
		cartRepo,
		&fakeOrderRepo{store: store},
		&fakeOutboxRepo{store: store},
		en.cache,
		en.idempotency,
		en.receipts,
		en.metrics,
		log,
		restockOnCancel,
	)
	en.carts = NewCartUC(tx, cartRepo, productRepo, log)
	en.products = NewProductUC(productRepo, en.cache, log)
	en.auth = NewAuthUC(&fakeUserRepo{store: store}, fakeHasher{}, fakeTokens{}, log)
	return en
}

func customer() domain.Principal {
	return domain.Principal{UserID: uuid.New(), Role: domain.RoleCustomer}
}

func admin() domain.Principal {
	return domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}
}

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Street:  "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Zip:     "62701",
		Country: "US",
	}
}
