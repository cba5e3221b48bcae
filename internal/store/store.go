package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/pkg/logger"
)

// ErrInsufficientStock is matched by *InsufficientStockError
var ErrInsufficientStock = errors.New("insufficient stock")

// StockShortage describes one catalog line that cannot be fulfilled
type StockShortage struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError lists every short line of a rejected order
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: requested %d, available %d", s.Name, s.Requested, s.Available))
	}
	return "insufficient stock (" + strings.Join(parts, "; ") + ")"
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Config configures a Store
type Config struct {
	Mirrors         []Mirror
	Now             func() time.Time
	Location        *time.Location
	BreakerFailures int
	BreakerTimeout  time.Duration
	MaxOutbox       int
	MaxAttempts     int
}

// Store is the single owner of the product, order and expense collections.
// Every collection is kept newest first. Mirrors are written after the local
// change is applied and never cause it to be rolled back.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	orders   []domain.Order
	expenses []domain.Expense

	clock    *idClock
	replicas []*replica
}

// New creates an empty store
func New(cfg Config) *Store {
	if cfg.MaxOutbox == 0 {
		cfg.MaxOutbox = 10000
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 20
	}

	s := &Store{clock: newIDClock(cfg.Now, cfg.Location)}
	for _, m := range cfg.Mirrors {
		if m == nil {
			continue
		}
		s.replicas = append(s.replicas, newReplica(m, cfg))
	}
	return s
}

// Now returns the current store time
func (s *Store) Now() time.Time { return s.clock.Now() }

// Today returns the current calendar day key
func (s *Store) Today() string { return s.clock.Today() }

// NextID returns a fresh identifier
func (s *Store) NextID() int64 { return s.clock.NextID() }

// Location returns the timezone used for day keys
func (s *Store) Location() *time.Location { return s.clock.loc }

// Products returns a copy of the catalog
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

// Product looks a product up by identifier
func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.productIndex(id); i >= 0 {
		return s.products[i].Clone(), true
	}
	return domain.Product{}, false
}

// ProductBySKU looks a product up by SKU or barcode
func (s *Store) ProductBySKU(sku string) (domain.Product, bool) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return domain.Product{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.SKU == sku {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

// Orders returns a copy of the orders, newest first
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Order looks an order up by identifier
func (s *Store) Order(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return domain.Order{}, false
}

// Expenses returns a copy of the expenses, newest first
func (s *Store) Expenses() []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Expense(nil), s.expenses...)
}

// Snapshot copies all three collections under one read lock
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Products: make([]domain.Product, len(s.products)),
		Orders:   make([]domain.Order, len(s.orders)),
		Expenses: append([]domain.Expense(nil), s.expenses...),
	}
	for i, p := range s.products {
		snap.Products[i] = p.Clone()
	}
	for i, o := range s.orders {
		snap.Orders[i] = o.Clone()
	}
	return snap
}

// AddProduct inserts a product at the front of the catalog. The caller
// supplies a fresh identifier; duplicates are not checked.
func (s *Store) AddProduct(ctx context.Context, product domain.Product) error {
	product = product.Clone()

	s.mu.Lock()
	s.products = append([]domain.Product{product}, s.products...)
	count := len(s.products)
	s.mu.Unlock()

	productsGauge.Set(float64(count))
	logger.Debug(ctx).
		Int64("product_id", product.ID).
		Str("sku", product.SKU).
		Msg("Product added")

	return s.replicate(ctx, upsertProductOp(product))
}

// UpdateProduct replaces the product with the same identifier. Unknown
// identifiers are ignored.
func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) error {
	product = product.Clone()

	s.mu.Lock()
	i := s.productIndex(product.ID)
	if i >= 0 {
		s.products[i] = product
	}
	s.mu.Unlock()

	if i < 0 {
		logger.Debug(ctx).Int64("product_id", product.ID).Msg("Update of unknown product ignored")
		return nil
	}
	return s.replicate(ctx, upsertProductOp(product))
}

// DeleteProduct removes a product. Historical order lines are untouched.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	i := s.productIndex(id)
	if i >= 0 {
		s.products = append(s.products[:i:i], s.products[i+1:]...)
	}
	count := len(s.products)
	s.mu.Unlock()

	if i < 0 {
		return nil
	}
	productsGauge.Set(float64(count))
	return s.replicate(ctx, operation{kind: opDeleteProduct, id: id})
}

// Restock adds quantity to a product's stock and records the total cost as
// a restock expense dated today. An unknown product leaves the catalog as is
// but the expense is still recorded, since the goods were paid for.
func (s *Store) Restock(ctx context.Context, productID int64, quantity int, totalCost float64) (domain.RestockReceipt, error) {
	if err := domain.CheckQuantity(quantity); err != nil {
		return domain.RestockReceipt{}, err
	}
	expense := domain.Expense{
		ID:       s.clock.NextID(),
		Amount:   totalCost,
		Date:     s.clock.Today(),
		Category: domain.ExpenseRestock,
	}

	s.mu.Lock()
	var receipt domain.RestockReceipt
	if i := s.productIndex(productID); i >= 0 {
		stock, err := domain.AddStock(s.products[i].Stock, quantity)
		if err != nil {
			s.mu.Unlock()
			return domain.RestockReceipt{}, err
		}
		s.products[i].Stock = stock
		receipt.Product = s.products[i].Clone()
		receipt.Found = true
	}
	expense.Name = domain.RestockExpenseName(receipt.Product.Name, quantity)
	s.expenses = append([]domain.Expense{expense}, s.expenses...)
	s.mu.Unlock()

	receipt.Expense = expense

	ops := []operation{{kind: opInsertExpense, expense: expense}}
	if receipt.Found {
		ops = append([]operation{upsertProductOp(receipt.Product)}, ops...)
	} else {
		logger.Warn(ctx).Int64("product_id", productID).Msg("Restock of unknown product, expense recorded only")
	}
	return receipt, s.replicate(ctx, ops...)
}

// AddOrder records an order and decrements stock for every line, clamping
// at zero. Lines whose product no longer exists are skipped.
func (s *Store) AddOrder(ctx context.Context, order domain.Order) error {
	order = order.Clone()

	s.mu.Lock()
	touched := s.applyOrderLocked(order)
	s.mu.Unlock()

	return s.afterOrder(ctx, order, touched)
}

// PlaceOrder records an order only if every catalog line fits in the
// current stock. The check and the decrement happen under one lock.
func (s *Store) PlaceOrder(ctx context.Context, order domain.Order) error {
	order = order.Clone()

	s.mu.Lock()
	if shortages := s.shortagesLocked(order); len(shortages) > 0 {
		s.mu.Unlock()
		return &InsufficientStockError{Shortages: shortages}
	}
	touched := s.applyOrderLocked(order)
	s.mu.Unlock()

	return s.afterOrder(ctx, order, touched)
}

func (s *Store) shortagesLocked(order domain.Order) []StockShortage {
	requested := make(map[int64]int)
	var ids []int64
	for _, item := range order.Items {
		if item.ProductID == 0 {
			continue
		}
		if _, seen := requested[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	var shortages []StockShortage
	for _, id := range ids {
		i := s.productIndex(id)
		if i < 0 {
			continue
		}
		if p := s.products[i]; requested[id] > p.Stock {
			shortages = append(shortages, StockShortage{
				ProductID: id,
				Name:      p.Name,
				Requested: requested[id],
				Available: p.Stock,
			})
		}
	}
	return shortages
}

func (s *Store) applyOrderLocked(order domain.Order) []domain.Product {
	s.orders = append([]domain.Order{order}, s.orders...)

	var touched []domain.Product
	for _, item := range order.Items {
		if item.ProductID == 0 {
			continue
		}
		i := s.productIndex(item.ProductID)
		if i < 0 {
			continue
		}
		s.products[i].Stock -= item.Quantity
		if s.products[i].Stock < 0 {
			s.products[i].Stock = 0
		}
		touched = append(touched, s.products[i].Clone())
	}
	return touched
}

func (s *Store) afterOrder(ctx context.Context, order domain.Order, touched []domain.Product) error {
	ordersRecorded.Inc()
	logger.Info(ctx).
		Str("order_id", order.ID).
		Float64("amount", order.Amount).
		Int("items", order.ItemCount).
		Str("payment_method", string(order.PaymentMethod)).
		Msg("Order recorded")

	ops := []operation{{kind: opInsertOrder, order: order}}
	for _, p := range touched {
		ops = append(ops, upsertProductOp(p))
	}
	return s.replicate(ctx, ops...)
}

// AddExpense records an expense
func (s *Store) AddExpense(ctx context.Context, expense domain.Expense) error {
	s.mu.Lock()
	s.expenses = append([]domain.Expense{expense}, s.expenses...)
	s.mu.Unlock()

	logger.Debug(ctx).
		Int64("expense_id", expense.ID).
		Float64("amount", expense.Amount).
		Msg("Expense added")
	return s.replicate(ctx, operation{kind: opInsertExpense, expense: expense})
}

// DeleteExpense removes an expense; unknown identifiers are ignored
func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	s.mu.Lock()
	found := false
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i:i], s.expenses[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return nil
	}
	return s.replicate(ctx, operation{kind: opDeleteExpense, id: id})
}

// Load replaces the local collections with the content of src. It is meant
// for startup hydration and does not write to mirrors.
func (s *Store) Load(ctx context.Context, src Source) error {
	products, err := src.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	orders, err := src.LoadOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	expenses, err := src.LoadExpenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Timestamp > orders[j].Timestamp })

	for _, p := range products {
		s.clock.observe(p.ID)
	}
	for _, o := range orders {
		s.clock.observe(o.Timestamp)
	}
	for _, e := range expenses {
		s.clock.observe(e.ID)
	}

	s.mu.Lock()
	s.products = products
	s.orders = orders
	s.expenses = expenses
	s.mu.Unlock()

	productsGauge.Set(float64(len(products)))
	logger.Info(ctx).
		Int("products", len(products)).
		Int("orders", len(orders)).
		Int("expenses", len(expenses)).
		Msg("Record store hydrated from mirror")
	return nil
}

// Seed inserts data without replicating it, used for demo catalogs
func (s *Store) Seed(products []domain.Product, expenses []domain.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		s.clock.observe(p.ID)
		s.products = append(s.products, p.Clone())
	}
	for _, e := range expenses {
		s.clock.observe(e.ID)
		s.expenses = append(s.expenses, e)
	}
	productsGauge.Set(float64(len(s.products)))
}

// Flush retries pending mirror writes on every mirror
func (s *Store) Flush(ctx context.Context) (int, error) {
	var errs []error
	total := 0
	for _, r := range s.replicas {
		n, err := r.flush(ctx)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// Resync replaces the content of every mirror with the local snapshot
func (s *Store) Resync(ctx context.Context) error {
	var errs []error
	for _, r := range s.replicas {
		snap, err := r.replace(ctx, s.Snapshot)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Info(ctx).
			Str("mirror", r.mirror.Name()).
			Int("products", len(snap.Products)).
			Int("orders", len(snap.Orders)).
			Int("expenses", len(snap.Expenses)).
			Msg("Mirror resynchronized")
	}
	return errors.Join(errs...)
}

// MirrorStatus reports every mirror's replication state
func (s *Store) MirrorStatus() []MirrorStatus {
	out := make([]MirrorStatus, 0, len(s.replicas))
	for _, r := range s.replicas {
		out = append(out, r.status())
	}
	return out
}

// RunSync flushes pending mirror writes every interval until ctx is done
func (s *Store) RunSync(ctx context.Context, interval time.Duration) error {
	if len(s.replicas) == 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Flush(ctx)
			if n > 0 {
				logger.Info(ctx).Int("flushed", n).Msg("Pending mirror writes delivered")
			}
			if err != nil && ctx.Err() == nil {
				logger.Debug(ctx).Err(err).Msg("Mirror flush incomplete")
			}
		}
	}
}

func (s *Store) replicate(ctx context.Context, ops ...operation) error {
	var errs []error
	for _, r := range s.replicas {
		if err := r.submit(ctx, ops); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) productIndex(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
