package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/store"
	"github.com/tair/pos-core/pkg/logger"
)

// Store is the part of the record store a checkout needs
type Store interface {
	domain.Clock
	Product(id int64) (domain.Product, bool)
	ProductBySKU(sku string) (domain.Product, bool)
	PlaceOrder(ctx context.Context, order domain.Order) error
}

// ScanResult reports the outcome of one scanned frame
type ScanResult struct {
	Code    string `json:"code,omitempty"`
	Matched bool   `json:"matched"`
	Line    *Line  `json:"line,omitempty"`
}

type entry struct {
	mu   sync.Mutex
	cart *Cart
}

// Service keeps the open carts of every operator and commits them as
// orders through the record store
type Service struct {
	store   Store
	scanner *scanner.Device
	haptics scanner.Haptics

	mu    sync.RWMutex
	carts map[uuid.UUID]*entry
}

func NewService(s Store, device *scanner.Device, haptics scanner.Haptics) *Service {
	if device == nil {
		device = scanner.NewDevice(nil)
	}
	if haptics == nil {
		haptics = scanner.LogHaptics{}
	}
	return &Service{
		store:   s,
		scanner: device,
		haptics: haptics,
		carts:   make(map[uuid.UUID]*entry),
	}
}

// Open creates an empty cart
func (s *Service) Open(ctx context.Context, operator string) View {
	c := newCart(operator, s.store.Now())

	s.mu.Lock()
	s.carts[c.ID] = &entry{cart: c}
	count := len(s.carts)
	s.mu.Unlock()

	openCarts.Set(float64(count))
	logger.Debug(ctx).Str("cart_id", c.ID.String()).Str("operator", operator).Msg("Cart opened")
	return c.View()
}

// Discard drops a cart without committing it
func (s *Service) Discard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.carts[id]
	delete(s.carts, id)
	count := len(s.carts)
	s.mu.Unlock()

	if !ok {
		return ErrCartNotFound
	}
	openCarts.Set(float64(count))
	logger.Debug(ctx).Str("cart_id", id.String()).Msg("Cart discarded")
	return nil
}

func (s *Service) Get(id uuid.UUID) (View, error) {
	var view View
	err := s.with(id, func(c *Cart) error {
		view = c.View()
		return nil
	})
	return view, err
}

func (s *Service) with(id uuid.UUID, fn func(c *Cart) error) error {
	s.mu.RLock()
	e, ok := s.carts[id]
	s.mu.RUnlock()
	if !ok {
		return ErrCartNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.cart)
}

// AddProduct adds qty units of a catalog product, using its current price,
// cost and stock
func (s *Service) AddProduct(ctx context.Context, id uuid.UUID, productID int64, qty int) (View, error) {
	product, ok := s.store.Product(productID)
	if !ok {
		return View{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, productID)
	}
	return s.addProduct(ctx, id, product, qty)
}

func (s *Service) addProduct(ctx context.Context, id uuid.UUID, product domain.Product, qty int) (View, error) {
	var view View
	err := s.with(id, func(c *Cart) error {
		if _, err := c.AddLine(product, qty); err != nil {
			return err
		}
		view = c.View()
		return nil
	})
	if err != nil {
		logger.Debug(ctx).Err(err).Str("cart_id", id.String()).Int64("product_id", product.ID).Msg("Line not added")
		return View{}, err
	}
	return view, nil
}

// AddCustom adds a line with no backing product
func (s *Service) AddCustom(ctx context.Context, id uuid.UUID, name string, price float64) (View, error) {
	key := "custom-" + strconv.FormatInt(s.store.NextID(), 10)

	var view View
	err := s.with(id, func(c *Cart) error {
		if _, err := c.AddCustomLine(key, name, price); err != nil {
			return err
		}
		view = c.View()
		return nil
	})
	return view, err
}

// SetQuantity applies delta to a line, checking catalog lines against the
// product's current stock
func (s *Service) SetQuantity(ctx context.Context, id uuid.UUID, key string, delta int) (View, error) {
	var view View
	err := s.with(id, func(c *Cart) error {
		stock := 0
		for _, l := range c.lines {
			if l.Key == key && !l.Custom {
				if p, ok := s.store.Product(l.ProductID); ok {
					stock = p.Stock
				}
			}
		}
		if _, _, err := c.SetLineQuantity(key, delta, stock); err != nil {
			return err
		}
		view = c.View()
		return nil
	})
	return view, err
}

// OverridePrice changes the price of one line without touching the catalog
func (s *Service) OverridePrice(ctx context.Context, id uuid.UUID, key string, price float64) (View, error) {
	var view View
	err := s.with(id, func(c *Cart) error {
		line, err := c.OverrideLinePrice(key, price)
		if err != nil {
			return err
		}
		logger.Info(ctx).
			Str("cart_id", id.String()).
			Str("line", key).
			Float64("price", line.Price).
			Msg("Line price overridden")
		view = c.View()
		return nil
	})
	return view, err
}

// AddCode adds the catalog product whose SKU or barcode equals code
func (s *Service) AddCode(ctx context.Context, id uuid.UUID, code string) (ScanResult, View, error) {
	result := ScanResult{Code: code}

	product, ok := s.store.ProductBySKU(code)
	if !ok {
		s.haptics.Vibrate(ctx, scanner.FailurePattern...)
		scansTotal.WithLabelValues("unknown").Inc()
		view, err := s.Get(id)
		return result, view, err
	}

	view, err := s.addProduct(ctx, id, product, 1)
	if err != nil {
		s.haptics.Vibrate(ctx, scanner.FailurePattern...)
		scansTotal.WithLabelValues("rejected").Inc()
		return result, View{}, err
	}

	s.haptics.Vibrate(ctx, scanner.SuccessPattern...)
	scansTotal.WithLabelValues("matched").Inc()
	result.Matched = true
	for _, l := range view.Lines {
		if l.ProductID == product.ID && !l.Custom {
			result.Line = &l
			break
		}
	}
	return result, view, nil
}

// Scan decodes one frame on the shared scanner and adds the matching
// product. A frame without a code is not an error.
func (s *Service) Scan(ctx context.Context, id uuid.UUID, frame []byte) (ScanResult, View, error) {
	session, err := s.scanner.Open(ctx)
	if err != nil {
		return ScanResult{}, View{}, err
	}
	defer session.Close()

	code, err := session.Decode(ctx, frame)
	if errors.Is(err, scanner.ErrNoMatch) {
		scansTotal.WithLabelValues("no_code").Inc()
		view, getErr := s.Get(id)
		return ScanResult{}, view, getErr
	}
	if err != nil {
		return ScanResult{}, View{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	return s.AddCode(ctx, id, code)
}

// Commit turns the cart into a paid order. The stock of every catalog line
// is checked against the record store at commit time. The cart is cleared
// once the order is recorded, even if a remote mirror rejected it.
func (s *Service) Commit(ctx context.Context, id uuid.UUID, method domain.PaymentMethod) (domain.Order, error) {
	method, err := domain.ParsePaymentMethod(string(method))
	if err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err = s.with(id, func(c *Cart) error {
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		order = s.buildOrder(c, method)
		if err := s.store.PlaceOrder(ctx, order); err != nil {
			if errors.Is(err, store.ErrMirror) {
				c.Clear()
			}
			return err
		}
		c.Clear()
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, store.ErrMirror):
		logger.Warn(ctx).Err(err).Str("order_id", order.ID).Msg("Order recorded locally, mirror pending")
	default:
		logger.Info(ctx).Err(err).Str("cart_id", id.String()).Msg("Checkout rejected")
		return domain.Order{}, err
	}

	checkoutsTotal.WithLabelValues(string(method)).Inc()
	checkoutAmount.WithLabelValues(string(method)).Observe(order.Amount)
	logger.Info(ctx).
		Str("cart_id", id.String()).
		Str("order_id", order.ID).
		Float64("amount", order.Amount).
		Int("items", order.ItemCount).
		Msg("Checkout completed")
	return order, err
}

func (s *Service) buildOrder(c *Cart, method domain.PaymentMethod) domain.Order {
	return domain.NewOrder(s.store.NextID(), s.store.Now().Location(), c.Items(), method)
}
