package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/pkg/idempotency"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrDuplicateSubmission = errors.New("order already submitted")
)

type SubmitRequest struct {
	SessionID      string
	IdempotencyKey string
	Form           domain.Form
}

// Receipt is what the client needs after a successful submission: the deep
// link to open and the order summary it carries.
type Receipt struct {
	WhatsAppURL string       `json:"whatsapp_url"`
	Message     string       `json:"message"`
	Quote       domain.Quote `json:"quote"`
}

type Service struct {
	log      *slog.Logger
	settings SettingsProvider
	guard    SubmissionGuard
	orders   OrderPublisher
	now      func() time.Time
}

// NewService wires checkout. guard and orders may be nil.
func NewService(log *slog.Logger, settings SettingsProvider, guard SubmissionGuard, orders OrderPublisher) *Service {
	return &Service{
		log:      log,
		settings: settings,
		guard:    guard,
		orders:   orders,
		now:      time.Now,
	}
}

// Quote prices the current cart for the given service type.
func (s *Service) Quote(ctx context.Context, cart cartapp.Store, st domain.ServiceType) (domain.Quote, error) {
	c, err := cart.Snapshot(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	if c.IsEmpty() {
		return domain.Quote{}, ErrEmptyCart
	}
	return domain.NewQuote(c.Subtotal(), s.loadSettings(ctx), st), nil
}

// Submit validates the form, builds the order message and deep link, and
// clears the cart.
func (s *Service) Submit(ctx context.Context, cart cartapp.Store, req SubmitRequest) (Receipt, error) {
	c, err := cart.Snapshot(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if c.IsEmpty() {
		return Receipt{}, ErrEmptyCart
	}

	form := req.Form.Normalize()
	if err := form.Validate(); err != nil {
		return Receipt{}, err
	}

	var key string
	if s.guard != nil && req.IdempotencyKey != "" {
		key = idempotency.Key("checkout", req.SessionID, req.IdempotencyKey)
		seen, err := s.guard.Seen(ctx, key)
		if err != nil {
			return Receipt{}, fmt.Errorf("idempotency check: %w", err)
		}
		if seen {
			return Receipt{}, ErrDuplicateSubmission
		}
	}

	settings := s.loadSettings(ctx)

	// The order is what TakeAll removed, not the snapshot above.
	c, err = cart.TakeAll(ctx)
	if err != nil {
		s.release(ctx, key)
		return Receipt{}, fmt.Errorf("clear cart: %w", err)
	}
	if c.IsEmpty() {
		s.release(ctx, key)
		return Receipt{}, ErrEmptyCart
	}

	items := c.Items()
	quote := domain.NewQuote(c.Subtotal(), settings, form.ServiceType)
	msg := domain.Message(items, quote, form)
	link := domain.WhatsAppURL(settings.WhatsAppNumber, msg)

	if s.orders != nil {
		ev := domain.OrderSubmitted{
			SessionID:     req.SessionID,
			Customer:      form.Name,
			Phone:         form.Phone,
			ServiceType:   form.ServiceType,
			PaymentMethod: form.PaymentMethod,
			ItemCount:     c.TotalItems(),
			Subtotal:      quote.Subtotal,
			DeliveryFee:   quote.DeliveryFee,
			Total:         quote.Total,
			Message:       msg,
			WhatsAppURL:   link,
			SubmittedAt:   s.now().UTC(),
		}
		if err := s.orders.Publish(ctx, ev); err != nil {
			s.log.Error("order event publish failed", "session_id", req.SessionID, "err", err)
		}
	}

	s.log.Info("order submitted",
		"session_id", req.SessionID,
		"service_type", form.ServiceType,
		"items", c.TotalItems(),
		"total", quote.Total.StringFixed(2),
	)
	return Receipt{WhatsAppURL: link, Message: msg, Quote: quote}, nil
}

// release lets a failed submission be retried with the same key.
func (s *Service) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.guard.Forget(ctx, key); err != nil {
		s.log.Warn("idempotency key release failed", "key", key, "err", err)
	}
}

// loadSettings never fails: an unavailable settings source falls back to the
// defaults so the shopper can still order.
func (s *Service) loadSettings(ctx context.Context) domain.Settings {
	st, err := s.settings.Settings(ctx)
	if err != nil {
		s.log.Warn("store settings unavailable, using defaults", "err", err)
		return domain.DefaultSettings()
	}
	if st.WhatsAppNumber == "" {
		st.WhatsAppNumber = domain.DefaultWhatsAppNumber
	}
	return st
}
