// Package checkout places orders from a cart: contact details, shipping method,
// payment session and completion.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"macollections.com/storefront/internal/commerce"
)

// DefaultPaymentProvider is the backend's manual payment provider.
const DefaultPaymentProvider = "pp_system_default"

// ErrEmptyCart is returned when the cart has no items.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// FormError carries validation problems back to the form.
type FormError struct {
	Fields FieldErrors
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "checkout: invalid form: " + strings.Join(keys, ", ")
}

// Backend is the subset of the store API the checkout needs.
type Backend interface {
	ListShippingOptions(ctx context.Context, cartID string) ([]commerce.ShippingOption, error)
	UpdateCart(ctx context.Context, cartID string, update commerce.CartUpdate) (*commerce.Cart, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*commerce.Cart, error)
	InitiatePaymentSession(ctx context.Context, cart *commerce.Cart, providerID string) (commerce.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (commerce.Order, error)
}

var _ Backend = (*commerce.Client)(nil)

// Service runs the checkout sequence.
type Service struct {
	api      Backend
	provider string
	logger   *zap.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithPaymentProvider overrides the payment provider id.
func WithPaymentProvider(id string) Option {
	return func(s *Service) {
		if strings.TrimSpace(id) != "" {
			s.provider = strings.TrimSpace(id)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a checkout service backed by api.
func NewService(api Backend, opts ...Option) *Service {
	s := &Service{api: api, provider: DefaultPaymentProvider, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place validates the form and completes the cart. Steps run in order and the
// first failure stops the sequence; the cart is left as the backend has it.
func (s *Service) Place(ctx context.Context, cart *commerce.Cart, form Form) (commerce.Order, error) {
	if cart == nil || len(cart.Items) == 0 {
		return commerce.Order{}, ErrEmptyCart
	}
	if errs := form.Validate(); errs != nil {
		return commerce.Order{}, &FormError{Fields: errs}
	}

	options, err := s.api.ListShippingOptions(ctx, cart.ID)
	if err != nil {
		return commerce.Order{}, fmt.Errorf("checkout shipping_options: %w", err)
	}
	if !offered(options, form.ShippingOptionID) {
		return commerce.Order{}, &FormError{Fields: FieldErrors{"shipping_option_id": "checkout.error.shipping"}}
	}

	addr := form.Address
	_, err = s.api.UpdateCart(ctx, cart.ID, commerce.CartUpdate{
		Email:           form.Email,
		ShippingAddress: &addr,
		BillingAddress:  &addr,
	})
	if err != nil {
		return commerce.Order{}, fmt.Errorf("checkout update_cart: %w", err)
	}
	updated, err := s.api.AddShippingMethod(ctx, cart.ID, form.ShippingOptionID)
	if err != nil {
		return commerce.Order{}, fmt.Errorf("checkout shipping_method: %w", err)
	}
	if updated == nil {
		updated = cart
	}
	if _, err := s.api.InitiatePaymentSession(ctx, updated, s.provider); err != nil {
		return commerce.Order{}, fmt.Errorf("checkout payment_session: %w", err)
	}
	order, err := s.api.CompleteCart(ctx, cart.ID)
	if err != nil {
		return commerce.Order{}, fmt.Errorf("checkout complete: %w", err)
	}
	s.logger.Info("order placed",
		zap.String("cart_id", cart.ID),
		zap.String("order_id", order.ID),
		zap.Int("display_id", order.DisplayID),
	)
	return order, nil
}

func offered(options []commerce.ShippingOption, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}
