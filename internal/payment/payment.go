// Package payment creates hosted checkout sessions with the payment provider
// and verifies the webhooks it sends back.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventCheckoutExpired       = "checkout.session.expired"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

// Payment status of a checkout session.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

var (
	ErrNotConfigured    = errors.New("payment provider is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrSessionCompleted is returned by ExpireSession when the customer has
	// already finished the session.
	ErrSessionCompleted = errors.New("payment session already completed")
)

// LineItem amounts are in minor units (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	OrderID       uuid.UUID
	Currency      string
	CustomerEmail string
	Items         []LineItem
	// Shipping is added as its own line when positive.
	Shipping   int64
	SuccessURL string
	CancelURL  string
}

// Session is the hosted checkout page the customer is redirected to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is the provider-neutral view of a verified webhook.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	OrderID       string
	PaymentStatus string
}

// Paid reports whether the funds behind the session have been captured.
// Delayed payment methods complete their session while still unpaid.
func (e *Event) Paid() bool {
	return e.PaymentStatus == PaymentStatusPaid || e.PaymentStatus == PaymentStatusNoPaymentRequired
}

type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	// ExpireSession makes an open session unpayable. Sessions that already
	// expired are fine; completed ones yield ErrSessionCompleted.
	ExpireSession(ctx context.Context, sessionID string) error
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// Disabled is used when no provider credentials are configured.
type Disabled struct{}

func (Disabled) CreateCheckoutSession(context.Context, SessionRequest) (*Session, error) {
	return nil, ErrNotConfigured
}

// ExpireSession has nothing to reach without credentials; no session can be
// paid through it either.
func (Disabled) ExpireSession(context.Context, string) error {
	return nil
}

func (Disabled) ParseWebhook([]byte, string) (*Event, error) {
	return nil, ErrNotConfigured
}
