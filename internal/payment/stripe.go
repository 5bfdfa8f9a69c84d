package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider uses Stripe Checkout in payment mode.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripe builds a provider. backends may be nil to use the live Stripe API.
func NewStripe(secretKey, webhookSecret string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	currency := strings.ToLower(req.Currency)
	orderID := req.OrderID.String()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(withOrderID(req.SuccessURL, orderID)),
		CancelURL:         stripe.String(withOrderID(req.CancelURL, orderID)),
		ClientReferenceID: stripe.String(orderID),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("order_id", orderID)

	for _, item := range req.Items {
		params.LineItems = append(params.LineItems, lineItem(currency, item))
	}
	if req.Shipping > 0 {
		params.LineItems = append(params.LineItems, lineItem(currency, LineItem{
			Name:       "Shipping",
			UnitAmount: req.Shipping,
			Quantity:   1,
		}))
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) ExpireSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	s, err := p.api.CheckoutSessions.Get(sessionID, getParams)
	if err != nil {
		return fmt.Errorf("stripe: get checkout session: %w", err)
	}
	switch s.Status {
	case stripe.CheckoutSessionStatusComplete:
		return ErrSessionCompleted
	case stripe.CheckoutSessionStatusExpired:
		return nil
	}

	// Stripe refuses to expire a session the customer completed meanwhile,
	// so a successful call guarantees no payment can follow.
	expireParams := &stripe.CheckoutSessionExpireParams{}
	expireParams.Context = ctx
	if _, err := p.api.CheckoutSessions.Expire(sessionID, expireParams); err != nil {
		return fmt.Errorf("stripe: expire checkout session: %w", err)
	}
	return nil
}

func lineItem(currency string, item LineItem) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(item.Name),
			},
			UnitAmount: stripe.Int64(item.UnitAmount),
		},
		Quantity: stripe.Int64(item.Quantity),
	}
}

// ParseWebhook verifies the Stripe-Signature header and extracts the checkout
// session the event refers to. Events for other objects come back with an
// empty SessionID.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if p.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil || !strings.HasPrefix(out.Type, "checkout.session.") {
		return out, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	out.SessionID = session.ID
	out.PaymentStatus = string(session.PaymentStatus)
	out.OrderID = session.ClientReferenceID
	if out.OrderID == "" {
		out.OrderID = session.Metadata["order_id"]
	}
	return out, nil
}

// withOrderID fills the {ORDER_ID} placeholder of a redirect URL.
func withOrderID(url, orderID string) string {
	return strings.ReplaceAll(url, "{ORDER_ID}", orderID)
}
