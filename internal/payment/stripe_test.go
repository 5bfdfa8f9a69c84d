package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

const testWebhookSecret = "whsec_test"

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeProvider_ParseWebhook(t *testing.T) {
	p := NewStripe("sk_test", testWebhookSecret, nil)
	orderID := uuid.New()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_1", "object": "checkout.session", "client_reference_id": %q, "payment_status": "paid"}}
	}`, orderID))

	event, err := p.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_1", event.SessionID)
	assert.Equal(t, orderID.String(), event.OrderID)
	assert.True(t, event.Paid())
}

func TestStripeProvider_ParseWebhookDelayedPayment(t *testing.T) {
	p := NewStripe("sk_test", testWebhookSecret, nil)
	payload := []byte(`{
		"id": "evt_2",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_2", "object": "checkout.session", "payment_status": "unpaid"}}
	}`)

	event, err := p.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusUnpaid, event.PaymentStatus)
	assert.False(t, event.Paid())
}

func TestStripeProvider_ParseWebhookRejectsBadSignature(t *testing.T) {
	p := NewStripe("sk_test", testWebhookSecret, nil)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	_, err := p.ParseWebhook(payload, sign(payload, "whsec_other", time.Now()))
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	_, err = p.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	assert.True(t, errors.Is(err, ErrInvalidSignature), "stale timestamps are rejected")
}

func TestStripeProvider_ParseWebhookWithoutSecret(t *testing.T) {
	_, err := NewStripe("sk_test", "", nil).ParseWebhook([]byte("{}"), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripeProvider_CreateCheckoutSession(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_42","object":"checkout.session","url":"https://checkout.stripe.test/pay/cs_test_42"}`)
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	p := NewStripe("sk_test", testWebhookSecret, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	orderID := uuid.New()
	session, err := p.CreateCheckoutSession(context.Background(), SessionRequest{
		OrderID:    orderID,
		Currency:   "USD",
		Items:      []LineItem{{Name: "Mug", UnitAmount: 1250, Quantity: 2}},
		Shipping:   500,
		SuccessURL: "https://shop.test/ok?order={ORDER_ID}",
		CancelURL:  "https://shop.test/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_42", session.ID)
	assert.Equal(t, "https://checkout.stripe.test/pay/cs_test_42", session.URL)

	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, orderID.String(), form.Get("client_reference_id"))
	assert.Equal(t, "https://shop.test/ok?order="+orderID.String(), form.Get("success_url"))
	assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "1250", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "Shipping", form.Get("line_items[1][price_data][product_data][name]"))
	assert.Equal(t, "500", form.Get("line_items[1][price_data][unit_amount]"))
}

// stripeStub serves canned JSON bodies keyed by "METHOD path" and records the
// requests it saw.
func stripeStub(t *testing.T, responses map[string]string) (*StripeProvider, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		seen = append(seen, key)
		body, ok := responses[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"unexpected request"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return NewStripe("sk_test", testWebhookSecret, &stripe.Backends{API: backend, Connect: backend, Uploads: backend}), &seen
}

func TestStripeProvider_ExpireSession(t *testing.T) {
	ctx := context.Background()

	t.Run("open session is expired", func(t *testing.T) {
		p, seen := stripeStub(t, map[string]string{
			"GET /v1/checkout/sessions/cs_open":         `{"id":"cs_open","object":"checkout.session","status":"open"}`,
			"POST /v1/checkout/sessions/cs_open/expire": `{"id":"cs_open","object":"checkout.session","status":"expired"}`,
		})
		require.NoError(t, p.ExpireSession(ctx, "cs_open"))
		assert.Equal(t, []string{"GET /v1/checkout/sessions/cs_open", "POST /v1/checkout/sessions/cs_open/expire"}, *seen)
	})

	t.Run("completed session is reported", func(t *testing.T) {
		p, seen := stripeStub(t, map[string]string{
			"GET /v1/checkout/sessions/cs_done": `{"id":"cs_done","object":"checkout.session","status":"complete"}`,
		})
		assert.ErrorIs(t, p.ExpireSession(ctx, "cs_done"), ErrSessionCompleted)
		assert.Len(t, *seen, 1)
	})

	t.Run("expired session needs no call", func(t *testing.T) {
		p, seen := stripeStub(t, map[string]string{
			"GET /v1/checkout/sessions/cs_old": `{"id":"cs_old","object":"checkout.session","status":"expired"}`,
		})
		require.NoError(t, p.ExpireSession(ctx, "cs_old"))
		assert.Len(t, *seen, 1)
	})

	t.Run("provider refusal surfaces", func(t *testing.T) {
		p, _ := stripeStub(t, map[string]string{
			"GET /v1/checkout/sessions/cs_race": `{"id":"cs_race","object":"checkout.session","status":"open"}`,
		})
		err := p.ExpireSession(ctx, "cs_race")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSessionCompleted)
	})

	t.Run("no session", func(t *testing.T) {
		p, seen := stripeStub(t, nil)
		require.NoError(t, p.ExpireSession(ctx, ""))
		assert.Empty(t, *seen)
	})
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.CreateCheckoutSession(context.Background(), SessionRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, Disabled{}.ExpireSession(context.Background(), "cs_1"))
}
