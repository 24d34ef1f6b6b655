package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wellspring/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// CheckoutInput describes a hosted checkout session to create.
type CheckoutInput struct {
	OrderID       string
	CustomerEmail string
	Currency      string
	Lines         []model.OrderLine
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the gateway's answer to a checkout request.
type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error)
}

// EventVerifier authenticates a raw webhook delivery and decodes it.
type EventVerifier interface {
	Verify(payload []byte, signature string) (Event, error)
}

// StripeGateway creates Stripe Checkout Sessions.
type StripeGateway struct {
	api    *client.API
	logger zerolog.Logger
}

// NewStripeGateway creates a gateway authenticated with secretKey.
func NewStripeGateway(secretKey string, logger zerolog.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:    api,
		logger: logger.With().Str("component", "stripe_gateway").Logger(),
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.OrderID),
		LineItems:         LineItems(in.Lines, in.Currency),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"order_id": in.OrderID},
		},
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	params.AddMetadata("order_id", in.OrderID)
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error().Err(err).Str("order_id", in.OrderID).Msg("failed to create checkout session")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info().
		Str("order_id", in.OrderID).
		Str("session_id", sess.ID).
		Msg("checkout session created")

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// LineItems converts snapshot lines into gateway line items priced in minor units.
func LineItems(lines []model.OrderLine, currency string) []*stripe.CheckoutSessionLineItemParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		name := line.Name
		if line.BookingDate != "" {
			name = strings.TrimSpace(fmt.Sprintf("%s (%s %s)", line.Name, line.BookingDate, line.BookingTime))
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(currency)),
				UnitAmount: stripe.Int64(MinorUnits(line.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
		})
	}
	return items
}

// MinorUnits converts a two-decimal currency amount into cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// StripeVerifier checks the Stripe-Signature header against the endpoint secret.
type StripeVerifier struct {
	secret string
}

// NewStripeVerifier creates a verifier for the given webhook signing secret.
func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, model.ErrInvalidSignature
	}
	return translate(evt)
}

// translate extracts the identifiers of a verified Stripe event.
func translate(evt stripe.Event) (Event, error) {
	out := Event{
		ID:   evt.ID,
		Type: string(evt.Type),
		Kind: ParseEventKind(string(evt.Type)),
	}
	if evt.Data == nil {
		return out, nil
	}

	switch out.Kind {
	case CheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &sess); err != nil {
			return out, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		out.SessionID = sess.ID
		if sess.PaymentIntent != nil {
			out.PaymentIntentID = sess.PaymentIntent.ID
		}
		out.OrderID = firstNonEmpty(sess.Metadata["order_id"], sess.ClientReferenceID)
		out.CustomerEmail = sess.CustomerEmail
		if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
			out.CustomerEmail = sess.CustomerDetails.Email
		}
	case PaymentIntentSucceeded, PaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return out, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		out.PaymentIntentID = pi.ID
		out.OrderID = pi.Metadata["order_id"]
	case ChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(evt.Data.Raw, &ch); err != nil {
			return out, fmt.Errorf("failed to decode charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			out.PaymentIntentID = ch.PaymentIntent.ID
		}
		out.OrderID = ch.Metadata["order_id"]
	}

	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
