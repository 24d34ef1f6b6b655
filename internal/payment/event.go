// Package payment turns payment gateway events into order state transitions.
package payment

// EventKind is the closed set of gateway events the order lifecycle reacts to.
type EventKind int

const (
	Unknown EventKind = iota
	CheckoutSessionCompleted
	PaymentIntentSucceeded
	PaymentIntentFailed
	ChargeRefunded
)

var eventNames = map[string]EventKind{
	"checkout.session.completed":    CheckoutSessionCompleted,
	"payment_intent.succeeded":      PaymentIntentSucceeded,
	"payment_intent.payment_failed": PaymentIntentFailed,
	"charge.refunded":               ChargeRefunded,
}

// ParseEventKind maps a gateway event type name to its kind. Names outside the
// closed set map to Unknown.
func ParseEventKind(name string) EventKind {
	if k, ok := eventNames[name]; ok {
		return k
	}
	return Unknown
}

func (k EventKind) String() string {
	switch k {
	case CheckoutSessionCompleted:
		return "checkout.session.completed"
	case PaymentIntentSucceeded:
		return "payment_intent.succeeded"
	case PaymentIntentFailed:
		return "payment_intent.payment_failed"
	case ChargeRefunded:
		return "charge.refunded"
	default:
		return "unknown"
	}
}

// Event is a verified gateway event reduced to the identifiers the order
// lifecycle needs.
type Event struct {
	ID              string
	Type            string
	Kind            EventKind
	SessionID       string
	PaymentIntentID string
	OrderID         string
	CustomerEmail   string
}

// LookupKey says which identifier locates the order an event refers to.
type LookupKey int

const (
	LookupNone LookupKey = iota
	LookupBySession
	LookupByPaymentIntent
)

// Lookup returns how the order for an event of kind k is found.
func Lookup(k EventKind) LookupKey {
	switch k {
	case CheckoutSessionCompleted:
		return LookupBySession
	case PaymentIntentSucceeded, PaymentIntentFailed, ChargeRefunded:
		return LookupByPaymentIntent
	default:
		return LookupNone
	}
}
