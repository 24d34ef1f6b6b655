package service

import (
	"context"
	"errors"
	"testing"

	"wellspring/internal/events"
	"wellspring/internal/model"
	"wellspring/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type webhookMocks struct {
	verifier  *MockVerifier
	orders    *MockOrderRepository
	events    *MockWebhookEventRepository
	publisher *MockPublisher
	tx        *MockTx
}

func newWebhookFixture() (WebhookService, *webhookMocks) {
	m := &webhookMocks{
		verifier:  new(MockVerifier),
		orders:    new(MockOrderRepository),
		events:    new(MockWebhookEventRepository),
		publisher: new(MockPublisher),
		tx:        new(MockTx),
	}
	svc := NewWebhookService(m.verifier, m.orders, m.events, m.publisher, zerolog.Nop())
	return svc, m
}

func (m *webhookMocks) assertAll(t *testing.T) {
	t.Helper()
	m.verifier.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.events.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
	m.tx.AssertExpectations(t)
}

func pendingOrder() *model.Order {
	return &model.Order{
		ID:              uuid.New(),
		CustomerEmail:   "ana@example.com",
		Status:          model.OrderStatusPending,
		StripeSessionID: "cs_test_1",
		Total:           decimal.RequireFromString("70.00"),
		Currency:        "eur",
		Metadata: model.OrderMetadata{Lines: []model.OrderLine{
			{ItemType: model.ItemTypeProduct, ItemID: "p1", Name: "Oil", Quantity: 2, Price: decimal.NewFromInt(10)},
			{ItemType: model.ItemTypeService, ItemID: "s1", Name: "Massage", Quantity: 1, Price: decimal.NewFromInt(50),
				BookingDate: "2026-11-02", BookingTime: "10:00", Duration: 60},
		}},
	}
}

var (
	testPayload   = []byte(`{"id":"evt_1"}`)
	testSignature = "t=1,v1=abc"
)

func TestWebhookService_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()

	m.verifier.On("Verify", testPayload, testSignature).Return(payment.Event{}, errors.New("bad signature"))

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	assert.Equal(t, model.ErrInvalidSignature, err)
	m.events.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	m.assertAll(t)
}

func TestWebhookService_UnknownEventAcknowledged(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_1", Type: "customer.created", Kind: payment.Unknown}, nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	m.events.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	m.assertAll(t)
}

func TestWebhookService_CheckoutCompleted_MarksPaid(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()
	order := pendingOrder()

	event := payment.Event{
		ID:              "evt_1",
		Type:            "checkout.session.completed",
		Kind:            payment.CheckoutSessionCompleted,
		SessionID:       order.StripeSessionID,
		PaymentIntentID: "pi_1",
	}

	m.verifier.On("Verify", testPayload, testSignature).Return(event, nil)
	m.events.On("Exists", ctx, "evt_1").Return(false, nil)
	m.orders.On("FindBySessionID", ctx, order.StripeSessionID).Return(order, nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.events.On("Record", ctx, m.tx, mock.MatchedBy(func(e model.WebhookEvent) bool {
		return e.ID == "evt_1" && e.Type == "checkout.session.completed"
	})).Return(true, nil)
	m.orders.On("ApplyTransition", ctx, m.tx, mock.MatchedBy(func(tr payment.Transition) bool {
		return tr.OrderID == order.ID &&
			tr.From == model.OrderStatusPending &&
			tr.To == model.OrderStatusPaid &&
			tr.PaymentIntentID == "pi_1" &&
			len(tr.Items) == 2
	})).Return(true, nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.publisher.On("PublishOrderPaid", ctx, mock.MatchedBy(func(e events.OrderPaidEvent) bool {
		return e.OrderID == order.ID && len(e.Items) == 2 && e.Items[1].BookingTime == "10:00"
	})).Return(nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	assert.True(t, m.tx.committed)
	assert.False(t, m.tx.rolledBack)
	m.assertAll(t)
}

func TestWebhookService_DuplicateDeliverySkipped(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_1", Kind: payment.CheckoutSessionCompleted, SessionID: "cs_test_1"}, nil)
	m.events.On("Exists", ctx, "evt_1").Return(true, nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	m.orders.AssertNotCalled(t, "FindBySessionID", mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	m.assertAll(t)
}

func TestWebhookService_ConcurrentRecordRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()
	order := pendingOrder()

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_1", Kind: payment.CheckoutSessionCompleted, SessionID: order.StripeSessionID}, nil)
	m.events.On("Exists", ctx, "evt_1").Return(false, nil)
	m.orders.On("FindBySessionID", ctx, order.StripeSessionID).Return(order, nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.events.On("Record", ctx, m.tx, mock.AnythingOfType("model.WebhookEvent")).Return(false, nil)
	m.tx.On("Rollback", ctx).Return(nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	assert.True(t, m.tx.rolledBack)
	m.orders.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "PublishOrderPaid", mock.Anything, mock.Anything)
	m.assertAll(t)
}

func TestWebhookService_StaleStatusRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()
	order := pendingOrder()

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_2", Kind: payment.PaymentIntentFailed, PaymentIntentID: "pi_1"}, nil)
	m.events.On("Exists", ctx, "evt_2").Return(false, nil)
	m.orders.On("FindByPaymentIntentID", ctx, "pi_1").Return(order, nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.events.On("Record", ctx, m.tx, mock.AnythingOfType("model.WebhookEvent")).Return(true, nil)
	m.orders.On("ApplyTransition", ctx, m.tx, mock.AnythingOfType("payment.Transition")).Return(false, nil)
	m.tx.On("Rollback", ctx).Return(nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	assert.True(t, m.tx.rolledBack)
	assert.False(t, m.tx.committed)
	m.assertAll(t)
}

func TestWebhookService_StoreFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()
	order := pendingOrder()

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_1", Kind: payment.CheckoutSessionCompleted, SessionID: order.StripeSessionID}, nil)
	m.events.On("Exists", ctx, "evt_1").Return(false, nil)
	m.orders.On("FindBySessionID", ctx, order.StripeSessionID).Return(order, nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.events.On("Record", ctx, m.tx, mock.AnythingOfType("model.WebhookEvent")).Return(true, nil)
	m.orders.On("ApplyTransition", ctx, m.tx, mock.AnythingOfType("payment.Transition")).
		Return(false, errors.New("connection reset"))
	m.tx.On("Rollback", ctx).Return(nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.Error(t, err)
	assert.NotEqual(t, model.ErrInvalidSignature, err)
	assert.Contains(t, err.Error(), "failed to update order")
	assert.True(t, m.tx.rolledBack)
	m.assertAll(t)
}

func TestWebhookService_OrderNotFoundAcknowledged(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_1", Kind: payment.ChargeRefunded, PaymentIntentID: "pi_404"}, nil)
	m.events.On("Exists", ctx, "evt_1").Return(false, nil)
	m.orders.On("FindByPaymentIntentID", ctx, "pi_404").Return(nil, nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	m.assertAll(t)
}

func TestWebhookService_PaymentIntentFallsBackToOrderID(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()
	order := pendingOrder()

	m.verifier.On("Verify", testPayload, testSignature).Return(payment.Event{
		ID:              "evt_3",
		Kind:            payment.PaymentIntentSucceeded,
		PaymentIntentID: "pi_9",
		OrderID:         order.ID.String(),
	}, nil)
	m.events.On("Exists", ctx, "evt_3").Return(false, nil)
	m.orders.On("FindByPaymentIntentID", ctx, "pi_9").Return(nil, nil)
	m.orders.On("GetByID", ctx, order.ID).Return(order, []model.OrderItem{}, nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.events.On("Record", ctx, m.tx, mock.AnythingOfType("model.WebhookEvent")).Return(true, nil)
	m.orders.On("ApplyTransition", ctx, m.tx, mock.MatchedBy(func(tr payment.Transition) bool {
		return tr.To == model.OrderStatusPaid && tr.PaymentIntentID == "pi_9"
	})).Return(true, nil)
	m.tx.On("Commit", ctx).Return(nil)
	m.publisher.On("PublishOrderPaid", ctx, mock.AnythingOfType("events.OrderPaidEvent")).
		Return(errors.New("broker down"))

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err, "publish failures are logged, not returned")
	m.assertAll(t)
}

func TestWebhookService_TerminalOrdersUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		status model.OrderStatus
		kind   payment.EventKind
	}{
		{"paid ignores session completed", model.OrderStatusPaid, payment.CheckoutSessionCompleted},
		{"paid ignores payment failed", model.OrderStatusPaid, payment.PaymentIntentFailed},
		{"cancelled ignores payment succeeded", model.OrderStatusCancelled, payment.PaymentIntentSucceeded},
		{"cancelled ignores refund", model.OrderStatusCancelled, payment.ChargeRefunded},
		{"refunded ignores session completed", model.OrderStatusRefunded, payment.CheckoutSessionCompleted},
		{"refunded ignores refund", model.OrderStatusRefunded, payment.ChargeRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, m := newWebhookFixture()
			order := pendingOrder()
			order.Status = tt.status
			order.StripePaymentIntentID = "pi_1"

			event := payment.Event{ID: "evt_t", Kind: tt.kind, SessionID: order.StripeSessionID, PaymentIntentID: "pi_1"}
			m.verifier.On("Verify", testPayload, testSignature).Return(event, nil)
			m.events.On("Exists", ctx, "evt_t").Return(false, nil)
			m.orders.On("FindBySessionID", ctx, order.StripeSessionID).Return(order, nil).Maybe()
			m.orders.On("FindByPaymentIntentID", ctx, "pi_1").Return(order, nil).Maybe()

			err := svc.HandleDelivery(ctx, testPayload, testSignature)

			require.NoError(t, err)
			m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
			m.publisher.AssertNotCalled(t, "PublishOrderPaid", mock.Anything, mock.Anything)
			m.assertAll(t)
		})
	}
}

func TestWebhookService_RefundOfPaidOrder(t *testing.T) {
	ctx := context.Background()
	svc, m := newWebhookFixture()
	order := pendingOrder()
	order.Status = model.OrderStatusPaid
	order.StripePaymentIntentID = "pi_1"

	m.verifier.On("Verify", testPayload, testSignature).
		Return(payment.Event{ID: "evt_r", Kind: payment.ChargeRefunded, PaymentIntentID: "pi_1"}, nil)
	m.events.On("Exists", ctx, "evt_r").Return(false, nil)
	m.orders.On("FindByPaymentIntentID", ctx, "pi_1").Return(order, nil)
	m.orders.On("BeginTx", ctx).Return(m.tx, nil)
	m.events.On("Record", ctx, m.tx, mock.AnythingOfType("model.WebhookEvent")).Return(true, nil)
	m.orders.On("ApplyTransition", ctx, m.tx, mock.MatchedBy(func(tr payment.Transition) bool {
		return tr.From == model.OrderStatusPaid && tr.To == model.OrderStatusRefunded && len(tr.Items) == 0
	})).Return(true, nil)
	m.tx.On("Commit", ctx).Return(nil)

	err := svc.HandleDelivery(ctx, testPayload, testSignature)

	require.NoError(t, err)
	m.publisher.AssertNotCalled(t, "PublishOrderPaid", mock.Anything, mock.Anything)
	m.assertAll(t)
}
