package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/notification"
	"app/internal/payments"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type VerifierMock struct{ mock.Mock }

func (m *VerifierMock) VerifyEvent(payload []byte, signatureHeader string) (payments.Event, error) {
	args := m.Called(payload, signatureHeader)
	ev, _ := args.Get(0).(payments.Event)
	return ev, args.Error(1)
}

type WHOrderRepoMock struct{ mock.Mock }

func (m *WHOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (model.Order, bool, error) {
	args := m.Called(ctx, paymentIntentID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *WHOrderRepoMock) NextOrderNumber(ctx context.Context) (string, error) {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) MarkConfirmationEmailSent(ctx context.Context, orderID int64) error {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	panic("not used in webhook handler tests")
}

func (m *WHOrderRepoMock) ListForAnalytics(ctx context.Context) ([]model.Order, error) {
	panic("not used in webhook handler tests")
}

// 冪等パス（重複イベント）だけを通すFulfillmentUsecaseを組む
func newWebhookFixture(t *testing.T, verifier *VerifierMock, orders *WHOrderRepoMock) *handler.WebhookHandler {
	t.Helper()
	logger := zap.NewNop()
	mailer := notification.NewResendMailer("", logger)
	dispatcher := notification.NewDispatcher(mailer, orders, logger, "shop@example.com", "ops@example.com")

	fulfillment := usecase.NewFulfillmentUsecase(
		nil, orders, nil, nil, nil, nil,
		nil, nil, dispatcher, logger,
	)
	return handler.NewWebhookHandler(verifier, fulfillment, logger)
}

func postWebhook(h *handler.WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	h.RegisterRoutes(e)
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_BadSignatureRejectedWithoutSideEffects(t *testing.T) {
	verifier := new(VerifierMock)
	orders := new(WHOrderRepoMock)
	h := newWebhookFixture(t, verifier, orders)

	verifier.On("VerifyEvent", mock.Anything, "bad-sig").
		Return(payments.Event{}, payments.ErrInvalidSignature)

	rec := postWebhook(h, `{"id":"evt_1"}`, "bad-sig")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	//署名が通らないイベントはDBに触らない
	orders.AssertNotCalled(t, "FindByPaymentIntentID", mock.Anything, mock.Anything)
}

func TestWebhookHandler_IgnoresOtherEventTypes(t *testing.T) {
	verifier := new(VerifierMock)
	orders := new(WHOrderRepoMock)
	h := newWebhookFixture(t, verifier, orders)

	verifier.On("VerifyEvent", mock.Anything, "sig").
		Return(payments.Event{Type: "charge.refunded"}, nil)

	rec := postWebhook(h, `{"id":"evt_2"}`, "sig")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ignored"`)

	orders.AssertNotCalled(t, "FindByPaymentIntentID", mock.Anything, mock.Anything)
}

func TestWebhookHandler_DuplicateEventAcknowledged(t *testing.T) {
	verifier := new(VerifierMock)
	orders := new(WHOrderRepoMock)
	h := newWebhookFixture(t, verifier, orders)

	verifier.On("VerifyEvent", mock.Anything, "sig").
		Return(payments.Event{
			Type:          payments.EventTypePaymentIntentSucceeded,
			PaymentIntent: payments.EventPaymentIntent{ID: "pi_1"},
		}, nil)
	orders.On("FindByPaymentIntentID", mock.Anything, "pi_1").
		Return(model.Order{ID: 1, OrderNumber: "PLG-00001"}, true, nil)

	rec := postWebhook(h, `{"id":"evt_3"}`, "sig")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"duplicate"`)
}

func TestWebhookHandler_FulfillmentErrorStillReturns200(t *testing.T) {
	verifier := new(VerifierMock)
	orders := new(WHOrderRepoMock)
	h := newWebhookFixture(t, verifier, orders)

	verifier.On("VerifyEvent", mock.Anything, "sig").
		Return(payments.Event{
			Type:          payments.EventTypePaymentIntentSucceeded,
			PaymentIntent: payments.EventPaymentIntent{ID: "pi_2"},
		}, nil)
	//冪等性チェック自体が失敗するケース
	orders.On("FindByPaymentIntentID", mock.Anything, "pi_2").
		Return(model.Order{}, false, assert.AnError)

	//課金済みの失敗は200で受領してログに回す（Stripeの再送ループ防止）
	rec := postWebhook(h, `{"id":"evt_4"}`, "sig")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}
