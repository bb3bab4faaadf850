package handler

import (
	"io"
	"net/http"

	"app/internal/payments"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Stripe Webhookの受け口。
// 署名検証に失敗したら400。検証を通ったイベントは処理結果に関わらず200を返す。
// ここで5xxを返すとStripeが再送し続けるため、課金後の失敗はログと通知で拾う。
type WebhookHandler struct {
	verifier    payments.WebhookVerifier
	fulfillment *usecase.FulfillmentUsecase
	logger      *zap.Logger
}

// DI
func NewWebhookHandler(verifier payments.WebhookVerifier, fulfillment *usecase.FulfillmentUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, fulfillment: fulfillment, logger: logger}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/webhook/stripe", h.handle)
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Status   string `json:"status,omitempty"`
}

func (h *WebhookHandler) handle(c echo.Context) error {
	//署名検証には生のボディが要る
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payload"})
	}

	event, err := h.verifier.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		//検証前のリクエストは信用しない。副作用なしで弾く
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid signature"})
	}

	if event.Type != payments.EventTypePaymentIntentSucceeded {
		//関心のないイベントも受領だけはする
		return c.JSON(http.StatusOK, webhookResponse{Received: true, Status: "ignored"})
	}

	result, err := h.fulfillment.HandlePaymentSucceeded(c.Request().Context(), event.PaymentIntent)
	if err != nil {
		//課金は済んでいる。再送ループを避けるため200で受領し、ログで追う
		h.logger.Error("fulfillment failed after captured payment",
			zap.String("payment_intent_id", event.PaymentIntent.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, webhookResponse{Received: true, Status: "error"})
	}

	status := "processed"
	switch {
	case result.Duplicate:
		status = "duplicate"
	case result.Skipped:
		status = "skipped"
	case result.NeedsReview:
		status = "needs_review"
	}
	return c.JSON(http.StatusOK, webhookResponse{Received: true, Status: status})
}
