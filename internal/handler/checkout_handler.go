package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// チェックアウト系の公開API
type CheckoutHandler struct {
	checkout  *usecase.CheckoutUsecase
	discounts *usecase.DiscountUsecase
}

// DI
func NewCheckoutHandler(checkout *usecase.CheckoutUsecase, discounts *usecase.DiscountUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, discounts: discounts}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/create-payment-intent", h.createPaymentIntent)
	e.POST("/api/validate-discount", h.validateDiscount)
}

// /api/create-payment-intent のリクエストボディ。
// itemsの中身（価格・在庫）はサーバ側で検証し直す。
type createPaymentIntentRequest struct {
	Items         []usecase.CartLine `json:"items" validate:"required,min=1,dive"`
	CustomerEmail string             `json:"customer_email" validate:"omitempty,email"`
	DiscountCode  string             `json:"discount_code"`
}

func (h *CheckoutHandler) createPaymentIntent(c echo.Context) error {
	var req createPaymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.checkout.CreatePaymentIntent(c.Request().Context(), usecase.CreatePaymentIntentInput{
		Items:         req.Items,
		CustomerEmail: req.CustomerEmail,
		DiscountCode:  req.DiscountCode,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type validateDiscountRequest struct {
	Code          string `json:"code" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

func (h *CheckoutHandler) validateDiscount(c echo.Context) error {
	var req validateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "code is required"})
	}

	out, err := h.discounts.Preview(c.Request().Context(), req.Code, req.CustomerEmail)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
