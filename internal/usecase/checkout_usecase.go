package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"app/internal/payments"
)

type CheckoutUsecase struct {
	inventory *InventoryUsecase
	discounts *DiscountUsecase
	pricing   *PricingEngine
	intents   payments.IntentCreator
}

func NewCheckoutUsecase(
	inventory *InventoryUsecase,
	discounts *DiscountUsecase,
	pricing *PricingEngine,
	intents payments.IntentCreator,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		inventory: inventory,
		discounts: discounts,
		pricing:   pricing,
		intents:   intents,
	}
}

type CreatePaymentIntentInput struct {
	Items         []CartLine
	CustomerEmail string
	DiscountCode  string
}

type CreatePaymentIntentOutput struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`

	Subtotal       int64  `json:"subtotal"`
	ShippingFee    int64  `json:"shipping_fee"`
	ShippingLabel  string `json:"shipping_label"`
	DiscountAmount int64  `json:"discount_amount"`
	Total          int64  `json:"total"`
}

// CreatePaymentIntent はカートを検証して決済を開始する。
// カート内容はPaymentIntentのmetadataに入れてWebhookまで運ぶ。
func (u *CheckoutUsecase) CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (CreatePaymentIntentOutput, error) {
	if len(in.Items) == 0 {
		return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	var subtotal int64
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		if item.Price < 0 {
			return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		subtotal += item.Price * item.Quantity
	}

	//決済前の在庫チェック。ここで弾けばまだ課金されていない
	ok, reason, err := u.inventory.CheckAvailability(ctx, in.Items)
	if err != nil {
		return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusInternalServerError, "unable to verify stock availability")
	}
	if !ok {
		return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, reason)
	}

	email := strings.ToLower(strings.TrimSpace(in.CustomerEmail))

	//割引の適用（機能フラグoffか無効コードならエラーにする）
	var discountAmount int64
	var discountCodeID int64
	var discountCode string
	var discountPercentage int64

	if strings.TrimSpace(in.DiscountCode) != "" {
		if !u.discounts.Enabled() {
			return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusForbidden, "discount codes are disabled")
		}
		d, valid, err := u.discounts.Validate(ctx, in.DiscountCode, email)
		if err != nil {
			return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !valid {
			return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid discount code")
		}
		discountAmount = ApplyDiscount(subtotal, d.Percentage)
		discountCodeID = d.ID
		discountCode = d.Code
		discountPercentage = d.Percentage
	}

	shipping := u.pricing.ComputeShipping(subtotal)
	total := subtotal - discountAmount + shipping.Fee

	if total < MinChargeAmount {
		return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, "order total is below the minimum chargeable amount")
	}

	itemsJSON, err := json.Marshal(in.Items)
	if err != nil {
		return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to encode cart")
	}

	metadata := map[string]string{
		"items":           string(itemsJSON),
		"shipping_amount": strconv.FormatInt(shipping.Fee, 10),
	}
	if email != "" {
		metadata["customer_email"] = email
	}
	if discountCodeID != 0 {
		metadata["discount_code_id"] = strconv.FormatInt(discountCodeID, 10)
		metadata["discount_code"] = discountCode
		metadata["discount_amount"] = strconv.FormatInt(discountAmount, 10)
		metadata["discount_percentage"] = strconv.FormatInt(discountPercentage, 10)
	}

	intent, err := u.intents.CreatePaymentIntent(ctx, payments.CreateIntentInput{
		Amount:       total,
		Currency:     "gbp",
		ReceiptEmail: email,
		Metadata:     metadata,
	})
	if err != nil {
		return CreatePaymentIntentOutput{}, NewHTTPError(http.StatusBadGateway, "payment initialization failed")
	}

	return CreatePaymentIntentOutput{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Subtotal:        subtotal,
		ShippingFee:     shipping.Fee,
		ShippingLabel:   shipping.Label,
		DiscountAmount:  discountAmount,
		Total:           total,
	}, nil
}
