package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/payments"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type checkoutFixture struct {
	inv     *InventoryRepoMock
	dRepo   *DiscountRepoMock
	intents *IntentCreatorMock
	uc      *usecase.CheckoutUsecase
}

func newCheckoutFixture(discountsEnabled bool) checkoutFixture {
	inv := new(InventoryRepoMock)
	dRepo := new(DiscountRepoMock)
	intents := new(IntentCreatorMock)

	tm := &txManagerStub{inventory: inv}
	inventoryUC := usecase.NewInventoryUsecase(tm, inv)
	discountUC := usecase.NewDiscountUsecase(dRepo, discountsEnabled)
	pricing := usecase.NewPricingEngine(5000, 495)

	return checkoutFixture{
		inv:     inv,
		dRepo:   dRepo,
		intents: intents,
		uc:      usecase.NewCheckoutUsecase(inventoryUC, discountUC, pricing, intents),
	}
}

func TestCheckoutUsecase_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(true)

	_, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cart is empty")
}

func TestCheckoutUsecase_InvalidQuantity(t *testing.T) {
	f := newCheckoutFixture(true)

	_, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items: []usecase.CartLine{{ProductID: 1, Name: "Tee", Size: "M", Quantity: 0, Price: 2500}},
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestCheckoutUsecase_StockUnavailable(t *testing.T) {
	f := newCheckoutFixture(true)

	f.inv.On("FindVariant", mock.Anything, int64(1), "M").
		Return(model.ProductVariant{ID: 10, StockQuantity: 1}, nil)

	_, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items: []usecase.CartLine{{ProductID: 1, Name: "Tour Tee", Size: "M", Quantity: 3, Price: 2500}},
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "Insufficient stock for Tour Tee")

	//在庫不足ならStripeは呼ばない
	f.intents.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_BelowMinimumCharge(t *testing.T) {
	//送料0の設定で合計が最小請求額を割るケースを作る
	inv := new(InventoryRepoMock)
	intents := new(IntentCreatorMock)
	tm := &txManagerStub{inventory: inv}
	uc := usecase.NewCheckoutUsecase(
		usecase.NewInventoryUsecase(tm, inv),
		usecase.NewDiscountUsecase(new(DiscountRepoMock), true),
		usecase.NewPricingEngine(0, 0),
		intents,
	)

	inv.On("FindVariant", mock.Anything, int64(1), "M").
		Return(model.ProductVariant{ID: 10, StockQuantity: 100}, nil)

	_, err := uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items: []usecase.CartLine{{ProductID: 1, Name: "Sticker", Size: "M", Quantity: 1, Price: 20}},
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "minimum chargeable")
	intents.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_DiscountDisabled(t *testing.T) {
	f := newCheckoutFixture(false)

	f.inv.On("FindVariant", mock.Anything, int64(1), "M").
		Return(model.ProductVariant{ID: 10, StockQuantity: 10}, nil)

	_, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items:        []usecase.CartLine{{ProductID: 1, Name: "Tee", Size: "M", Quantity: 1, Price: 2500}},
		DiscountCode: "PLAGUE10",
	})
	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestCheckoutUsecase_InvalidDiscountCode(t *testing.T) {
	f := newCheckoutFixture(true)

	f.inv.On("FindVariant", mock.Anything, int64(1), "M").
		Return(model.ProductVariant{ID: 10, StockQuantity: 10}, nil)
	f.dRepo.On("FindByCode", mock.Anything, "NOPE").
		Return(model.DiscountCode{}, false, nil)

	_, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items:        []usecase.CartLine{{ProductID: 1, Name: "Tee", Size: "M", Quantity: 1, Price: 2500}},
		DiscountCode: "nope",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "invalid discount code")
}

func TestCheckoutUsecase_Success_WithDiscountAndShipping(t *testing.T) {
	f := newCheckoutFixture(true)
	ctx := context.Background()

	f.inv.On("FindVariant", mock.Anything, int64(1), "L").
		Return(model.ProductVariant{ID: 10, StockQuantity: 10}, nil)
	f.dRepo.On("FindByCode", mock.Anything, "PLAGUE10").
		Return(model.DiscountCode{ID: 7, Code: "PLAGUE10", Percentage: 10, Active: true}, true, nil)

	//subtotal 2000, discount 200, shipping 495 → total 2295
	f.intents.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(in payments.CreateIntentInput) bool {
		return in.Amount == 2295 &&
			in.Currency == "gbp" &&
			in.ReceiptEmail == "fan@example.com" &&
			in.Metadata["shipping_amount"] == "495" &&
			in.Metadata["discount_code_id"] == "7" &&
			in.Metadata["discount_amount"] == "200" &&
			in.Metadata["customer_email"] == "fan@example.com" &&
			in.Metadata["items"] != ""
	})).Return(payments.CreateIntentOutput{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)

	out, err := f.uc.CreatePaymentIntent(ctx, usecase.CreatePaymentIntentInput{
		Items:         []usecase.CartLine{{ProductID: 1, Name: "Tour Tee", Size: "L", Quantity: 2, Price: 1000}},
		CustomerEmail: "Fan@Example.com",
		DiscountCode:  "plague10",
	})
	assert.NoError(t, err)
	assert.Equal(t, "pi_123_secret", out.ClientSecret)
	assert.Equal(t, int64(2000), out.Subtotal)
	assert.Equal(t, int64(200), out.DiscountAmount)
	assert.Equal(t, int64(495), out.ShippingFee)
	assert.Equal(t, usecase.ShippingLabelStandard, out.ShippingLabel)
	assert.Equal(t, int64(2295), out.Total)

	f.intents.AssertExpectations(t)
}

func TestCheckoutUsecase_Success_FreeShipping(t *testing.T) {
	f := newCheckoutFixture(true)

	f.inv.On("FindVariant", mock.Anything, int64(2), "M").
		Return(model.ProductVariant{ID: 20, StockQuantity: 10}, nil)

	f.intents.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(in payments.CreateIntentInput) bool {
		return in.Amount == 6000 && in.Metadata["shipping_amount"] == "0"
	})).Return(payments.CreateIntentOutput{ID: "pi_456", ClientSecret: "s"}, nil)

	out, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items: []usecase.CartLine{{ProductID: 2, Name: "Hoodie", Size: "M", Quantity: 1, Price: 6000}},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.ShippingFee)
	assert.Equal(t, usecase.ShippingLabelFree, out.ShippingLabel)
	assert.Equal(t, int64(6000), out.Total)
}

func TestCheckoutUsecase_StripeFailure(t *testing.T) {
	f := newCheckoutFixture(true)

	f.inv.On("FindVariant", mock.Anything, int64(1), "M").
		Return(model.ProductVariant{ID: 10, StockQuantity: 10}, nil)
	f.intents.On("CreatePaymentIntent", mock.Anything, mock.Anything).
		Return(payments.CreateIntentOutput{}, assert.AnError)

	_, err := f.uc.CreatePaymentIntent(context.Background(), usecase.CreatePaymentIntentInput{
		Items: []usecase.CartLine{{ProductID: 1, Name: "Tee", Size: "M", Quantity: 1, Price: 2500}},
	})
	assertHTTPStatus(t, err, http.StatusBadGateway)
}
