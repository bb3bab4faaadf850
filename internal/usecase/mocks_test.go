package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	"app/internal/payments"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// 共通ヘルパー
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	assert.Error(t, err)
	if err != nil {
		assert.Contains(t, err.Error(), want)
	}
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok, "expected HTTPError, got %v", err)
	if ok {
		assert.Equal(t, status, he.Status)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

// テスト用Dispatcher。Startしないのでキューに積むだけで送信はしない。
func newStubDispatcher() *notification.Dispatcher {
	logger := zap.NewNop()
	mailer := notification.NewResendMailer("", logger)
	return notification.NewDispatcher(mailer, new(OrderRepoMock), logger, "shop@example.com", "ops@example.com")
}

// =====================
// Repository mocks
// =====================

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) FindVariant(ctx context.Context, productID int64, size string) (model.ProductVariant, error) {
	args := m.Called(ctx, productID, size)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *InventoryRepoMock) FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *InventoryRepoMock) ListVariantsByProduct(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.ProductVariant)
	return items, args.Error(1)
}

func (m *InventoryRepoMock) ListVariantsByProducts(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productIDs)
	items, _ := args.Get(0).([]model.ProductVariant)
	return items, args.Error(1)
}

func (m *InventoryRepoMock) CreateVariant(ctx context.Context, v model.ProductVariant) (int64, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) SetStock(ctx context.Context, variantID int64, newStock int64) error {
	args := m.Called(ctx, variantID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateTransaction(ctx context.Context, txn model.StockTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *InventoryRepoMock) ListTransactionsByVariant(ctx context.Context, variantID int64, limit int) ([]model.StockTransaction, error) {
	args := m.Called(ctx, variantID, limit)
	items, _ := args.Get(0).([]model.StockTransaction)
	return items, args.Error(1)
}

func (m *InventoryRepoMock) ListLowStock(ctx context.Context, threshold int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, threshold)
	items, _ := args.Get(0).([]model.ProductVariant)
	return items, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (model.Order, bool, error) {
	args := m.Called(ctx, paymentIntentID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) NextOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkConfirmationEmailSent(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	args := m.Called(ctx, customerID)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) ListForAnalytics(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ExistsForVariants(ctx context.Context, variantIDs []int64) (bool, error) {
	args := m.Called(ctx, variantIDs)
	return args.Bool(0), args.Error(1)
}

type CustomerRepoMock struct{ mock.Mock }

func (m *CustomerRepoMock) FindByEmail(ctx context.Context, email string) (model.Customer, bool, error) {
	args := m.Called(ctx, email)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Bool(1), args.Error(2)
}

func (m *CustomerRepoMock) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Error(1)
}

func (m *CustomerRepoMock) Create(ctx context.Context, c model.Customer) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CustomerRepoMock) List(ctx context.Context, f repo.CustomerListFilter) ([]model.Customer, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Customer)
	return items, args.Get(1).(int64), args.Error(2)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, a model.Address) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

type DiscountRepoMock struct{ mock.Mock }

func (m *DiscountRepoMock) FindByCode(ctx context.Context, code string) (model.DiscountCode, bool, error) {
	args := m.Called(ctx, code)
	d, _ := args.Get(0).(model.DiscountCode)
	return d, args.Bool(1), args.Error(2)
}

func (m *DiscountRepoMock) FindByID(ctx context.Context, discountCodeID int64) (model.DiscountCode, error) {
	args := m.Called(ctx, discountCodeID)
	d, _ := args.Get(0).(model.DiscountCode)
	return d, args.Error(1)
}

func (m *DiscountRepoMock) HasUsage(ctx context.Context, discountCodeID int64, customerEmail string) (bool, error) {
	args := m.Called(ctx, discountCodeID, customerEmail)
	return args.Bool(0), args.Error(1)
}

func (m *DiscountRepoMock) CreateUsage(ctx context.Context, usage model.DiscountCodeUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListActive(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Deactivate(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// =====================
// TransactionManager（fake）
// =====================

// 渡されたmockをそのまま返すTx。コミット/ロールバックの検証はしない。
type txManagerStub struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	customers  *CustomerRepoMock
	addresses  *AddressRepoMock
	discounts  *DiscountRepoMock
}

func (tm *txManagerStub) Orders() repo.OrderRepository         { return tm.orders }
func (tm *txManagerStub) OrderItems() repo.OrderItemRepository { return tm.orderItems }
func (tm *txManagerStub) Inventory() repo.InventoryRepository  { return tm.inventory }
func (tm *txManagerStub) Products() repo.ProductRepository     { return tm.products }
func (tm *txManagerStub) Customers() repo.CustomerRepository   { return tm.customers }
func (tm *txManagerStub) Addresses() repo.AddressRepository    { return tm.addresses }
func (tm *txManagerStub) Discounts() repo.DiscountRepository   { return tm.discounts }

func (tm *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(tm)
}

// =====================
// Payments mock
// =====================

type IntentCreatorMock struct{ mock.Mock }

func (m *IntentCreatorMock) CreatePaymentIntent(ctx context.Context, in payments.CreateIntentInput) (payments.CreateIntentOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(payments.CreateIntentOutput)
	return out, args.Error(1)
}
