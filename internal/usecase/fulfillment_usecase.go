package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	"app/internal/payments"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// FulfillmentUsecase は決済成功イベントを注文に変換する。
// Stripeは同じイベントを複数回配送してくるので、全工程が冪等であること。
// 課金後の失敗はリトライせず、ログ+運用通知で手動対応に回す。
type FulfillmentUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	customers  repo.CustomerRepository
	addresses  repo.AddressRepository
	discounts  repo.DiscountRepository
	inventory  *InventoryUsecase
	discountUC *DiscountUsecase
	dispatcher *notification.Dispatcher
	logger     *zap.Logger
}

func NewFulfillmentUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	customers repo.CustomerRepository,
	addresses repo.AddressRepository,
	discounts repo.DiscountRepository,
	inventory *InventoryUsecase,
	discountUC *DiscountUsecase,
	dispatcher *notification.Dispatcher,
	logger *zap.Logger,
) *FulfillmentUsecase {
	return &FulfillmentUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		customers:  customers,
		addresses:  addresses,
		discounts:  discounts,
		inventory:  inventory,
		discountUC: discountUC,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type FulfillmentResult struct {
	OrderID     int64
	OrderNumber string

	//同じPaymentIntentの再配送だった（何もしていない）
	Duplicate bool

	//カートが空などで処理対象がなかった
	Skipped bool

	//課金済みだが在庫不足。注文は作らず手動対応に回した
	NeedsReview bool
}

// HandlePaymentSucceeded は署名検証済みのpayment_intent.succeededを処理する。
// エラーを返しても呼び出し側（Webhookハンドラ）は200を返すこと。
// 再配送ループを止めるため、課金後の失敗はHTTPには載せない。
func (u *FulfillmentUsecase) HandlePaymentSucceeded(ctx context.Context, pi payments.EventPaymentIntent) (FulfillmentResult, error) {
	log := u.logger.With(zap.String("payment_intent_id", pi.ID))

	//冪等性チェック。既にあればその注文を返して終わり
	existing, found, err := u.orders.FindByPaymentIntentID(ctx, pi.ID)
	if err != nil {
		log.Error("idempotency check failed", zap.Error(err))
		return FulfillmentResult{}, err
	}
	if found {
		log.Info("duplicate event, order already exists",
			zap.String("order_number", existing.OrderNumber))
		return FulfillmentResult{
			OrderID:     existing.ID,
			OrderNumber: existing.OrderNumber,
			Duplicate:   true,
		}, nil
	}

	//metadataからカートを取り出す
	lines, err := parseCartMetadata(pi.Metadata)
	if err != nil {
		log.Error("failed to parse cart metadata",
			zap.String("items", pi.Metadata["items"]),
			zap.Error(err))
		return FulfillmentResult{}, err
	}
	if len(lines) == 0 {
		//正規の課金では起きないはずだが、起きても注文は作らない
		log.Warn("event carried an empty cart, nothing to do")
		return FulfillmentResult{Skipped: true}, nil
	}

	email := customerEmail(pi)

	//課金済みなので在庫不足でも例外にはしない。注文を作らず手動対応へ
	ok, reason, err := u.inventory.CheckAvailability(ctx, lines)
	if err != nil {
		log.Error("availability re-check failed", zap.Error(err))
		return FulfillmentResult{}, err
	}
	if !ok {
		log.Error("stock unavailable after payment captured",
			zap.String("reason", reason),
			zap.String("customer_email", email),
			zap.Any("cart", lines))
		u.dispatcher.EnqueueOperatorAlert(
			"Stock unavailable for captured payment",
			fmt.Sprintf("PaymentIntent: %s\nCustomer: %s\nReason: %s", pi.ID, email, reason),
		)
		return FulfillmentResult{NeedsReview: true}, nil
	}

	//顧客と住所を確定
	customerID, err := u.resolveCustomer(ctx, email, pi.Shipping.Name)
	if err != nil {
		log.Error("failed to resolve customer",
			zap.String("customer_email", email), zap.Error(err))
		return FulfillmentResult{}, err
	}

	addressID, err := u.createAddress(ctx, customerID, pi.Shipping)
	if err != nil {
		log.Error("failed to create address", zap.Error(err))
		return FulfillmentResult{}, err
	}

	//割引の再検証。課金承認後に使われた等で無効になっていたら参照だけ落とす。
	//金額は実際に課金された額のままにする
	discountCodeID, discountAmount := u.revalidateDiscount(ctx, log, pi.Metadata, email)

	//注文 + 明細を作成
	order, orderRowCreated, err := u.createOrder(ctx, pi, lines, customerID, addressID, discountCodeID, discountAmount)
	if err != nil {
		if !orderRowCreated {
			//同じPaymentIntentの同時処理に負けた可能性。勝者の行を探す
			winner, found, err2 := u.orders.FindByPaymentIntentID(ctx, pi.ID)
			if err2 == nil && found {
				log.Info("lost creation race, returning existing order",
					zap.String("order_number", winner.OrderNumber))
				return FulfillmentResult{
					OrderID:     winner.ID,
					OrderNumber: winner.OrderNumber,
					Duplicate:   true,
				}, nil
			}
		}

		//注文行だけ残って明細が無いケースもここに来る。自動ロールバックはしない
		log.Error("failed to create order",
			zap.String("customer_email", email),
			zap.Any("cart", lines),
			zap.Error(err))
		u.dispatcher.EnqueueOperatorAlert(
			"Order creation failed for captured payment",
			fmt.Sprintf("PaymentIntent: %s\nCustomer: %s\nError: %v", pi.ID, email, err),
		)
		return FulfillmentResult{}, err
	}

	//割引使用の記録。失敗してもログだけで注文は成立させる
	if discountCodeID != nil {
		usageErr := u.discounts.CreateUsage(ctx, model.DiscountCodeUsage{
			DiscountCodeID: *discountCodeID,
			CustomerEmail:  email,
			OrderID:        order.ID,
		})
		if usageErr != nil {
			log.Error("failed to record discount usage",
				zap.Int64("discount_code_id", *discountCodeID),
				zap.Error(usageErr))
		}
	}

	//在庫減算。注文作成後の失敗は在庫が食い違うので手動照合に回す
	if err := u.inventory.Decrement(ctx, lines, order.ID, order.OrderNumber); err != nil {
		log.Error("stock decrement failed after order creation",
			zap.String("order_number", order.OrderNumber),
			zap.Any("cart", lines),
			zap.Error(err))
		u.dispatcher.EnqueueOperatorAlert(
			"Stock decrement failed after order creation",
			fmt.Sprintf("Order: %s\nPaymentIntent: %s\nError: %v", order.OrderNumber, pi.ID, err),
		)
		return FulfillmentResult{OrderID: order.ID, OrderNumber: order.OrderNumber}, err
	}

	//確認メールはベストエフォート。失敗しても注文結果には影響しない
	items, err := u.orderItems.ListByOrderID(ctx, order.ID)
	if err != nil {
		log.Error("failed to load items for confirmation mail", zap.Error(err))
		items = nil
	}
	if email != "" {
		u.dispatcher.EnqueueOrderConfirmation(order, items, email)
	}

	log.Info("order fulfilled",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount))

	return FulfillmentResult{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

func parseCartMetadata(metadata map[string]string) ([]CartLine, error) {
	raw, ok := metadata["items"]
	if !ok || raw == "" {
		return nil, nil
	}

	var lines []CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("invalid items metadata: %w", err)
	}
	return lines, nil
}

func customerEmail(pi payments.EventPaymentIntent) string {
	if v := pi.Metadata["customer_email"]; v != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return strings.ToLower(strings.TrimSpace(pi.ReceiptEmail))
}

// 既存顧客ならそのIDを返す。名前は上書きしない。
func (u *FulfillmentUsecase) resolveCustomer(ctx context.Context, email, name string) (int64, error) {
	c, found, err := u.customers.FindByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if found {
		return c.ID, nil
	}

	return u.customers.Create(ctx, model.Customer{
		Email: email,
		Name:  name,
	})
}

// 配送先スナップショットを作る。欠けている項目は空文字のまま通す。
// 住所の不備で注文処理を止めない方針。
func (u *FulfillmentUsecase) createAddress(ctx context.Context, customerID int64, shipping payments.EventShipping) (int64, error) {
	country := shipping.Address.Country
	if country == "" {
		country = "GB"
	}

	return u.addresses.Create(ctx, model.Address{
		CustomerID: customerID,
		Name:       shipping.Name,
		Line1:      shipping.Address.Line1,
		Line2:      shipping.Address.Line2,
		City:       shipping.Address.City,
		State:      shipping.Address.State,
		PostalCode: shipping.Address.PostalCode,
		Country:    country,
	})
}

// metadataの割引参照を顧客メールに対して再検証する。
// 無効になっていたら参照はnilにするが、割引額は課金額と整合させるため残す。
func (u *FulfillmentUsecase) revalidateDiscount(ctx context.Context, log *zap.Logger, metadata map[string]string, email string) (*int64, int64) {
	var discountAmount int64
	if v := metadata["discount_amount"]; v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			discountAmount = n
		}
	}

	rawID := metadata["discount_code_id"]
	if rawID == "" {
		return nil, discountAmount
	}

	codeID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		log.Warn("invalid discount_code_id metadata", zap.String("value", rawID))
		return nil, discountAmount
	}

	code := metadata["discount_code"]
	_, valid, err := u.discountUC.Validate(ctx, code, email)
	if err != nil || !valid {
		log.Warn("discount no longer valid at fulfillment, dropping reference",
			zap.String("code", code),
			zap.Error(err))
		return nil, discountAmount
	}

	return &codeID, discountAmount
}

// createOrder は注文行と明細を作る。戻り値のboolは注文行のINSERTが
// 成功したかどうか（明細の失敗と作成競合を呼び出し側で区別するため）。
func (u *FulfillmentUsecase) createOrder(
	ctx context.Context,
	pi payments.EventPaymentIntent,
	lines []CartLine,
	customerID, addressID int64,
	discountCodeID *int64,
	discountAmount int64,
) (model.Order, bool, error) {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.Price * line.Quantity
	}

	var shippingAmount int64
	if v := pi.Metadata["shipping_amount"]; v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			shippingAmount = n
		}
	} else {
		//metadataに無い古いIntentは課金額から逆算する
		shippingAmount = pi.Amount - subtotal + discountAmount
		if shippingAmount < 0 {
			shippingAmount = 0
		}
	}

	orderNumber, err := u.orders.NextOrderNumber(ctx)
	if err != nil {
		return model.Order{}, false, err
	}

	currency := pi.Currency
	if currency == "" {
		currency = "gbp"
	}

	now := time.Now()
	order := model.Order{
		OrderNumber:           orderNumber,
		CustomerID:            customerID,
		ShippingAddressID:     addressID,
		Status:                model.OrderStatusPaid,
		SubtotalAmount:        subtotal,
		ShippingAmount:        shippingAmount,
		DiscountAmount:        discountAmount,
		TotalAmount:           pi.Amount,
		Currency:              currency,
		StripePaymentIntentID: pi.ID,
		DiscountCodeID:        discountCodeID,
		PaidAt:                &now,
	}

	orderID, err := u.orders.Create(ctx, order)
	if err != nil {
		return model.Order{}, false, err
	}
	order.ID = orderID

	//明細は商品名・サイズ・画像をこの時点の値で焼き込む
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		v, err := u.inventory.inventory.FindVariant(ctx, line.ProductID, line.Size)
		if err != nil {
			//注文行は残す（自動ロールバックしない）。手動対応に回る
			return model.Order{}, true, fmt.Errorf("variant lookup for order items: %w", err)
		}

		items = append(items, model.OrderItem{
			ProductVariantID: v.ID,
			ProductName:      line.Name,
			ProductSize:      line.Size,
			ProductImageURL:  line.Image,
			Quantity:         line.Quantity,
			UnitPrice:        line.Price,
			LineTotal:        line.Price * line.Quantity,
		})
	}

	if err := u.orderItems.CreateBulk(ctx, orderID, items); err != nil {
		return model.Order{}, true, fmt.Errorf("order items insert: %w", err)
	}

	return order, true, nil
}
