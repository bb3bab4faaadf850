package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	//注文番号・メールの部分一致
	Search string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//冪等性の唯一のゲート。同じPaymentIntentなら同じ注文を返す
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (model.Order, bool, error)

	//注文番号はDBシーケンスから採番する（アプリ内カウンタ禁止）
	NextOrderNumber(ctx context.Context) (string, error)

	Create(ctx context.Context, order model.Order) (int64, error)

	//遷移の妥当性チェックはusecase側の責務。タイムスタンプも更新する
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	MarkConfirmationEmailSent(ctx context.Context, orderID int64) error

	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error)

	//分析用。cancelled/refundedは除外
	ListForAnalytics(ctx context.Context) ([]model.Order, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	//商品削除の可否判定（注文実績の有無）
	ExistsForVariants(ctx context.Context, variantIDs []int64) (bool, error)
}
