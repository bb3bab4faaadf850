package model

import "time"

type OrderStatus string

const (
	//決済成功Webhookで作られるため、初期状態は常にpaid
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// 許可される状態遷移。delivered/cancelled/refundedは終端。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCancelled || next == OrderStatusRefunded
	case OrderStatusShipped:
		return next == OrderStatusDelivered || next == OrderStatusCancelled || next == OrderStatusRefunded
	default:
		return false
	}
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//人間向け注文番号（PLG-00042形式、DBシーケンスから採番）
	OrderNumber string `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_number"`

	CustomerID        int64 `gorm:"not null;index" json:"customer_id"`
	ShippingAddressID int64 `gorm:"not null" json:"shipping_address_id"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//金額はすべてペンス。TotalAmount = Subtotal - Discount + Shipping
	SubtotalAmount int64  `gorm:"not null" json:"subtotal_amount"`
	ShippingAmount int64  `gorm:"not null;default:0" json:"shipping_amount"`
	DiscountAmount int64  `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	Currency       string `gorm:"type:varchar(5);not null;default:'gbp'" json:"currency"`

	//Stripe PaymentIntent ID。冪等性キーなのでunique必須
	StripePaymentIntentID string `gorm:"type:varchar(255);not null;uniqueIndex" json:"stripe_payment_intent_id"`

	DiscountCodeID *int64 `gorm:"index" json:"discount_code_id,omitempty"`

	ConfirmationEmailSent   bool       `gorm:"not null;default:false" json:"confirmation_email_sent"`
	ConfirmationEmailSentAt *time.Time `json:"confirmation_email_sent_at,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
