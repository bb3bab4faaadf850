package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	customers  repo.CustomerRepository
	addresses  repo.AddressRepository
}

func NewAdminOrderUsecase(
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	customers repo.CustomerRepository,
	addresses repo.AddressRepository,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		orders:     orders,
		orderItems: orderItems,
		customers:  customers,
		addresses:  addresses,
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	Search string
	From   *time.Time
	To     *time.Time
}

type AdminOrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		Search: in.Search,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AdminOrderListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

type AdminOrderDetailOutput struct {
	Order    model.Order       `json:"order"`
	Items    []model.OrderItem `json:"items"`
	Customer model.Customer    `json:"customer"`
	Address  model.Address     `json:"address"`
}

func (u *AdminOrderUsecase) Detail(ctx context.Context, orderID int64) (AdminOrderDetailOutput, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c, err := u.customers.FindByID(ctx, o.CustomerID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	a, err := u.addresses.FindByID(ctx, o.ShippingAddressID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AdminOrderDetailOutput{Order: o, Items: items, Customer: c, Address: a}, nil
}

// UpdateStatus は状態機械に従った遷移だけ許可する。
// paid → shipped/cancelled/refunded、shipped → delivered/cancelled/refunded。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	next := model.OrderStatus(status)
	if !next.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !o.Status.CanTransitionTo(next) {
		return NewHTTPError(http.StatusConflict, "illegal status transition")
	}

	if err := u.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type AnalyticsOutput struct {
	TotalRevenue      int64 `json:"total_revenue"`
	ProductRevenue    int64 `json:"product_revenue"`
	ShippingCollected int64 `json:"shipping_collected"`
	DiscountGiven     int64 `json:"discount_given"`
	TotalOrders       int64 `json:"total_orders"`
	MonthRevenue      int64 `json:"month_revenue"`
	MonthOrders       int64 `json:"month_orders"`
}

// Analytics は売上概要。cancelled/refundedは集計から外す。
func (u *AdminOrderUsecase) Analytics(ctx context.Context) (AnalyticsOutput, error) {
	orders, err := u.orders.ListForAnalytics(ctx)
	if err != nil {
		return AnalyticsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var out AnalyticsOutput
	for _, o := range orders {
		out.TotalRevenue += o.TotalAmount
		out.ProductRevenue += o.SubtotalAmount
		out.ShippingCollected += o.ShippingAmount
		out.DiscountGiven += o.DiscountAmount
		out.TotalOrders++

		if !o.CreatedAt.Before(firstOfMonth) {
			out.MonthRevenue += o.TotalAmount
			out.MonthOrders++
		}
	}

	return out, nil
}
