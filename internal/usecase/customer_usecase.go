package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CustomerUsecase struct {
	customers repo.CustomerRepository
	orders    repo.OrderRepository
}

func NewCustomerUsecase(customers repo.CustomerRepository, orders repo.OrderRepository) *CustomerUsecase {
	return &CustomerUsecase{customers: customers, orders: orders}
}

type CustomerListOutput struct {
	Items []model.Customer `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *CustomerUsecase) List(ctx context.Context, page, limit int, search string) (CustomerListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	items, total, err := u.customers.List(ctx, repo.CustomerListFilter{
		Page:   page,
		Limit:  limit,
		Search: search,
	})
	if err != nil {
		return CustomerListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CustomerListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

type CustomerDetailOutput struct {
	Customer   model.Customer `json:"customer"`
	Orders     []model.Order  `json:"orders"`
	OrderCount int            `json:"order_count"`
	TotalSpent int64          `json:"total_spent"`
}

func (u *CustomerUsecase) Detail(ctx context.Context, customerID int64) (CustomerDetailOutput, error) {
	c, err := u.customers.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	orders, err := u.orders.ListByCustomerID(ctx, c.ID)
	if err != nil {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var spent int64
	for _, o := range orders {
		if o.Status != model.OrderStatusCancelled && o.Status != model.OrderStatusRefunded {
			spent += o.TotalAmount
		}
	}

	return CustomerDetailOutput{
		Customer:   c,
		Orders:     orders,
		OrderCount: len(orders),
		TotalSpent: spent,
	}, nil
}
