package repository

import (
	"context"

	"app/internal/domain/model"
)

type CustomerListFilter struct {
	Page   int
	Limit  int
	Search string
}

type CustomerRepository interface {
	//emailは小文字化済みで渡すこと
	FindByEmail(ctx context.Context, email string) (model.Customer, bool, error)
	FindByID(ctx context.Context, customerID int64) (model.Customer, error)
	Create(ctx context.Context, c model.Customer) (int64, error)
	List(ctx context.Context, f CustomerListFilter) ([]model.Customer, int64, error)
}

type AddressRepository interface {
	Create(ctx context.Context, a model.Address) (int64, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
}
