package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	products   repo.ProductRepository
	inventory  repo.InventoryRepository
	orderItems repo.OrderItemRepository
}

func NewProductUsecase(
	products repo.ProductRepository,
	inventory repo.InventoryRepository,
	orderItems repo.OrderItemRepository,
) *ProductUsecase {
	return &ProductUsecase{
		products:   products,
		inventory:  inventory,
		orderItems: orderItems,
	}
}

// 公開カタログのサイズ1件分
type SizeOutput struct {
	Size      string `json:"size"`
	Stock     int64  `json:"stock"`
	VariantID int64  `json:"variant_id"`
	Available bool   `json:"available"`
}

type ProductOutput struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       int64        `json:"price"`
	Image       string       `json:"image"`
	Sizes       []SizeOutput `json:"sizes"`
	InStock     bool         `json:"inStock"`
}

// ListPublic はアクティブな商品をサイズ別在庫付きで返す。
func (u *ProductUsecase) ListPublic(ctx context.Context) ([]ProductOutput, error) {
	products, err := u.products.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	variants, err := u.inventory.ListVariantsByProducts(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byProduct := make(map[int64][]model.ProductVariant)
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}

	outs := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		outs = append(outs, toProductOutput(p, byProduct[p.ID]))
	}
	return outs, nil
}

func (u *ProductUsecase) GetPublic(ctx context.Context, productID int64) (ProductOutput, error) {
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	variants, err := u.inventory.ListVariantsByProduct(ctx, productID)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toProductOutput(p, variants), nil
}

func toProductOutput(p model.Product, variants []model.ProductVariant) ProductOutput {
	sizes := make([]SizeOutput, 0, len(variants))
	inStock := false
	for _, v := range variants {
		sizes = append(sizes, SizeOutput{
			Size:      v.Size,
			Stock:     v.StockQuantity,
			VariantID: v.ID,
			Available: v.StockQuantity > 0,
		})
		if v.StockQuantity > 0 {
			inStock = true
		}
	}

	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.BasePrice,
		Image:       p.ImageURL,
		Sizes:       sizes,
		InStock:     inStock,
	}
}

// ========== 管理画面 ==========

type AdminProductVariantOutput struct {
	ID              int64  `json:"id"`
	Size            string `json:"size"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int64  `json:"stock_quantity"`
}

type AdminProductOutput struct {
	Product  model.Product               `json:"product"`
	Variants []AdminProductVariantOutput `json:"variants"`
}

func (u *ProductUsecase) ListAdmin(ctx context.Context) ([]AdminProductOutput, error) {
	products, err := u.products.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	variants, err := u.inventory.ListVariantsByProducts(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byProduct := make(map[int64][]AdminProductVariantOutput)
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], AdminProductVariantOutput{
			ID:              v.ID,
			Size:            v.Size,
			PriceAdjustment: v.PriceAdjustment,
			StockQuantity:   v.StockQuantity,
		})
	}

	outs := make([]AdminProductOutput, 0, len(products))
	for _, p := range products {
		outs = append(outs, AdminProductOutput{Product: p, Variants: byProduct[p.ID]})
	}
	return outs, nil
}

type CreateProductInput struct {
	Name        string
	Description string
	BasePrice   int64
	UnitCost    int64
	ProductType string
	Colour      string
	ImageURL    string
	IsActive    bool
}

func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (int64, error) {
	if in.Name == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.BasePrice < 0 || in.UnitCost < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	id, err := u.products.Create(ctx, model.Product{
		Name:        in.Name,
		Description: in.Description,
		BasePrice:   in.BasePrice,
		UnitCost:    in.UnitCost,
		ProductType: in.ProductType,
		Colour:      in.Colour,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return id, nil
}

func (u *ProductUsecase) Update(ctx context.Context, p model.Product) error {
	if p.ID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if p.Name == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}

	err := u.products.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type CreateVariantInput struct {
	ProductID       int64
	Size            string
	PriceAdjustment int64
	StockQuantity   int64
}

func (u *ProductUsecase) CreateVariant(ctx context.Context, in CreateVariantInput) (int64, error) {
	if in.Size == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "size is required")
	}
	if in.StockQuantity < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
	}

	if _, err := u.products.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	id, err := u.inventory.CreateVariant(ctx, model.ProductVariant{
		ProductID:       in.ProductID,
		Size:            in.Size,
		PriceAdjustment: in.PriceAdjustment,
		StockQuantity:   in.StockQuantity,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return id, nil
}

type DeleteProductOutput struct {
	//deleted / deactivated
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Delete は注文実績が無ければ物理削除、あれば非アクティブ化する。
// 注文明細は商品スナップショットを持っているので履歴は壊れない。
func (u *ProductUsecase) Delete(ctx context.Context, productID int64) (DeleteProductOutput, error) {
	if _, err := u.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return DeleteProductOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return DeleteProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	variants, err := u.inventory.ListVariantsByProduct(ctx, productID)
	if err != nil {
		return DeleteProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	variantIDs := make([]int64, 0, len(variants))
	for _, v := range variants {
		variantIDs = append(variantIDs, v.ID)
	}

	hasOrders, err := u.orderItems.ExistsForVariants(ctx, variantIDs)
	if err != nil {
		return DeleteProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if hasOrders {
		if err := u.products.Deactivate(ctx, productID); err != nil {
			return DeleteProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return DeleteProductOutput{
			Action:  "deactivated",
			Message: "Product has existing orders and was marked as inactive instead of deleted.",
		}, nil
	}

	if err := u.products.Delete(ctx, productID); err != nil {
		return DeleteProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return DeleteProductOutput{
		Action:  "deleted",
		Message: "Product deleted successfully.",
	}, nil
}
