package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品・在庫の管理API
type AdminProductHandler struct {
	products  *usecase.ProductUsecase
	inventory *usecase.InventoryUsecase
}

func NewAdminProductHandler(products *usecase.ProductUsecase, inventory *usecase.InventoryUsecase) *AdminProductHandler {
	return &AdminProductHandler{products: products, inventory: inventory}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.AdminAuth(cfg))

	admin.GET("/products", h.list)
	admin.POST("/products", h.create)
	admin.PATCH("/products/:id", h.update)
	admin.DELETE("/products/:id", h.remove)

	admin.POST("/variants", h.createVariant)
	admin.PATCH("/variants/:id/stock", h.adjustStock)
	admin.GET("/variants/:id/transactions", h.transactions)
	admin.GET("/stock/low", h.lowStock)
}

func (h *AdminProductHandler) list(c echo.Context) error {
	out, err := h.products.ListAdmin(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type productRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	BasePrice   int64  `json:"base_price" validate:"gte=0"`
	UnitCost    int64  `json:"unit_cost" validate:"gte=0"`
	ProductType string `json:"product_type"`
	Colour      string `json:"colour"`
	ImageURL    string `json:"image_url"`
	IsActive    bool   `json:"is_active"`
}

func (h *AdminProductHandler) create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	id, err := h.products.Create(c.Request().Context(), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		UnitCost:    req.UnitCost,
		ProductType: req.ProductType,
		Colour:      req.Colour,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminProductHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	err = h.products.Update(c.Request().Context(), model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		UnitCost:    req.UnitCost,
		ProductType: req.ProductType,
		Colour:      req.Colour,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"id": id})
}

func (h *AdminProductHandler) remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.products.Delete(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type createVariantRequest struct {
	ProductID       int64  `json:"product_id" validate:"required,gt=0"`
	Size            string `json:"size" validate:"required"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int64  `json:"stock_quantity" validate:"gte=0"`
}

func (h *AdminProductHandler) createVariant(c echo.Context) error {
	var req createVariantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	id, err := h.products.CreateVariant(c.Request().Context(), usecase.CreateVariantInput{
		ProductID:       req.ProductID,
		Size:            req.Size,
		PriceAdjustment: req.PriceAdjustment,
		StockQuantity:   req.StockQuantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

type adjustStockRequest struct {
	NewStock int64  `json:"new_stock" validate:"gte=0"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

func (h *AdminProductHandler) adjustStock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req adjustStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	err = h.inventory.AdjustStock(c.Request().Context(), usecase.AdjustStockInput{
		VariantID: id,
		NewStock:  req.NewStock,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"stock": req.NewStock})
}

func (h *AdminProductHandler) transactions(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.inventory.VariantTransactions(c.Request().Context(), id, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) lowStock(c echo.Context) error {
	var threshold int64
	if v := c.QueryParam("threshold"); v != "" {
		t, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid threshold"})
		}
		threshold = t
	}

	out, err := h.inventory.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
