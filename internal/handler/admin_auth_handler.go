package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者ログイン
type AdminAuthHandler struct {
	uc *usecase.AdminAuthUsecase
}

// DI
func NewAdminAuthHandler(uc *usecase.AdminAuthUsecase) *AdminAuthHandler {
	return &AdminAuthHandler{uc: uc}
}

func (h *AdminAuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/admin/login", h.login)
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AdminAuthHandler) login(c echo.Context) error {
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
