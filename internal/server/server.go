package server

import (
	"context"
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/handler"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// echoのc.Validate用アダプタ
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type Handlers struct {
	Product       *handler.ProductHandler
	Checkout      *handler.CheckoutHandler
	Webhook       *handler.WebhookHandler
	AdminAuth     *handler.AdminAuthHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminProduct  *handler.AdminProductHandler
	AdminCustomer *handler.AdminCustomerHandler
}

// New はルート登録済みのechoを返す。起動はmain側。
func New(cfg config.Config, logger *zap.Logger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FEURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	//アクセスログ
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Product.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Webhook.RegisterRoutes(e)
	h.AdminAuth.RegisterRoutes(e)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.AdminCustomer.RegisterRoutes(e, cfg)

	return e
}

// Shutdown は処理中のリクエストを待ってから止める。
func Shutdown(e *echo.Echo, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Shutdown(ctx)
}
