package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notification"
	"app/internal/payments"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func newLogger(goEnv string) (*zap.Logger, error) {
	if goEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	//.envはローカル用。無くても環境変数があれば動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	discountRepo := infraRepo.NewDiscountGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Stripe
	stripeClient, err := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if err != nil {
		logger.Fatal("stripe client init failed", zap.Error(err))
	}

	//通知（確認メールと運用アラート）
	mailer := notification.NewResendMailer(cfg.ResendAPIKey, logger)
	dispatcher := notification.NewDispatcher(mailer, orderRepo, logger, cfg.FromEmail, cfg.ContactEmail)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	dispatcher.Start(ctx)

	//Usecase生成
	pricing := usecase.NewPricingEngine(cfg.FreeShippingThreshold, cfg.ShippingFlatRate)
	inventoryUC := usecase.NewInventoryUsecase(txManager, inventoryRepo)
	discountUC := usecase.NewDiscountUsecase(discountRepo, cfg.DiscountCodesEnabled)
	checkoutUC := usecase.NewCheckoutUsecase(inventoryUC, discountUC, pricing, stripeClient)
	fulfillmentUC := usecase.NewFulfillmentUsecase(
		txManager, orderRepo, orderItemRepo, customerRepo, addressRepo, discountRepo,
		inventoryUC, discountUC, dispatcher, logger,
	)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, orderItemRepo, customerRepo, addressRepo)
	customerUC := usecase.NewCustomerUsecase(customerRepo, orderRepo)
	adminAuthUC := usecase.NewAdminAuthUsecase(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret)

	//Handler生成
	e := server.New(cfg, logger, server.Handlers{
		Product:       handler.NewProductHandler(productUC),
		Checkout:      handler.NewCheckoutHandler(checkoutUC, discountUC),
		Webhook:       handler.NewWebhookHandler(stripeClient, fulfillmentUC, logger),
		AdminAuth:     handler.NewAdminAuthHandler(adminAuthUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC, inventoryUC),
		AdminCustomer: handler.NewAdminCustomerHandler(customerUC),
	})

	//Server起動
	go func() {
		addr := ":" + cfg.Port
		if cfg.Port[0] == ':' {
			addr = cfg.Port
		}
		if err := e.Start(addr); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := server.Shutdown(e, 10*time.Second); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}

	//キューに残った通知を送り切る
	dispatcher.Stop()
}
