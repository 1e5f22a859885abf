package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/andikadwp/buyit/internal/cart"
	"github.com/andikadwp/buyit/internal/config"
	"github.com/andikadwp/buyit/internal/domain/model"
	"github.com/andikadwp/buyit/internal/handler"
	"github.com/andikadwp/buyit/internal/infra/db"
	infraRepo "github.com/andikadwp/buyit/internal/infra/repository"
	"github.com/andikadwp/buyit/internal/payment"
	"github.com/andikadwp/buyit/internal/server"
	"github.com/andikadwp/buyit/internal/sweeper"
	"github.com/andikadwp/buyit/internal/usecase"
)

func main() {
	// .envは無くても起動できる（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.GoEnv == "dev" {
		log.SetFormatter(&logrus.TextFormatter{})
		log.SetLevel(logrus.DebugLevel)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.Customer{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//カートのスナップショット置き場
	var snapshots cart.SnapshotStore
	switch cfg.CartBackend {
	case "redis":
		snapshots = cart.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	case "memory":
		snapshots = cart.NewMemoryStore()
	default:
		fs, err := cart.NewFileStore(cfg.CartDir)
		if err != nil {
			log.WithError(err).Fatal("cart dir init failed")
		}
		snapshots = fs
	}

	//決済ゲートウェイ
	var gateway payment.Gateway
	if cfg.MockPayments {
		log.Warn("MOCK_PAYMENTS enabled: payment sessions are short-circuited")
		gateway = payment.NewMockGateway()
	} else {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeCurrency)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, customerRepo, gateway, cfg.StrictStockDecrement, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	adminCustomerUC := usecase.NewAdminCustomerUsecase(customerRepo)
	adminAuditUC := usecase.NewAdminAuditUsecase(auditRepo)

	//Handler生成
	e := server.New(cfg,
		handler.NewProductHandler(productUC),
		handler.NewCartHandler(snapshots, productUC),
		handler.NewCheckoutHandler(checkoutUC, snapshots),
		handler.NewOrderHandler(orderUC),
		handler.NewAdminProductHandler(productUC),
		handler.NewAdminOrderHandler(adminOrderUC),
		handler.NewAdminCustomerHandler(adminCustomerUC, adminAuditUC),
	)

	//放置PENDING注文の掃除（opt-in）
	if cfg.OrphanSweepEnabled {
		sw := sweeper.NewPendingSweeper(txManager,
			sweeper.WithLogger(log.WithField("component", "pending-order-sweeper")),
			sweeper.WithInterval(cfg.OrphanSweepInterval),
			sweeper.WithTTL(cfg.OrphanSweepTTL),
		)
		go sw.Run(context.Background())
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	if err := server.Start(e, addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
