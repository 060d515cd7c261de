package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront-backend/internal/infrastructure/auth"
	"github.com/DRSN-tech/storefront-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront-backend/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/storefront-backend/internal/repository/minio"
	"github.com/DRSN-tech/storefront-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/storefront-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/storefront-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/clients"
	"github.com/DRSN-tech/storefront-backend/pkg/closer"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/DRSN-tech/storefront-backend/pkg/metrics"
	"github.com/DRSN-tech/storefront-backend/pkg/postgres"
	"github.com/DRSN-tech/storefront-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/crypto/bcrypt"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App собирает зависимости приложения и управляет его жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	outboxWorker *kafka.OutboxWorker
	receipts     *minioInfra.ReceiptsInfrastructure

	// Отменяется при остановке, прерывает фоновые задачи
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())

	if err := a.init(); err != nil {
		// Освобождаем уже открытые ресурсы
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("cleanup after failed init: %v", closeErr)
		}
		a.bgCancel()
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	log, cfg := a.logger, a.cfg

	db, err := initPGDB(log, cfg)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddFunc("postgres", db.Close)

	// Converters
	productConv := pgdbConv.ProductConverterImpl{}
	cartConv := pgdbConv.CartConverterImpl{}
	orderConv := pgdbConv.OrderConverterImpl{}
	userConv := pgdbConv.UserConverterImpl{}
	outboxConv := pgdbConv.OutboxEventConverterImpl{}
	infoConv := redisConv.ProductInfoConverterImpl{}

	// Postgres
	txManager := tr.NewManager(db.Pool, cfg.Order.CheckoutMaxRetries, log)
	productRepo := pgdb.NewProductRepo(db.Pool, productConv)
	cartRepo := pgdb.NewCartRepo(db.Pool, cartConv, productConv)
	orderRepo := pgdb.NewOrderRepo(db.Pool, orderConv, productConv)
	userRepo := pgdb.NewUserRepo(db.Pool, userConv)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	// Redis
	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })

	redisCtx, redisCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, log)
	idempotencyRepo := redis.NewIdempotencyRepo(redisClient, cfg.Redis)

	// MinIO
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	receiptRepo := s3Repo.NewReceiptRepo(minioClient, cfg.Minio)
	a.receipts = minioInfra.NewReceiptsInfrastructure(receiptRepo, cfg.Minio, log, a.bgCtx)

	// Kafka
	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(startupTimeout); err != nil {
		log.Errorf(err, "failed to ensure kafka topic")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn, pgdb.OutboxChannel, cfg.Kafka.OutboxBatchSize)

	// Auth
	tokens := auth.NewJWTManager(cfg.Auth)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	m := metrics.New()

	// Use cases
	orderUC := usecase.NewOrderUC(
		txManager,
		productRepo,
		cartRepo,
		orderRepo,
		outboxRepo,
		cacheRepo,
		idempotencyRepo,
		a.receipts,
		m,
		log,
		cfg.Order.RestockOnCancel,
	)
	cartUC := usecase.NewCartUC(txManager, cartRepo, productRepo, log)
	productUC := usecase.NewProductUC(productRepo, cacheRepo, log)
	authUC := usecase.NewAuthUC(userRepo, hasher, tokens, log)

	adminCtx, adminCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer adminCancel()
	if err := authUC.EnsureAdmin(adminCtx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Errorf(err, "failed to bootstrap admin account")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	// Delivery
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(productUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log, m, m.Handler()).Init(v1Http.UseCases{
		Order:   orderUC,
		Cart:    cartUC,
		Product: productUC,
		Auth:    authUC,
	}, cfg.Http.RequestTimeout)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return nil
}

// Run запускает серверы и фоновые задачи и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	log := a.logger

	a.outboxWorker.Start(a.bgCtx)

	errCh := make(chan error, 2)
	go func() {
		log.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	go func() {
		log.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "server fatal error")
	case <-shutdown:
		log.Infof("received shutdown signal, stopping gracefully")
	}

	a.stop()

	log.Infof("application shutdown complete")
	return appErr
}

// stop останавливает приложение: сначала приём запросов, затем фоновые задачи, затем клиенты хранилищ.
func (a *App) stop() {
	log := a.logger

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(ctx); err != nil {
		log.Errorf(err, "HTTP server shutdown error")
	} else {
		log.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("gRPC server shutdown timeout")
		} else {
			log.Errorf(err, "gRPC server shutdown error")
		}
	}

	a.outboxWorker.Stop()

	// Квитанции уже принятых заказов дозагружаются до таймаута
	if err := a.receipts.WaitForUploads(ctx); err != nil {
		log.Warnf("receipt uploads did not finish before shutdown: %v", err)
	}
	a.bgCancel()

	if err := a.closer.Close(ctx); err != nil {
		log.Warnf("resources close error: %v", err)
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
