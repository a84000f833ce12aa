package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "submeter/backend/libs/db"
	libredis "submeter/backend/libs/redis"
	"submeter/backend/services/submeter-service/internal/config"
	httpserver "submeter/backend/services/submeter-service/internal/http"
	"submeter/backend/services/submeter-service/internal/http/handlers"
	"submeter/backend/services/submeter-service/internal/http/middleware"
	redisstore "submeter/backend/services/submeter-service/internal/redis"
	"submeter/backend/services/submeter-service/internal/repository"
	"submeter/backend/services/submeter-service/internal/service"
	"submeter/backend/services/submeter-service/internal/storage"
	"submeter/backend/services/submeter-service/internal/storage/sqlite"
	"submeter/backend/services/submeter-service/internal/ws"
)

// App wires submeter service dependencies.
type App struct {
	server      *httpserver.Server
	wsManager   *ws.Manager
	db          *sql.DB
	redisClient *redis.Client
	sqliteStore *sqlite.Store
	logger      *zap.Logger
}

// New constructs the application graph. ctx bounds the lifetime of websocket sessions.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	calculatorService := service.NewCalculatorService(store, cfg.Display.Currency, logger)
	calculatorHandlers := handlers.NewCalculatorHandlers(calculatorService, logger)

	a.wsManager = ws.NewManager(cfg.WSPingInterval(), logger)
	wsServer := ws.NewServer(ctx, a.wsManager, calculatorService, cfg.WSWriteTimeout(), cfg.WSAllowedOrigins(), logger)

	routes := httpserver.Routes{
		Submit:     calculatorHandlers.Submit,
		Previous:   calculatorHandlers.Previous,
		Calculator: wsServer.HandleWS,
		Health:     handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	a.server = httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	logger.Info("submeter service configured",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("currency", cfg.Display.Currency),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case storage.DriverMemory:
		return storage.NewMemoryStore(), nil
	case storage.DriverRedis:
		client, err := libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.redisClient = client
		return redisstore.NewStore(client, cfg.Redis.KeyPrefix), nil
	case storage.DriverPostgres:
		sqlDB, err := libdb.NewPostgresDB(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = sqlDB
		return repository.NewSettingsRepository(ctx, sqlDB)
	case storage.DriverSQLite:
		store, err := sqlite.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.sqliteStore = store
		return store, nil
	default:
		return nil, fmt.Errorf("app: unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Run starts the websocket keepalive loop and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.wsManager.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.sqliteStore != nil {
		if err := a.sqliteStore.Close(); err != nil {
			a.logger.Warn("failed to close sqlite", zap.Error(err))
		}
	}
}
