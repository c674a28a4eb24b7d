package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/flagquest/flagnode/internal/adapter"
	"github.com/flagquest/flagnode/internal/api/middleware"
	"github.com/flagquest/flagnode/internal/api/server"
	"github.com/flagquest/flagnode/internal/config"
	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
	"github.com/flagquest/flagnode/internal/executor"
	"github.com/flagquest/flagnode/internal/logger"
	"github.com/flagquest/flagnode/internal/messaging"
	"github.com/flagquest/flagnode/internal/native"
	"github.com/flagquest/flagnode/internal/registry"
	"github.com/flagquest/flagnode/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadNodeConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "flagnode",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting flag registry node")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)
	dataStore := store.NewPGStore(db)

	// Committed events fan out to the projection store and, when a broker
	// is configured, to NATS JetStream
	bus := events.NewBus()
	store.NewProjector(dataStore).Attach(bus)

	if cfg.NATS.URL != "" {
		pub, err := messaging.NewPublisher(messaging.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), adapter.NewJSON())
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer pub.Close()
		bridge := messaging.NewBridge(pub)
		defer bridge.Close()
		bridge.Attach(bus)
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	} else {
		logger.WarnCtx(ctx, "NATS url not configured, events stay local")
	}

	// Deploy the contract
	admin, err := domain.ParseAddress(cfg.Contract.AdminAddress)
	if err != nil {
		logger.Fatal("Invalid admin address", zap.Error(err), zap.String("address", cfg.Contract.AdminAddress))
	}
	contractAddr, err := domain.ParseAddress(cfg.Contract.ContractAddress)
	if err != nil {
		logger.Fatal("Invalid contract address", zap.Error(err), zap.String("address", cfg.Contract.ContractAddress))
	}

	ledger := native.NewLedger()
	receivers := executor.NewReceiverRegistry()
	c := contract.New(admin, native.NewAccount(ledger, contractAddr),
		contract.WithReceiverResolver(receivers),
		contract.WithEventSink(bus),
		contract.WithBaseURI(cfg.Contract.BaseURI))
	exec := executor.New(c, ledger, contractAddr)

	// Seed the genesis flag catalog
	if cfg.Contract.GenesisPath != "" {
		catalog, err := registry.LoadGenesis(cfg.Contract.GenesisPath)
		if err != nil {
			logger.Fatal("Failed to load genesis catalog",
				zap.Error(err),
				zap.String("path", cfg.Contract.GenesisPath))
		}
		if err := catalog.Apply(ctx, exec); err != nil {
			logger.Fatal("Failed to apply genesis catalog", zap.Error(err))
		}
	}

	// Create and start server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}, dataStore, exec)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Flag registry node stopped")
}
