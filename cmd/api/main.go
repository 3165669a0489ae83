package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaekwang-park/todo-items-api/internal/config"
	itemhttp "github.com/jaekwang-park/todo-items-api/internal/http"
	"github.com/jaekwang-park/todo-items-api/internal/logging"
	"github.com/jaekwang-park/todo-items-api/internal/middleware"
	"github.com/jaekwang-park/todo-items-api/internal/repository"
	"github.com/jaekwang-park/todo-items-api/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.ParseLogLevel())
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"db_backend", cfg.DB.Backend,
		"auth_enabled", cfg.AuthEnabled,
		"log_level", cfg.LogLevel,
	)

	repo, db, err := openItemRepository(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	itemSvc := service.NewItemService(repo)

	opts := []itemhttp.Option{}
	if db != nil {
		opts = append(opts, itemhttp.WithHealthCheck(db))
	}
	if cfg.AuthEnabled {
		auth, err := newAuth(ctx, cfg.Cognito, logger)
		if err != nil {
			return err
		}
		opts = append(opts, itemhttp.WithAuth(auth))
	}

	srv := itemhttp.NewServer(cfg.ServerPort, logger, itemSvc, opts...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}

// openItemRepository returns the configured item store. The *sql.DB is nil
// for the memory backend.
func openItemRepository(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (repository.ItemRepository, *sql.DB, error) {
	if cfg.Backend == "memory" {
		logger.Warn("using in-memory item store; data is lost on restart")
		return repository.NewMemoryItem(), nil, nil
	}

	db, err := repository.NewDB(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected", "driver", cfg.Driver)

	switch cfg.Backend {
	case "gorm":
		repo, err := repository.NewGormItem(db, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
			logger.Info("schema migrated", "backend", cfg.Backend)
		}
		return repo, db, nil
	default:
		if cfg.AutoMigrate {
			if err := repository.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, err
			}
			logger.Info("schema migrated", "backend", cfg.Backend)
		}
		return repository.NewPostgresItem(db), db, nil
	}
}

func newAuth(ctx context.Context, cfg config.CognitoConfig, logger *slog.Logger) (*middleware.Auth, error) {
	jwks := middleware.NewJWKSClient(middleware.CognitoJWKSURL(cfg.Region, cfg.UserPoolID))

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := jwks.Prefetch(fetchCtx); err != nil {
		// Keys are fetched again on the first request.
		logger.Warn("JWKS prefetch failed", "error", err)
	}

	auth, err := middleware.NewAuth(middleware.AuthConfig{
		Keys:     jwks,
		Issuer:   middleware.CognitoIssuer(cfg.Region, cfg.UserPoolID),
		Audience: cfg.AppClientID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}
	logger.Info("auth enabled", "region", cfg.Region)
	return auth, nil
}
