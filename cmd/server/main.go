package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/codex-graphql-employee/internal/adapters/graphql/handler"
	"github.com/ogurasousui/codex-graphql-employee/internal/adapters/media/s3"
	"github.com/ogurasousui/codex-graphql-employee/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/auth"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/employee"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/user"
	"github.com/ogurasousui/codex-graphql-employee/internal/platform/config"
	pg "github.com/ogurasousui/codex-graphql-employee/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-graphql-employee/internal/platform/logging"
	"github.com/ogurasousui/codex-graphql-employee/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	tokens, err := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, nil)
	if err != nil {
		return err
	}

	media, err := s3.New(ctx, cfg.Media)
	if err != nil {
		return err
	}

	txManager := pg.NewTransactionManager(dbPool)

	userSvc := user.NewService(postgres.NewUserRepository(dbPool), tokens, auth.NewPasswordHasher(cfg.Auth.BcryptCost), nil)
	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(dbPool), media, nil, txManager, logger)

	schema, err := handler.NewSchema(handler.NewResolver(userSvc, employeeSvc, logger))
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, schema, logger)
	logger.Info("graphql server listening", slog.String("addr", cfg.Server.ListenAddr))

	return srv.Run(ctx)
}
