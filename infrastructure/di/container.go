// Package di assembles the application's dependency graph. Wiring is explicit
// constructor calls: the graph is small enough that generated injection would
// only obscure it.
package di

import (
	"context"
	"fmt"

	"pm-backend/application/ports"
	"pm-backend/application/services"
	"pm-backend/infrastructure/config"
	dynamostore "pm-backend/infrastructure/persistence/dynamodb"
	"pm-backend/infrastructure/persistence/memory"
	"pm-backend/pkg/auth"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Container holds the application's wired dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Store  ports.ItemStore
	JWT    *auth.JWTService

	Accounts *services.AccountService
	Projects *services.ProjectService
	Tasks    *services.TaskService
}

// InitializeContainer builds the full dependency graph
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	var store ports.ItemStore
	if cfg.UseMemoryStore {
		logger.Warn("Using in-memory store; data will not survive a restart")
		store = memory.NewItemStore()
	} else {
		client, err := dynamostore.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		store = dynamostore.NewItemStore(client, cfg.DynamoDBTable, logger)
	}

	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWT service: %w", err)
	}

	repos := services.NewRepositories(store, logger)
	coordinator := services.NewCoordinator(repos.Projects, repos.Tasks, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		JWT:      jwtService,
		Accounts: services.NewAccountService(repos, jwtService, cfg.BcryptCost, logger),
		Projects: services.NewProjectService(repos, coordinator, logger),
		Tasks:    services.NewTaskService(repos, logger),
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}
