package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upb/ops-console/config"
	"github.com/upb/ops-console/handlers"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/middleware"
	"github.com/upb/ops-console/repositories"
	"github.com/upb/ops-console/repositories/postgres"
	"github.com/upb/ops-console/services/users"
	"github.com/upb/ops-console/tokens"
	"go.uber.org/zap"
)

// Dependencies holds everything the gateway wires together. This is the
// central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager

	// Services
	UserService *users.Service
	Tokens      *tokens.Service

	// Access policy
	Evaluators *auth.Evaluators
	Views      *auth.ViewPolicy

	// HTTP
	AuthMiddleware *middleware.AuthMiddleware
	HealthHandler  *handlers.HealthHandler
	UserHandler    *handlers.UserHandler
	ConsoleHandler *handlers.ConsoleHandler
	AuthHandler    *handlers.AuthHandler
}

// NewDependencies opens the database and wires up all gateway dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires the gateway over an existing repository
// factory. The factory is not closed on failure.
func NewDependenciesFromFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		Evaluators:  auth.DefaultEvaluators(),
		Views:       auth.DefaultViewPolicy(),
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initHTTP()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase checks connectivity and creates the schema when enabled
func (d *Dependencies) initDatabase(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if d.Config.Database.InitSchema {
		if err := d.RepoFactory.InitSchema(ctx); err != nil {
			return err
		}
	}

	d.Logger.Info("database connection established",
		zap.String("connection", d.Config.Database.LogString()))
	return nil
}

func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Users = repos.Users
	d.TxManager = d.RepoFactory.GetTransactionManager()
}

func (d *Dependencies) initServices(ctx context.Context) error {
	d.UserService = users.NewService(d.Users, d.TxManager, d.Logger)

	tokenService, err := tokens.NewService(tokens.Config{
		Secret: d.Config.Auth.JWTSecret,
		Issuer: d.Config.Auth.Issuer,
		TTL:    d.Config.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}
	d.Tokens = tokenService

	if err := d.UserService.Seed(ctx, d.Config.SeedUsers); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}

func (d *Dependencies) initHTTP() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.UserService, d.Evaluators, d.Config.Auth.CookieName, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(map[string]handlers.Checker{"database": d.DB}, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.ConsoleHandler = handlers.NewConsoleHandler(d.Views, d.Logger)
	d.AuthHandler = handlers.NewAuthHandler(d.Config.Auth.CookieName, d.Config.Auth.CookieSecure, d.Logger)
}

// IssueToken signs a token for the user registered under email
func (d *Dependencies) IssueToken(ctx context.Context, email string) (string, time.Time, error) {
	user, err := d.UserService.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}
	return d.Tokens.Issue(user.ID, user.Email)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
