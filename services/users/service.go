// Package users resolves console users and their identities for the gateway.
package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/ops-console/config"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/repositories"
	"github.com/upb/ops-console/services"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Service wraps the user repository with domain error mapping
type Service struct {
	users  repositories.UserRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewService creates a new users service
func NewService(users repositories.UserRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Get loads a user by ID. A missing user is ErrUserNotFound; a stored role
// outside the role set is ErrInvalidStoredRole.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id.String())
	}
	return user, nil
}

// GetByEmail loads a user by email address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.mapError(err, email)
	}
	return user, nil
}

// Identity loads the identity payload of a user.
func (s *Service) Identity(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// List returns a page of users. Page sizes are clamped to MaxPageSize.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "offset must not be negative", nil).
			WithDetail("offset", offset)
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, s.mapError(err, "")
	}
	return users, nil
}

// UpdateRole assigns role to the user and returns the updated record. The
// change and the re-read happen in one transaction.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "role outside the role set", nil).
			WithDetail("role", role.String())
	}

	var updated *models.User
	err := s.txMgr.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpdateRole(ctx, id, role); err != nil {
			return s.mapError(err, id.String())
		}
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return s.mapError(err, id.String())
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role changed",
		zap.String("user_id", id.String()),
		zap.Stringer("role", role))
	return updated, nil
}

// Seed creates the given users when absent, in one transaction. Existing
// users keep their stored role.
func (s *Service) Seed(ctx context.Context, seeds []config.SeedUser) error {
	if len(seeds) == 0 {
		return nil
	}

	return s.txMgr.InTransaction(ctx, func(ctx context.Context) error {
		for _, seed := range seeds {
			_, err := s.users.GetByEmail(ctx, seed.Email)
			if err == nil {
				continue
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				return services.WrapInternal("failed to look up seed user", err)
			}

			if err := s.users.Create(ctx, models.NewUser(seed.Email, seed.Role)); err != nil {
				return services.WrapInternal("failed to create seed user", err)
			}
			s.logger.Info("seed user created",
				zap.String("email", seed.Email),
				zap.Stringer("role", seed.Role))
		}
		return nil
	})
}

func (s *Service) mapError(err error, userID string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return services.NewDomainError(services.ErrorTypeNotFound, services.ErrUserNotFound.Message, err).
			WithDetail("user_id", userID)
	case errors.Is(err, auth.ErrInvalidRole):
		s.logger.Error("stored role outside the role set",
			zap.String("user_id", userID),
			zap.Error(err))
		return services.NewDomainError(services.ErrorTypeConfiguration, services.ErrInvalidStoredRole.Message, err).
			WithDetail("user_id", userID)
	default:
		return services.NewDomainError(services.ErrorTypeInternal, services.ErrDatabaseError.Message, err)
	}
}
