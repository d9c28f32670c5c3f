package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// TransactionManager runs a unit of work atomically. Repository calls made
// with the context passed to fn take part in the transaction.
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository handles user data operations. Stored roles are parsed into
// the closed role set on read; a row with any other role fails with an error
// matching auth.ErrInvalidRole.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users ordered by email with pagination
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// UpdateRole changes the role of a user
	UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) error
}

// Repositories holds all repository instances
type Repositories struct {
	Users UserRepository
}
