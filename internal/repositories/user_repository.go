package repositories

import (
	"errors"

	"greentrack/internal/models"
)

// ErrNotFound is returned by repositories when a lookup matches no record.
// Callers use errors.Is to tell a miss apart from a store failure.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
