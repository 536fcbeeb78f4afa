package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
)

// ErrUserNotFound is returned for lookups of unknown accounts.
var ErrUserNotFound = errors.New("user not found")

// UserService handles account reads.
type UserService struct {
	users *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetByID retrieves one account.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
