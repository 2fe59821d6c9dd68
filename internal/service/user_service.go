package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/validation"
)

type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Create adds a user.
func (s *UserService) Create(ctx context.Context, user *model.User) error {
	var vs validation.Violations
	if user.Name == "" {
		vs = append(vs, validation.Violation{Field: "name", Message: "can't be blank"})
	}
	if user.Email == "" {
		vs = append(vs, validation.Violation{Field: "email", Message: "can't be blank"})
	}
	if len(vs) > 0 {
		return &validation.Error{Violations: vs}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.Bool("is_admin", user.IsAdmin),
	)

	return nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}
