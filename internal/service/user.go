package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenahq/competition-api/internal/domain"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidStatus    = errors.New("invalid status")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateRole(ctx context.Context, id uint, role domain.Role) error
	UpdateStatus(ctx context.Context, id uint, status domain.ApprovalStatus) error
	Delete(ctx context.Context, id uint) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// UpdateRole changes a user's role. Admin only. The change lands on the
// durable record; already-issued sessions keep their old claims until the
// client refreshes or the token expires.
func (s *UserService) UpdateRole(ctx context.Context, id uint, role domain.Role, actor domain.User) error {
	if actor.Role != domain.RoleAdmin {
		return ErrPermissionDenied
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return fmt.Errorf("s.repo.UpdateRole -> %w", err)
	}

	return nil
}

// UpdateStatus changes the approval status (used to approve or reject
// organizer accounts). Admin only; same propagation semantics as UpdateRole.
func (s *UserService) UpdateStatus(ctx context.Context, id uint, status domain.ApprovalStatus, actor domain.User) error {
	if actor.Role != domain.RoleAdmin {
		return ErrPermissionDenied
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint, actor domain.User) error {
	if actor.Role != domain.RoleAdmin {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
