package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository"
)

var (
	ErrUserEmailExists      = repository.ErrUserEmailExists
	ErrUserNotFound         = repository.ErrUserNotFound
	ErrWrongPassword        = errors.New("wrong password")
	ErrOrganizerNotApproved = errors.New("organizer account is pending approval")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

// Signup registers a local account. Organizers start out pending and cannot
// sign in until an admin approves them; every other role is auto-approved.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = string(hash)

	if user.Role == domain.RoleOrganizer {
		user.Status = domain.StatusPending
	} else {
		user.Status = domain.StatusApproved
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Login verifies credentials and runs the sign-in gate. The organizer
// approval check runs both in credential verification and again in signIn;
// the duplication is deliberate so that neither path can be bypassed alone.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrWrongPassword
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	// Federated-only accounts have no hash and cannot use password login.
	if user.Password == "" {
		return domain.User{}, ErrWrongPassword
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	if user.Role == domain.RoleOrganizer && user.Status != domain.StatusApproved {
		return domain.User{}, ErrOrganizerNotApproved
	}

	return s.signIn(ctx, user)
}

// LoginFederated signs in an identity already verified by an external
// provider. The email must still exist in the durable user store.
func (s *AuthService) LoginFederated(ctx context.Context, email string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return s.signIn(ctx, user)
}

// Refresh re-reads the durable user record so a reissued token carries the
// current role and status. The sign-in gate applies again: an organizer whose
// approval was revoked cannot refresh into a valid session.
func (s *AuthService) Refresh(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return s.signIn(ctx, user)
}

// signIn is the final gate before a session is issued: the identity must
// exist in the user store and approved organizers only.
func (s *AuthService) signIn(ctx context.Context, identity domain.User) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if user.Role == domain.RoleOrganizer && user.Status != domain.StatusApproved {
		return domain.User{}, ErrOrganizerNotApproved
	}

	return user, nil
}
