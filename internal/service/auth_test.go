package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository"
	"github.com/arenahq/competition-api/internal/service"
)

type fakeUserRepo struct {
	nextID uint
	byID   map[uint]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID: 1,
		byID:   map[uint]domain.User{},
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.byID[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			return user, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uint, role domain.Role) error {
	user, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.Role = role
	r.byID[id] = user

	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id uint, status domain.ApprovalStatus) error {
	user, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.Status = status
	r.byID[id] = user

	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrUserNotFound
	}

	delete(r.byID, id)

	return nil
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name       string
		user       domain.User
		wantStatus domain.ApprovalStatus
	}{
		{
			name: "participant is auto approved",
			user: domain.User{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "password1",
				Role:     domain.RoleParticipant,
			},
			wantStatus: domain.StatusApproved,
		},
		{
			name: "organizer starts pending",
			user: domain.User{
				Name:     "Olga",
				Email:    "olga@example.com",
				Password: "password1",
				Role:     domain.RoleOrganizer,
			},
			wantStatus: domain.StatusPending,
		},
		{
			name: "spectator is auto approved",
			user: domain.User{
				Name:     "Sam",
				Email:    "sam@example.com",
				Password: "password1",
				Role:     domain.RoleSpectator,
			},
			wantStatus: domain.StatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := service.NewAuthService(repo)

			created, err := svc.Signup(context.Background(), tt.user)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, created.Status)

			stored, err := repo.FindByEmail(context.Background(), tt.user.Email)
			require.NoError(t, err)
			require.NotEqual(t, tt.user.Password, stored.Password)
			require.NoError(t,
				bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(tt.user.Password)))
		})
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo)

	user := domain.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password1",
		Role:     domain.RoleParticipant,
	}

	_, err := svc.Signup(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), user)
	require.ErrorIs(t, err, service.ErrUserEmailExists)
}

func TestAuthService_Login(t *testing.T) {
	signup := func(t *testing.T, svc *service.AuthService, role domain.Role, email string) domain.User {
		t.Helper()

		created, err := svc.Signup(context.Background(), domain.User{
			Name:     "Test",
			Email:    email,
			Password: "password1",
			Role:     role,
		})
		require.NoError(t, err)

		return created
	}

	t.Run("success", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		signup(t, svc, domain.RoleParticipant, "alice@example.com")

		user, err := svc.Login(context.Background(), "alice@example.com", "password1")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.Equal(t, domain.StatusApproved, user.Status)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		signup(t, svc, domain.RoleParticipant, "alice@example.com")

		_, err := svc.Login(context.Background(), "alice@example.com", "nope12345")
		require.ErrorIs(t, err, service.ErrWrongPassword)
	})

	t.Run("unknown email reads as wrong password", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)

		_, err := svc.Login(context.Background(), "ghost@example.com", "password1")
		require.ErrorIs(t, err, service.ErrWrongPassword)
	})

	t.Run("pending organizer is refused", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		signup(t, svc, domain.RoleOrganizer, "olga@example.com")

		_, err := svc.Login(context.Background(), "olga@example.com", "password1")
		require.ErrorIs(t, err, service.ErrOrganizerNotApproved)
	})

	t.Run("approved organizer may sign in", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		created := signup(t, svc, domain.RoleOrganizer, "olga@example.com")

		require.NoError(t, repo.UpdateStatus(context.Background(), created.ID, domain.StatusApproved))

		user, err := svc.Login(context.Background(), "olga@example.com", "password1")
		require.NoError(t, err)
		require.Equal(t, domain.StatusApproved, user.Status)
	})

	t.Run("federated-only account cannot use password login", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		_, err := repo.Create(context.Background(), domain.User{
			Name:   "Fred",
			Email:  "fred@example.com",
			Role:   domain.RoleParticipant,
			Status: domain.StatusApproved,
		})
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), "fred@example.com", "anything1")
		require.ErrorIs(t, err, service.ErrWrongPassword)
	})
}

func TestAuthService_LoginFederated(t *testing.T) {
	t.Run("existing identity signs in", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		_, err := repo.Create(context.Background(), domain.User{
			Name:   "Fred",
			Email:  "fred@example.com",
			Role:   domain.RoleParticipant,
			Status: domain.StatusApproved,
		})
		require.NoError(t, err)

		user, err := svc.LoginFederated(context.Background(), "fred@example.com")
		require.NoError(t, err)
		require.Equal(t, "fred@example.com", user.Email)
	})

	t.Run("unprovisioned email is refused", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)

		_, err := svc.LoginFederated(context.Background(), "ghost@example.com")
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("pending organizer is refused even when federated", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		_, err := repo.Create(context.Background(), domain.User{
			Name:   "Olga",
			Email:  "olga@example.com",
			Role:   domain.RoleOrganizer,
			Status: domain.StatusPending,
		})
		require.NoError(t, err)

		_, err = svc.LoginFederated(context.Background(), "olga@example.com")
		require.ErrorIs(t, err, service.ErrOrganizerNotApproved)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("refresh picks up role change", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		created, err := repo.Create(context.Background(), domain.User{
			Name:   "Alice",
			Email:  "alice@example.com",
			Role:   domain.RoleParticipant,
			Status: domain.StatusApproved,
		})
		require.NoError(t, err)

		require.NoError(t, repo.UpdateRole(context.Background(), created.ID, domain.RoleJudge))

		user, err := svc.Refresh(context.Background(), created.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleJudge, user.Role)
	})

	t.Run("revoked organizer cannot refresh", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		created, err := repo.Create(context.Background(), domain.User{
			Name:   "Olga",
			Email:  "olga@example.com",
			Role:   domain.RoleOrganizer,
			Status: domain.StatusApproved,
		})
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatus(context.Background(), created.ID, domain.StatusRejected))

		_, err = svc.Refresh(context.Background(), created.ID)
		require.ErrorIs(t, err, service.ErrOrganizerNotApproved)
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)
		created, err := repo.Create(context.Background(), domain.User{
			Name:   "Alice",
			Email:  "alice@example.com",
			Role:   domain.RoleParticipant,
			Status: domain.StatusApproved,
		})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(context.Background(), created.ID))

		_, err = svc.Refresh(context.Background(), created.ID)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestUserService_AdminGate(t *testing.T) {
	admin := domain.User{ID: 1, Role: domain.RoleAdmin}
	participant := domain.User{ID: 2, Role: domain.RoleParticipant}

	repo := newFakeUserRepo()
	svc := service.NewUserService(repo)

	target, err := repo.Create(context.Background(), domain.User{
		Name:   "Olga",
		Email:  "olga@example.com",
		Role:   domain.RoleOrganizer,
		Status: domain.StatusPending,
	})
	require.NoError(t, err)

	err = svc.UpdateStatus(context.Background(), target.ID, domain.StatusApproved, participant)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	err = svc.UpdateStatus(context.Background(), target.ID, domain.StatusApproved, admin)
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, stored.Status)

	err = svc.UpdateRole(context.Background(), target.ID, domain.Role("hacker"), admin)
	require.ErrorIs(t, err, service.ErrInvalidRole)

	err = svc.UpdateStatus(context.Background(), target.ID, domain.ApprovalStatus("bogus"), admin)
	require.ErrorIs(t, err, service.ErrInvalidStatus)

	err = svc.DeleteUser(context.Background(), target.ID, participant)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	err = svc.DeleteUser(context.Background(), target.ID, admin)
	require.NoError(t, err)

	_, err = svc.GetUser(context.Background(), target.ID)
	require.ErrorIs(t, err, service.ErrUserNotFound)
}
