package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository"
	"github.com/arenahq/competition-api/internal/service"
)

// fakeTeamRepo mirrors the storage contract: duplicate check, capacity check
// and insert happen atomically under one lock, the way the real repository
// serializes them per competition row.
type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]domain.Team
	comps  *fakeCompetitionRepo
}

func newFakeTeamRepo(comps *fakeCompetitionRepo) *fakeTeamRepo {
	return &fakeTeamRepo{
		nextID: 1,
		byID:   map[uint]domain.Team{},
		comps:  comps,
	}
}

func (r *fakeTeamRepo) active(status domain.TeamStatus) bool {
	return status == domain.TeamPending || status == domain.TeamApproved
}

func (r *fakeTeamRepo) Register(ctx context.Context, team domain.Team) (domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	competition, err := r.comps.FindByID(ctx, team.CompetitionID)
	if err != nil {
		return domain.Team{}, err
	}

	live := 0
	for _, existing := range r.byID {
		if existing.CompetitionID != team.CompetitionID {
			continue
		}
		if existing.Code == team.Code {
			return domain.Team{}, repository.ErrTeamCodeExists
		}
		if r.active(existing.Status) && existing.HasMember(team.Leader) {
			return domain.Team{}, repository.ErrDuplicateRegistration
		}
		if existing.Status != domain.TeamRejected {
			live++
		}
	}

	if live >= competition.MaxTeams {
		return domain.Team{}, repository.ErrCapacityExceeded
	}

	team.ID = r.nextID
	r.nextID++
	team.Members = []string{team.Leader}
	r.byID[team.ID] = team

	return team, nil
}

func (r *fakeTeamRepo) FindByID(_ context.Context, id uint) (domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.byID[id]
	if !ok {
		return domain.Team{}, repository.ErrTeamNotFound
	}

	return team, nil
}

func (r *fakeTeamRepo) FindByCompetition(_ context.Context, competitionID uint) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Team
	for _, team := range r.byID {
		if team.CompetitionID == competitionID {
			out = append(out, team)
		}
	}

	return out, nil
}

func (r *fakeTeamRepo) FindActiveByMember(_ context.Context, competitionID uint, email string) (domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, team := range r.byID {
		if team.CompetitionID == competitionID && r.active(team.Status) && team.HasMember(email) {
			return team, nil
		}
	}

	return domain.Team{}, repository.ErrTeamNotFound
}

func (r *fakeTeamRepo) UpdateStatus(_ context.Context, id uint, from, to domain.TeamStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.byID[id]
	if !ok {
		return repository.ErrTeamNotFound
	}
	if team.Status != from {
		return repository.ErrTeamStale
	}

	team.Status = to
	r.byID[id] = team

	return nil
}

func (r *fakeTeamRepo) AddMemberByCode(_ context.Context, competitionID uint, code, email string, maxTeamSize int) (domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, team := range r.byID {
		if team.CompetitionID == competitionID && r.active(team.Status) && team.HasMember(email) {
			return domain.Team{}, repository.ErrDuplicateRegistration
		}
	}

	for id, team := range r.byID {
		if team.CompetitionID != competitionID || team.Code != code || !r.active(team.Status) {
			continue
		}

		if len(team.Members) >= maxTeamSize {
			return domain.Team{}, repository.ErrTeamFull
		}

		team.Members = append(team.Members, email)
		r.byID[id] = team

		return team, nil
	}

	return domain.Team{}, repository.ErrTeamCodeInvalid
}

func (r *fakeTeamRepo) RemoveMember(_ context.Context, teamID uint, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.byID[teamID]
	if !ok {
		return repository.ErrTeamNotFound
	}

	for i, member := range team.Members {
		if member == email {
			team.Members = append(team.Members[:i], team.Members[i+1:]...)
			r.byID[teamID] = team
			return nil
		}
	}

	return repository.ErrMemberNotFound
}

func (r *fakeTeamRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrTeamNotFound
	}

	delete(r.byID, id)

	return nil
}

type teamFixture struct {
	svc         *service.TeamService
	teams       *fakeTeamRepo
	comps       *fakeCompetitionRepo
	sink        *captureSink
	competition domain.Competition
}

func newTeamFixture(t *testing.T, mutate func(*domain.Competition)) *teamFixture {
	t.Helper()

	comps := newFakeCompetitionRepo()
	teams := newFakeTeamRepo(comps)
	sink := &captureSink{}

	competition := validCompetition()
	competition.Status = domain.CompetitionPublished
	competition.OrganizerID = organizerActor.Email
	competition.MaxTeamSize = 3
	if mutate != nil {
		mutate(&competition)
	}

	created, err := comps.Create(context.Background(), competition)
	require.NoError(t, err)

	return &teamFixture{
		svc:         service.NewTeamService(teams, comps, sink),
		teams:       teams,
		comps:       comps,
		sink:        sink,
		competition: created,
	}
}

func participant(email string) domain.User {
	return domain.User{
		Name:   email,
		Email:  email,
		Role:   domain.RoleParticipant,
		Status: domain.StatusApproved,
	}
}

func TestTeamService_Register(t *testing.T) {
	t.Run("success creates a pending team with a code", func(t *testing.T) {
		f := newTeamFixture(t, nil)

		team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "we ship", participant("lea@example.com"))
		require.NoError(t, err)
		require.Equal(t, domain.TeamPending, team.Status)
		require.Equal(t, "lea@example.com", team.Leader)
		require.Len(t, team.Code, 8)

		events := f.sink.all()
		require.Len(t, events, 1)
		require.Equal(t, domain.EventTeamRegistration, events[0].Type)
		require.Equal(t, organizerActor.Email, events[0].RecipientEmail)
	})

	t.Run("unknown competition", func(t *testing.T) {
		f := newTeamFixture(t, nil)

		_, err := f.svc.Register(context.Background(), 999, "Gophers", "", participant("lea@example.com"))
		require.ErrorIs(t, err, service.ErrCompetitionNotFound)
	})

	t.Run("deadline passed", func(t *testing.T) {
		f := newTeamFixture(t, func(c *domain.Competition) {
			c.RegistrationDeadline = time.Now().Add(-time.Hour).Format(time.RFC3339)
		})

		_, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.ErrorIs(t, err, service.ErrDeadlinePassed)
	})

	t.Run("malformed persisted dates", func(t *testing.T) {
		f := newTeamFixture(t, func(c *domain.Competition) {
			c.RegistrationDeadline = "not-a-date"
		})

		_, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.ErrorIs(t, err, service.ErrInvalidCompetitionDates)
	})

	t.Run("duplicate leader registration", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		lea := participant("lea@example.com")

		_, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", lea)
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), f.competition.ID, "Rustaceans", "", lea)
		require.ErrorIs(t, err, service.ErrDuplicateRegistration)
	})

	t.Run("capacity exhausted", func(t *testing.T) {
		f := newTeamFixture(t, func(c *domain.Competition) { c.MaxTeams = 1 })

		_, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), f.competition.ID, "Rustaceans", "", participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrCapacityExceeded)
	})

	t.Run("rejected team frees its slot", func(t *testing.T) {
		f := newTeamFixture(t, func(c *domain.Competition) { c.MaxTeams = 1 })

		team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.NoError(t, err)

		_, err = f.svc.Reject(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), f.competition.ID, "Rustaceans", "", participant("bob@example.com"))
		require.NoError(t, err)
	})
}

func TestTeamService_Register_Concurrent(t *testing.T) {
	f := newTeamFixture(t, func(c *domain.Competition) { c.MaxTeams = 1 })

	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			leader := participant(fmt.Sprintf("leader%d@example.com", i))
			_, errs[i] = f.svc.Register(
				context.Background(), f.competition.ID, fmt.Sprintf("team-%d", i), "", leader)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, service.ErrCapacityExceeded)
	}
	require.Equal(t, 1, succeeded)

	teams, err := f.teams.FindByCompetition(context.Background(), f.competition.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
}

func TestTeamService_Review(t *testing.T) {
	register := func(t *testing.T, f *teamFixture, leader string) domain.Team {
		t.Helper()

		team, err := f.svc.Register(context.Background(), f.competition.ID, "Team "+leader, "", participant(leader))
		require.NoError(t, err)

		return team
	}

	t.Run("approve notifies the leader", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		approved, err := f.svc.Approve(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)
		require.Equal(t, domain.TeamApproved, approved.Status)

		events := f.sink.all()
		require.Equal(t, domain.EventTeamApproved, events[len(events)-1].Type)
		require.Equal(t, "lea@example.com", events[len(events)-1].RecipientEmail)
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		_, err := f.svc.Approve(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)

		again, err := f.svc.Approve(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)
		require.Equal(t, domain.TeamApproved, again.Status)
	})

	t.Run("reject is idempotent", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		_, err := f.svc.Reject(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)

		again, err := f.svc.Reject(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)
		require.Equal(t, domain.TeamRejected, again.Status)
	})

	t.Run("rejected team cannot be approved", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		_, err := f.svc.Reject(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)

		_, err = f.svc.Approve(context.Background(), team.ID, organizerActor)
		require.ErrorIs(t, err, service.ErrInvalidTeamTransition)
	})

	t.Run("approved team cannot be rejected", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		_, err := f.svc.Approve(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)

		_, err = f.svc.Reject(context.Background(), team.ID, organizerActor)
		require.ErrorIs(t, err, service.ErrInvalidTeamTransition)
	})

	t.Run("leader cannot review their own team", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		_, err := f.svc.Approve(context.Background(), team.ID, participant("lea@example.com"))
		require.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("admin may review", func(t *testing.T) {
		f := newTeamFixture(t, nil)
		team := register(t, f, "lea@example.com")

		approved, err := f.svc.Approve(context.Background(), team.ID, adminActor)
		require.NoError(t, err)
		require.Equal(t, domain.TeamApproved, approved.Status)
	})
}

func TestTeamService_JoinByCode(t *testing.T) {
	setup := func(t *testing.T, mutate func(*domain.Competition)) (*teamFixture, domain.Team) {
		t.Helper()

		f := newTeamFixture(t, mutate)
		team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.NoError(t, err)

		return f, team
	}

	t.Run("member joins a pending team", func(t *testing.T) {
		f, team := setup(t, nil)

		joined, err := f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.NoError(t, err)
		require.True(t, joined.HasMember("bob@example.com"))
	})

	t.Run("wrong code", func(t *testing.T) {
		f, _ := setup(t, nil)

		_, err := f.svc.JoinByCode(context.Background(), f.competition.ID, "WRONG123", participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrTeamCodeInvalid)
	})

	t.Run("team at size cap", func(t *testing.T) {
		f, team := setup(t, func(c *domain.Competition) { c.MaxTeamSize = 2 })

		_, err := f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.NoError(t, err)

		_, err = f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("carol@example.com"))
		require.ErrorIs(t, err, service.ErrTeamFull)
	})

	t.Run("already in a team of this competition", func(t *testing.T) {
		f, team := setup(t, nil)

		_, err := f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.NoError(t, err)

		_, err = f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrAlreadyInTeam)
	})

	t.Run("deadline passed", func(t *testing.T) {
		f, team := setup(t, nil)

		stored := f.comps.byID[f.competition.ID]
		stored.RegistrationDeadline = time.Now().Add(-time.Hour).Format(time.RFC3339)
		f.comps.byID[f.competition.ID] = stored

		_, err := f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrDeadlinePassed)
	})

	t.Run("rejected team's code stops working", func(t *testing.T) {
		f, team := setup(t, nil)

		_, err := f.svc.Reject(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)

		_, err = f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrTeamCodeInvalid)
	})
}

func TestTeamService_Visibility(t *testing.T) {
	f := newTeamFixture(t, nil)
	team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
	require.NoError(t, err)

	t.Run("member sees the team", func(t *testing.T) {
		got, err := f.svc.GetTeam(context.Background(), team.ID, participant("lea@example.com"))
		require.NoError(t, err)
		require.Equal(t, team.ID, got.ID)
	})

	t.Run("organizer sees the team", func(t *testing.T) {
		_, err := f.svc.GetTeam(context.Background(), team.ID, organizerActor)
		require.NoError(t, err)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		_, err := f.svc.GetTeam(context.Background(), team.ID, participant("stranger@example.com"))
		require.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("my team lookup finds the active team", func(t *testing.T) {
		got, err := f.svc.GetMyTeam(context.Background(), f.competition.ID, participant("lea@example.com"))
		require.NoError(t, err)
		require.Equal(t, team.ID, got.ID)

		_, err = f.svc.GetMyTeam(context.Background(), f.competition.ID, participant("stranger@example.com"))
		require.ErrorIs(t, err, service.ErrTeamNotFound)
	})

	t.Run("team listing is manager only", func(t *testing.T) {
		_, err := f.svc.GetTeamsByCompetition(context.Background(), f.competition.ID, participant("lea@example.com"))
		require.ErrorIs(t, err, service.ErrPermissionDenied)

		teams, err := f.svc.GetTeamsByCompetition(context.Background(), f.competition.ID, organizerActor)
		require.NoError(t, err)
		require.Len(t, teams, 1)
	})
}

func TestTeamService_RemoveMember(t *testing.T) {
	setup := func(t *testing.T) (*teamFixture, domain.Team) {
		t.Helper()

		f := newTeamFixture(t, nil)
		team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.NoError(t, err)

		_, err = f.svc.JoinByCode(context.Background(), f.competition.ID, team.Code, participant("bob@example.com"))
		require.NoError(t, err)

		return f, team
	}

	t.Run("leader removes a member", func(t *testing.T) {
		f, team := setup(t)

		err := f.svc.RemoveMember(context.Background(), team.ID, "bob@example.com", participant("lea@example.com"))
		require.NoError(t, err)

		got, err := f.teams.FindByID(context.Background(), team.ID)
		require.NoError(t, err)
		require.False(t, got.HasMember("bob@example.com"))
	})

	t.Run("leader cannot remove themselves", func(t *testing.T) {
		f, team := setup(t)

		err := f.svc.RemoveMember(context.Background(), team.ID, "lea@example.com", participant("lea@example.com"))
		require.ErrorIs(t, err, service.ErrCannotRemoveLeader)
	})

	t.Run("plain member cannot remove others", func(t *testing.T) {
		f, team := setup(t)

		err := f.svc.RemoveMember(context.Background(), team.ID, "lea@example.com", participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("unknown member", func(t *testing.T) {
		f, team := setup(t)

		err := f.svc.RemoveMember(context.Background(), team.ID, "ghost@example.com", organizerActor)
		require.ErrorIs(t, err, service.ErrMemberNotFound)
	})
}

func TestTeamService_DeleteTeam(t *testing.T) {
	t.Run("delete frees a capacity slot", func(t *testing.T) {
		f := newTeamFixture(t, func(c *domain.Competition) { c.MaxTeams = 1 })

		team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), f.competition.ID, "Rustaceans", "", participant("bob@example.com"))
		require.ErrorIs(t, err, service.ErrCapacityExceeded)

		err = f.svc.DeleteTeam(context.Background(), team.ID, participant("lea@example.com"))
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), f.competition.ID, "Rustaceans", "", participant("bob@example.com"))
		require.NoError(t, err)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		f := newTeamFixture(t, nil)

		team, err := f.svc.Register(context.Background(), f.competition.ID, "Gophers", "", participant("lea@example.com"))
		require.NoError(t, err)

		err = f.svc.DeleteTeam(context.Background(), team.ID, participant("stranger@example.com"))
		require.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}
