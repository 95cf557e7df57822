package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/metrics"
	"github.com/arenahq/competition-api/internal/pkg/teamcode"
	"github.com/arenahq/competition-api/internal/repository"
)

var (
	ErrTeamNotFound          = repository.ErrTeamNotFound
	ErrTeamCodeInvalid       = repository.ErrTeamCodeInvalid
	ErrTeamFull              = repository.ErrTeamFull
	ErrMemberNotFound        = repository.ErrMemberNotFound
	ErrDuplicateRegistration = repository.ErrDuplicateRegistration
	ErrCapacityExceeded      = repository.ErrCapacityExceeded

	ErrDeadlinePassed          = errors.New("registration deadline has passed")
	ErrInvalidCompetitionDates = errors.New("competition has malformed dates")
	ErrAlreadyInTeam           = errors.New("user already belongs to a team in this competition")
	ErrInvalidTeamTransition   = errors.New("invalid team status transition")
	ErrCannotRemoveLeader      = errors.New("team leader cannot be removed; delete the team instead")
)

// codeRetries bounds how often registration retries on a join-code collision.
const codeRetries = 3

type TeamRepository interface {
	Register(ctx context.Context, team domain.Team) (domain.Team, error)
	FindByID(ctx context.Context, id uint) (domain.Team, error)
	FindByCompetition(ctx context.Context, competitionID uint) ([]domain.Team, error)
	FindActiveByMember(ctx context.Context, competitionID uint, email string) (domain.Team, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.TeamStatus) error
	AddMemberByCode(ctx context.Context, competitionID uint, code, email string, maxTeamSize int) (domain.Team, error)
	RemoveMember(ctx context.Context, teamID uint, email string) error
	Delete(ctx context.Context, id uint) error
}

type TeamCompetitionRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Competition, error)
}

type TeamService struct {
	repo     TeamRepository
	compRepo TeamCompetitionRepository
	sink     NotificationSink
}

func NewTeamService(repo TeamRepository, compRepo TeamCompetitionRepository, sink NotificationSink) *TeamService {
	return &TeamService{
		repo:     repo,
		compRepo: compRepo,
		sink:     sink,
	}
}

// Register creates a pending team led by the acting user. Checks run in a
// fixed order, first failure wins: competition exists, persisted dates parse,
// deadline, duplicate registration, capacity. The last two plus the insert
// are serialized per competition inside the repository.
func (s *TeamService) Register(ctx context.Context, competitionID uint, name, description string, actor domain.User) (domain.Team, error) {
	competition, err := s.compRepo.FindByID(ctx, competitionID)
	if err != nil {
		metrics.ObserveRegistration("not_found")
		return domain.Team{}, fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	deadline, err := competitionDeadline(competition)
	if err != nil {
		metrics.ObserveRegistration("bad_dates")
		return domain.Team{}, err
	}

	if time.Now().After(deadline) {
		metrics.ObserveRegistration("deadline_passed")
		return domain.Team{}, ErrDeadlinePassed
	}

	team := domain.Team{
		CompetitionID: competitionID,
		Name:          name,
		Description:   description,
		Leader:        actor.Email,
		Status:        domain.TeamPending,
	}

	var created domain.Team
	for attempt := 0; ; attempt++ {
		team.Code, err = teamcode.Generate()
		if err != nil {
			metrics.ObserveRegistration("error")
			return domain.Team{}, fmt.Errorf("teamcode.Generate -> %w", err)
		}

		created, err = s.repo.Register(ctx, team)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrTeamCodeExists) && attempt < codeRetries {
			continue
		}

		metrics.ObserveRegistration(registrationResult(err))
		return domain.Team{}, fmt.Errorf("s.repo.Register -> %w", err)
	}

	metrics.ObserveRegistration("success")
	s.sink.Notify(ctx, domain.Notification{
		Type:           domain.EventTeamRegistration,
		Title:          "New Team Registration",
		Message:        fmt.Sprintf("Team %q has registered for your competition %q", created.Name, competition.Title),
		RecipientEmail: competition.OrganizerID,
		CompetitionID:  competition.ID,
		TeamID:         created.ID,
	})

	return created, nil
}

// Approve moves a pending team to approved, which reveals its join code to
// the leader. Approving an approved team is a no-op; a rejected team can
// never be approved.
func (s *TeamService) Approve(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error) {
	team, competition, err := s.loadForReview(ctx, teamID, actor)
	if err != nil {
		return domain.Team{}, err
	}

	switch team.Status {
	case domain.TeamApproved:
		return team, nil
	case domain.TeamRejected:
		return domain.Team{}, ErrInvalidTeamTransition
	}

	err = s.repo.UpdateStatus(ctx, teamID, domain.TeamPending, domain.TeamApproved)
	if err != nil {
		if errors.Is(err, repository.ErrTeamStale) {
			return s.Approve(ctx, teamID, actor)
		}

		metrics.ObserveReview("approve", "error")
		return domain.Team{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	team.Status = domain.TeamApproved
	metrics.ObserveReview("approve", "success")
	s.sink.Notify(ctx, domain.Notification{
		Type:           domain.EventTeamApproved,
		Title:          "Team Approved",
		Message:        fmt.Sprintf("Your team %q was approved for %q", team.Name, competition.Title),
		RecipientEmail: team.Leader,
		CompetitionID:  competition.ID,
		TeamID:         team.ID,
	})

	return team, nil
}

// Reject moves a pending team to rejected, freeing a capacity slot.
// Rejecting an already-rejected team is a no-op success.
func (s *TeamService) Reject(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error) {
	team, competition, err := s.loadForReview(ctx, teamID, actor)
	if err != nil {
		return domain.Team{}, err
	}

	switch team.Status {
	case domain.TeamRejected:
		return team, nil
	case domain.TeamApproved:
		return domain.Team{}, ErrInvalidTeamTransition
	}

	err = s.repo.UpdateStatus(ctx, teamID, domain.TeamPending, domain.TeamRejected)
	if err != nil {
		if errors.Is(err, repository.ErrTeamStale) {
			return s.Reject(ctx, teamID, actor)
		}

		metrics.ObserveReview("reject", "error")
		return domain.Team{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	team.Status = domain.TeamRejected
	metrics.ObserveReview("reject", "success")
	s.sink.Notify(ctx, domain.Notification{
		Type:           domain.EventTeamRejected,
		Title:          "Team Rejected",
		Message:        fmt.Sprintf("Your team %q was rejected for %q", team.Name, competition.Title),
		RecipientEmail: team.Leader,
		CompetitionID:  competition.ID,
		TeamID:         team.ID,
	})

	return team, nil
}

// JoinByCode attaches the acting user to the team matching the join code,
// subject to the deadline, the one-active-team rule and the team size cap.
func (s *TeamService) JoinByCode(ctx context.Context, competitionID uint, code string, actor domain.User) (domain.Team, error) {
	competition, err := s.compRepo.FindByID(ctx, competitionID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	deadline, err := competitionDeadline(competition)
	if err != nil {
		return domain.Team{}, err
	}
	if time.Now().After(deadline) {
		return domain.Team{}, ErrDeadlinePassed
	}

	team, err := s.repo.AddMemberByCode(ctx, competitionID, code, actor.Email, competition.MaxTeamSize)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return domain.Team{}, ErrAlreadyInTeam
		}

		return domain.Team{}, fmt.Errorf("s.repo.AddMemberByCode -> %w", err)
	}

	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID uint, actor domain.User) (domain.Team, error) {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	competition, err := s.compRepo.FindByID(ctx, team.CompetitionID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	if !team.HasMember(actor.Email) && !actor.CanManageCompetition(competition) {
		return domain.Team{}, ErrPermissionDenied
	}

	return team, nil
}

// GetMyTeam returns the caller's pending or approved team in a competition.
func (s *TeamService) GetMyTeam(ctx context.Context, competitionID uint, actor domain.User) (domain.Team, error) {
	team, err := s.repo.FindActiveByMember(ctx, competitionID, actor.Email)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.FindActiveByMember -> %w", err)
	}

	return team, nil
}

func (s *TeamService) GetTeamsByCompetition(ctx context.Context, competitionID uint, actor domain.User) ([]domain.Team, error) {
	competition, err := s.compRepo.FindByID(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	if !actor.CanManageCompetition(competition) {
		return nil, ErrPermissionDenied
	}

	teams, err := s.repo.FindByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCompetition -> %w", err)
	}

	return teams, nil
}

// RemoveMember drops a member from a team. Leaders and the competition's
// organizer (or an admin) may remove members; the leader cannot remove
// themselves.
func (s *TeamService) RemoveMember(ctx context.Context, teamID uint, memberEmail string, actor domain.User) error {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	competition, err := s.compRepo.FindByID(ctx, team.CompetitionID)
	if err != nil {
		return fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	if actor.Email != team.Leader && !actor.CanManageCompetition(competition) {
		return ErrPermissionDenied
	}

	if memberEmail == team.Leader {
		return ErrCannotRemoveLeader
	}

	if err = s.repo.RemoveMember(ctx, teamID, memberEmail); err != nil {
		return fmt.Errorf("s.repo.RemoveMember -> %w", err)
	}

	return nil
}

// DeleteTeam removes the team entirely. Capacity is derived by counting live
// teams, so the freed slot is visible to the next registration immediately.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID uint, actor domain.User) error {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	competition, err := s.compRepo.FindByID(ctx, team.CompetitionID)
	if err != nil {
		return fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	if actor.Email != team.Leader && !actor.CanManageCompetition(competition) {
		return ErrPermissionDenied
	}

	if err = s.repo.Delete(ctx, teamID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *TeamService) loadForReview(ctx context.Context, teamID uint, actor domain.User) (domain.Team, domain.Competition, error) {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return domain.Team{}, domain.Competition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	competition, err := s.compRepo.FindByID(ctx, team.CompetitionID)
	if err != nil {
		return domain.Team{}, domain.Competition{}, fmt.Errorf("s.compRepo.FindByID -> %w", err)
	}

	if !actor.CanManageCompetition(competition) {
		return domain.Team{}, domain.Competition{}, ErrPermissionDenied
	}

	return team, competition, nil
}

// competitionDeadline parses the persisted deadline and start date. Both must
// parse; a malformed value is a data-integrity failure of the stored
// competition, not a user input error.
func competitionDeadline(c domain.Competition) (time.Time, error) {
	deadline, err := time.Parse(time.RFC3339, c.RegistrationDeadline)
	if err != nil {
		return time.Time{}, ErrInvalidCompetitionDates
	}
	if _, err = time.Parse(time.RFC3339, c.StartDate); err != nil {
		return time.Time{}, ErrInvalidCompetitionDates
	}

	return deadline, nil
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, repository.ErrDuplicateRegistration):
		return "duplicate"
	case errors.Is(err, repository.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, repository.ErrCompetitionNotFound):
		return "not_found"
	default:
		return "error"
	}
}
