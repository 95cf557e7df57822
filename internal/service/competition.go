package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository"
)

var (
	ErrCompetitionNotFound = repository.ErrCompetitionNotFound
	ErrCompetitionHasTeams = repository.ErrCompetitionHasTeams

	ErrInvalidDate           = errors.New("dates must be valid RFC3339 timestamps")
	ErrDeadlineAfterStart    = errors.New("registration deadline must be before the competition start date")
	ErrStartAfterEnd         = errors.New("start date must be before end date")
	ErrInvalidMaxTeams       = errors.New("max teams must be greater than zero")
	ErrCriteriaWeights       = errors.New("total weight of evaluation criteria must equal 100")
	ErrInvalidCompetitionTransition = errors.New("invalid competition status transition")
)

const defaultMaxTeamSize = 4

type CompetitionRepository interface {
	Create(ctx context.Context, competition domain.Competition) (domain.Competition, error)
	FindByID(ctx context.Context, id uint) (domain.Competition, error)
	FindAll(ctx context.Context) ([]domain.Competition, error)
	FindByOrganizer(ctx context.Context, organizerID string) ([]domain.Competition, error)
	Update(ctx context.Context, competition domain.Competition) (domain.Competition, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.CompetitionStatus) error
	Delete(ctx context.Context, id uint) error
}

type CompetitionService struct {
	repo CompetitionRepository
	sink NotificationSink
}

func NewCompetitionService(repo CompetitionRepository, sink NotificationSink) *CompetitionService {
	return &CompetitionService{
		repo: repo,
		sink: sink,
	}
}

// Create persists a new competition in draft for an approved organizer or an
// admin. All structural invariants are checked before anything is written.
func (s *CompetitionService) Create(ctx context.Context, competition domain.Competition, actor domain.User) (domain.Competition, error) {
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleOrganizer:
		if actor.Status != domain.StatusApproved {
			return domain.Competition{}, ErrOrganizerNotApproved
		}
	default:
		return domain.Competition{}, ErrPermissionDenied
	}

	if err := validateCompetition(&competition); err != nil {
		return domain.Competition{}, err
	}

	competition.Status = domain.CompetitionDraft
	competition.OrganizerID = actor.Email
	competition.OrganizerName = actor.Name

	created, err := s.repo.Create(ctx, competition)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CompetitionService) GetCompetition(ctx context.Context, id uint) (domain.Competition, error) {
	competition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return competition, nil
}

func (s *CompetitionService) GetCompetitions(ctx context.Context) ([]domain.Competition, error) {
	competitions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return competitions, nil
}

func (s *CompetitionService) GetCompetitionsByOrganizer(ctx context.Context, organizerID string) ([]domain.Competition, error) {
	competitions, err := s.repo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOrganizer -> %w", err)
	}

	return competitions, nil
}

// Update rewrites the structural fields of a competition, re-running creation
// validation. Status is not touched here; use UpdateStatus.
func (s *CompetitionService) Update(ctx context.Context, competition domain.Competition, actor domain.User) (domain.Competition, error) {
	existing, err := s.repo.FindByID(ctx, competition.ID)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !actor.CanManageCompetition(existing) {
		return domain.Competition{}, ErrPermissionDenied
	}

	if err = validateCompetition(&competition); err != nil {
		return domain.Competition{}, err
	}

	updated, err := s.repo.Update(ctx, competition)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// UpdateStatus moves a competition along the forward-only lifecycle
// draft -> published -> ongoing -> completed. Same-state and backward writes
// are rejected.
func (s *CompetitionService) UpdateStatus(ctx context.Context, id uint, newStatus domain.CompetitionStatus, actor domain.User) (domain.Competition, error) {
	competition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !actor.CanManageCompetition(competition) {
		return domain.Competition{}, ErrPermissionDenied
	}

	if !newStatus.Valid() || !competition.Status.CanTransitionTo(newStatus) {
		return domain.Competition{}, ErrInvalidCompetitionTransition
	}

	err = s.repo.UpdateStatus(ctx, id, competition.Status, newStatus)
	if err != nil {
		if errors.Is(err, repository.ErrStaleCompetition) {
			return domain.Competition{}, ErrInvalidCompetitionTransition
		}

		return domain.Competition{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	competition.Status = newStatus
	s.sink.Notify(ctx, domain.Notification{
		Type:           domain.EventCompetitionStatusChange,
		Title:          "Competition Status Updated",
		Message:        fmt.Sprintf("Competition %q is now %v", competition.Title, newStatus),
		RecipientEmail: competition.OrganizerID,
		CompetitionID:  competition.ID,
	})

	return competition, nil
}

// Delete removes a competition. Deletion is refused while any non-rejected
// team exists so that no live team is ever orphaned.
func (s *CompetitionService) Delete(ctx context.Context, id uint, actor domain.User) error {
	competition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !actor.CanManageCompetition(competition) {
		return ErrPermissionDenied
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func validateCompetition(c *domain.Competition) error {
	deadline, err := time.Parse(time.RFC3339, c.RegistrationDeadline)
	if err != nil {
		return ErrInvalidDate
	}
	start, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return ErrInvalidDate
	}
	end, err := time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return ErrInvalidDate
	}

	if !deadline.Before(start) {
		return ErrDeadlineAfterStart
	}
	if !start.Before(end) {
		return ErrStartAfterEnd
	}

	if c.MaxTeams <= 0 {
		return ErrInvalidMaxTeams
	}
	if c.MaxTeamSize <= 0 {
		c.MaxTeamSize = defaultMaxTeamSize
	}

	if len(c.EvaluationCriteria) > 0 {
		total := 0
		for _, criterion := range c.EvaluationCriteria {
			total += criterion.Weight
		}
		if total != 100 {
			return ErrCriteriaWeights
		}
	}

	return nil
}
