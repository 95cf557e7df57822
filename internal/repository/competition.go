package repository

import (
	"context"
	"fmt"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository/dao"
)

var (
	ErrCompetitionNotFound = dao.ErrCompetitionNotFound
	ErrCompetitionHasTeams = dao.ErrCompetitionHasTeams
	ErrStaleCompetition    = dao.ErrStaleCompetition
)

type CompetitionDAO interface {
	Insert(ctx context.Context, competition dao.Competition) (dao.Competition, error)
	FindByID(ctx context.Context, id uint) (dao.Competition, error)
	FindAll(ctx context.Context) ([]dao.Competition, error)
	FindByOrganizer(ctx context.Context, organizerID string) ([]dao.Competition, error)
	Update(ctx context.Context, competition dao.Competition) (dao.Competition, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) error
	Delete(ctx context.Context, id uint) error
}

type CompetitionRepository struct {
	dao CompetitionDAO
}

func NewCompetitionRepository(dao CompetitionDAO) *CompetitionRepository {
	return &CompetitionRepository{
		dao: dao,
	}
}

func (r *CompetitionRepository) Create(ctx context.Context, competition domain.Competition) (domain.Competition, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(competition))
	if err != nil {
		return domain.Competition{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CompetitionRepository) FindByID(ctx context.Context, id uint) (domain.Competition, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Competition{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CompetitionRepository) FindAll(ctx context.Context) ([]domain.Competition, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	competitions := make([]domain.Competition, 0, len(found))
	for _, c := range found {
		competitions = append(competitions, r.daoToDomain(c))
	}

	return competitions, nil
}

func (r *CompetitionRepository) FindByOrganizer(ctx context.Context, organizerID string) ([]domain.Competition, error) {
	found, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrganizer -> %w", err)
	}

	competitions := make([]domain.Competition, 0, len(found))
	for _, c := range found {
		competitions = append(competitions, r.daoToDomain(c))
	}

	return competitions, nil
}

func (r *CompetitionRepository) Update(ctx context.Context, competition domain.Competition) (domain.Competition, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(competition))
	if err != nil {
		return domain.Competition{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *CompetitionRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.CompetitionStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *CompetitionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *CompetitionRepository) domainToDAO(c domain.Competition) dao.Competition {
	return dao.Competition{
		ID:                   c.ID,
		Title:                c.Title,
		Description:          c.Description,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		RegistrationDeadline: c.RegistrationDeadline,
		Location:             c.Location,
		MaxTeams:             c.MaxTeams,
		MaxTeamSize:          c.MaxTeamSize,
		Status:               string(c.Status),
		OrganizerID:          c.OrganizerID,
		OrganizerName:        c.OrganizerName,
		EvaluationCriteria:   dao.CriteriaJSON(c.EvaluationCriteria),
		Awards:               dao.AwardsJSON(c.Awards),
	}
}

func (r *CompetitionRepository) daoToDomain(c dao.Competition) domain.Competition {
	return domain.Competition{
		ID:                   c.ID,
		Title:                c.Title,
		Description:          c.Description,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		RegistrationDeadline: c.RegistrationDeadline,
		Location:             c.Location,
		MaxTeams:             c.MaxTeams,
		MaxTeamSize:          c.MaxTeamSize,
		Status:               domain.CompetitionStatus(c.Status),
		OrganizerID:          c.OrganizerID,
		OrganizerName:        c.OrganizerName,
		EvaluationCriteria:   []domain.EvaluationCriterion(c.EvaluationCriteria),
		Awards:               []domain.Award(c.Awards),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}
