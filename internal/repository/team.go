package repository

import (
	"context"
	"fmt"

	"github.com/arenahq/competition-api/internal/domain"
	"github.com/arenahq/competition-api/internal/repository/dao"
)

var (
	ErrTeamNotFound          = dao.ErrTeamNotFound
	ErrTeamCodeInvalid       = dao.ErrTeamCodeInvalid
	ErrTeamCodeExists        = dao.ErrTeamCodeExists
	ErrTeamFull              = dao.ErrTeamFull
	ErrTeamStale             = dao.ErrTeamStale
	ErrMemberNotFound        = dao.ErrMemberNotFound
	ErrDuplicateRegistration = dao.ErrDuplicateRegistration
	ErrCapacityExceeded      = dao.ErrCapacityExceeded
)

type TeamDAO interface {
	Register(ctx context.Context, team dao.Team) (dao.Team, error)
	FindByID(ctx context.Context, id uint) (dao.Team, error)
	FindByCompetition(ctx context.Context, competitionID uint) ([]dao.Team, error)
	FindActiveByMember(ctx context.Context, competitionID uint, email string) (dao.Team, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) error
	AddMemberByCode(ctx context.Context, competitionID uint, code, email string, maxTeamSize int) (dao.Team, error)
	RemoveMember(ctx context.Context, teamID uint, email string) error
	Delete(ctx context.Context, id uint) error
}

type TeamRepository struct {
	dao TeamDAO
}

func NewTeamRepository(dao TeamDAO) *TeamRepository {
	return &TeamRepository{
		dao: dao,
	}
}

func (r *TeamRepository) Register(ctx context.Context, team domain.Team) (domain.Team, error) {
	created, err := r.dao.Register(ctx, dao.Team{
		CompetitionID: team.CompetitionID,
		Name:          team.Name,
		Description:   team.Description,
		Leader:        team.Leader,
		Status:        string(team.Status),
		Code:          team.Code,
	})
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.Register -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint) (domain.Team, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TeamRepository) FindByCompetition(ctx context.Context, competitionID uint) ([]domain.Team, error) {
	found, err := r.dao.FindByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCompetition -> %w", err)
	}

	teams := make([]domain.Team, 0, len(found))
	for _, t := range found {
		teams = append(teams, r.daoToDomain(t))
	}

	return teams, nil
}

func (r *TeamRepository) FindActiveByMember(ctx context.Context, competitionID uint, email string) (domain.Team, error) {
	found, err := r.dao.FindActiveByMember(ctx, competitionID, email)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindActiveByMember -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TeamRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.TeamStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *TeamRepository) AddMemberByCode(ctx context.Context, competitionID uint, code, email string, maxTeamSize int) (domain.Team, error) {
	joined, err := r.dao.AddMemberByCode(ctx, competitionID, code, email, maxTeamSize)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.AddMemberByCode -> %w", err)
	}

	return r.daoToDomain(joined), nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID uint, email string) error {
	if err := r.dao.RemoveMember(ctx, teamID, email); err != nil {
		return fmt.Errorf("r.dao.RemoveMember -> %w", err)
	}

	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *TeamRepository) daoToDomain(t dao.Team) domain.Team {
	members := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, m.Email)
	}

	return domain.Team{
		ID:            t.ID,
		CompetitionID: t.CompetitionID,
		Name:          t.Name,
		Description:   t.Description,
		Leader:        t.Leader,
		Members:       members,
		Status:        domain.TeamStatus(t.Status),
		Code:          t.Code,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
