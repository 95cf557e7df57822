package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamCodeInvalid       = errors.New("invalid team code")
	ErrTeamFull              = errors.New("team is full")
	ErrTeamStale             = errors.New("team status changed concurrently")
	ErrTeamCodeExists        = errors.New("team code already in use")
	ErrMemberNotFound        = errors.New("member not found in team")
	ErrDuplicateRegistration = errors.New("user already has a pending or approved team in this competition")
	ErrCapacityExceeded      = errors.New("maximum number of teams reached for this competition")
)

var activeTeamStatuses = []string{"pending", "approved"}

type Team struct {
	ID uint `gorm:"primaryKey"`

	CompetitionID uint   `gorm:"not null;index"`
	Name          string `gorm:"not null"`
	Description   string
	Leader        string `gorm:"not null"`
	Status        string `gorm:"not null;default:'pending'"`

	// Join code, unique across all teams. Opaque until the team is approved.
	Code string `gorm:"uniqueIndex;size:8;not null"`

	Members []TeamMember `gorm:"foreignKey:TeamID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TeamMember struct {
	ID     uint   `gorm:"primaryKey"`
	TeamID uint   `gorm:"not null;uniqueIndex:idx_team_member"`
	Email  string `gorm:"not null;uniqueIndex:idx_team_member"`

	CreatedAt time.Time `gorm:"not null"`
}

type TeamDAO struct {
	db *gorm.DB
}

func NewTeamDAO(db *gorm.DB) *TeamDAO {
	return &TeamDAO{
		db: db,
	}
}

// Register performs the duplicate-registration check, the capacity check and
// the insert in one transaction holding a FOR UPDATE lock on the competition
// row. Two concurrent registrations against the same competition serialize on
// that lock, so the count(non-rejected) <= max_teams invariant cannot be
// violated by a race.
func (d *TeamDAO) Register(ctx context.Context, team Team) (Team, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var competition Competition
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&competition, team.CompetitionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCompetitionNotFound
			}
			return err
		}

		var count int64
		err = tx.Model(&Team{}).
			Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
			Where("teams.competition_id = ? AND teams.status IN ?", team.CompetitionID, activeTeamStatuses).
			Where("teams.leader = ? OR team_members.email = ?", team.Leader, team.Leader).
			Distinct("teams.id").
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateRegistration
		}

		err = tx.Model(&Team{}).
			Where("competition_id = ? AND status <> ?", team.CompetitionID, "rejected").
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= int64(competition.MaxTeams) {
			return ErrCapacityExceeded
		}

		if err = tx.Omit("Members").Create(&team).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) &&
				pgErr.Code == pgerrcode.UniqueViolation &&
				strings.Contains(pgErr.Message, "code") {
				return ErrTeamCodeExists
			}
			return err
		}

		return tx.Create(&TeamMember{TeamID: team.ID, Email: team.Leader}).Error
	})
	if err != nil {
		return Team{}, err
	}

	return d.FindByID(ctx, team.ID)
}

func (d *TeamDAO) FindByID(ctx context.Context, id uint) (Team, error) {
	var team Team

	result := d.db.WithContext(ctx).Preload("Members").First(&team, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindByCompetition(ctx context.Context, competitionID uint) ([]Team, error) {
	var teams []Team

	result := d.db.WithContext(ctx).
		Preload("Members").
		Where("competition_id = ?", competitionID).
		Order("created_at ASC").
		Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}

	return teams, nil
}

// FindActiveByMember returns the pending or approved team the email belongs
// to (as leader or member) within a competition, if any.
func (d *TeamDAO) FindActiveByMember(ctx context.Context, competitionID uint, email string) (Team, error) {
	var team Team

	result := d.db.WithContext(ctx).
		Preload("Members").
		Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
		Where("teams.competition_id = ? AND teams.status IN ?", competitionID, activeTeamStatuses).
		Where("teams.leader = ? OR team_members.email = ?", email, email).
		First(&team)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

// UpdateStatus only applies when the row is still in the expected current
// status. Callers treat zero affected rows as a concurrent transition.
func (d *TeamDAO) UpdateStatus(ctx context.Context, id uint, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Team{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamStale
	}

	return nil
}

// AddMemberByCode joins a user onto the team matching (competition, code)
// while it is pending or approved. The team row is locked for the size check
// and insert; the one-active-team rule is re-checked under the same lock.
func (d *TeamDAO) AddMemberByCode(ctx context.Context, competitionID uint, code, email string, maxTeamSize int) (Team, error) {
	var teamID uint

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Team{}).
			Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
			Where("teams.competition_id = ? AND teams.status IN ?", competitionID, activeTeamStatuses).
			Where("teams.leader = ? OR team_members.email = ?", email, email).
			Distinct("teams.id").
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateRegistration
		}

		var team Team
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("competition_id = ? AND code = ? AND status IN ?", competitionID, code, activeTeamStatuses).
			First(&team).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamCodeInvalid
			}
			return err
		}
		teamID = team.ID

		err = tx.Model(&TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error
		if err != nil {
			return err
		}
		if count >= int64(maxTeamSize) {
			return ErrTeamFull
		}

		return tx.Create(&TeamMember{TeamID: team.ID, Email: email}).Error
	})
	if err != nil {
		return Team{}, err
	}

	return d.FindByID(ctx, teamID)
}

func (d *TeamDAO) RemoveMember(ctx context.Context, teamID uint, email string) error {
	result := d.db.WithContext(ctx).
		Where("team_id = ? AND email = ?", teamID, email).
		Delete(&TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}

func (d *TeamDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&TeamMember{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Team{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTeamNotFound
		}

		return nil
	})
}
