package dao

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arenahq/competition-api/internal/domain"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrCompetitionHasTeams = errors.New("competition still has non-rejected teams")
	ErrStaleCompetition    = errors.New("competition status changed concurrently")
)

type CriteriaJSON []domain.EvaluationCriterion

func (c CriteriaJSON) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *CriteriaJSON) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for criteria column", value)
	}
	return json.Unmarshal(b, c)
}

type AwardsJSON []domain.Award

func (a AwardsJSON) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AwardsJSON) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for awards column", value)
	}
	return json.Unmarshal(b, a)
}

// Competition dates are stored as RFC3339 strings, matching the upstream data
// they were imported from. The team registration path re-parses them and
// treats malformed values as a data-integrity failure.
type Competition struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`

	StartDate            string `gorm:"not null"`
	EndDate              string `gorm:"not null"`
	RegistrationDeadline string `gorm:"not null"`

	Location    string `gorm:"not null"`
	MaxTeams    int    `gorm:"not null"`
	MaxTeamSize int    `gorm:"not null;default:4"`

	Status        string `gorm:"not null;default:'draft'"`
	OrganizerID   string `gorm:"not null;index"`
	OrganizerName string

	EvaluationCriteria CriteriaJSON `gorm:"type:jsonb"`
	Awards             AwardsJSON   `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CompetitionDAO struct {
	db *gorm.DB
}

func NewCompetitionDAO(db *gorm.DB) *CompetitionDAO {
	return &CompetitionDAO{
		db: db,
	}
}

func (d *CompetitionDAO) Insert(ctx context.Context, competition Competition) (Competition, error) {
	result := d.db.WithContext(ctx).Create(&competition)
	if result.Error != nil {
		return Competition{}, result.Error
	}

	return competition, nil
}

func (d *CompetitionDAO) FindByID(ctx context.Context, id uint) (Competition, error) {
	var competition Competition

	result := d.db.WithContext(ctx).First(&competition, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Competition{}, ErrCompetitionNotFound
		}

		return Competition{}, result.Error
	}

	return competition, nil
}

func (d *CompetitionDAO) FindAll(ctx context.Context) ([]Competition, error) {
	var competitions []Competition

	result := d.db.WithContext(ctx).Order("start_date ASC").Find(&competitions)
	if result.Error != nil {
		return nil, result.Error
	}

	return competitions, nil
}

func (d *CompetitionDAO) FindByOrganizer(ctx context.Context, organizerID string) ([]Competition, error) {
	var competitions []Competition

	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("start_date ASC").
		Find(&competitions)
	if result.Error != nil {
		return nil, result.Error
	}

	return competitions, nil
}

func (d *CompetitionDAO) Update(ctx context.Context, competition Competition) (Competition, error) {
	result := d.db.WithContext(ctx).
		Model(&Competition{}).
		Where("id = ?", competition.ID).
		Updates(map[string]interface{}{
			"title":                 competition.Title,
			"description":           competition.Description,
			"start_date":            competition.StartDate,
			"end_date":              competition.EndDate,
			"registration_deadline": competition.RegistrationDeadline,
			"location":              competition.Location,
			"max_teams":             competition.MaxTeams,
			"max_team_size":         competition.MaxTeamSize,
			"evaluation_criteria":   competition.EvaluationCriteria,
			"awards":                competition.Awards,
		})
	if result.Error != nil {
		return Competition{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Competition{}, ErrCompetitionNotFound
	}

	return d.FindByID(ctx, competition.ID)
}

// UpdateStatus is a conditional single-row write: it only succeeds when the
// row is still in the expected current status, so two racing transitions
// cannot both apply.
func (d *CompetitionDAO) UpdateStatus(ctx context.Context, id uint, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Competition{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleCompetition
	}

	return nil
}

// Delete removes a competition unless it still has non-rejected teams. The
// check and delete run in one transaction so a concurrent registration cannot
// slip in between.
func (d *CompetitionDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Team{}).
			Where("competition_id = ? AND status <> ?", id, "rejected").
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCompetitionHasTeams
		}

		var teamIDs []uint
		err = tx.Model(&Team{}).Where("competition_id = ?", id).Pluck("id", &teamIDs).Error
		if err != nil {
			return err
		}
		if len(teamIDs) > 0 {
			if err = tx.Where("team_id IN ?", teamIDs).Delete(&TeamMember{}).Error; err != nil {
				return err
			}
			if err = tx.Where("competition_id = ?", id).Delete(&Team{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Competition{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCompetitionNotFound
		}

		return nil
	})
}
