package dao_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arenahq/competition-api/internal/repository/dao"
)

// startPostgres spins up a disposable postgres container. These tests need a
// real database because the registration guarantees come from row locks that
// sqlmock cannot exercise.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=test",
		"POSTGRES_PASSWORD=test",
		"POSTGRES_DB=testdb",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	dsn := fmt.Sprintf(
		"host=localhost port=%s user=test password=test dbname=testdb sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if openErr != nil {
			return openErr
		}

		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}

		return sqlDB.Ping()
	})
	require.NoError(t, err)

	require.NoError(t, dao.InitTables(db))

	return db
}

func seedCompetition(t *testing.T, db *gorm.DB, maxTeams int) dao.Competition {
	t.Helper()

	now := time.Now()
	competition := dao.Competition{
		Title:                "Integration Cup",
		Description:          "testing under load",
		RegistrationDeadline: now.Add(24 * time.Hour).Format(time.RFC3339),
		StartDate:            now.Add(48 * time.Hour).Format(time.RFC3339),
		EndDate:              now.Add(96 * time.Hour).Format(time.RFC3339),
		Location:             "CI",
		MaxTeams:             maxTeams,
		MaxTeamSize:          4,
		Status:               "published",
		OrganizerID:          "olga@example.com",
		OrganizerName:        "Olga",
	}

	created, err := dao.NewCompetitionDAO(db).Insert(context.Background(), competition)
	require.NoError(t, err)

	return created
}

func TestTeamDAO_Register_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	db := startPostgres(t)
	teamDAO := dao.NewTeamDAO(db)

	t.Run("capacity holds under concurrent registrations", func(t *testing.T) {
		competition := seedCompetition(t, db, 1)

		const workers = 8

		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				_, errs[i] = teamDAO.Register(context.Background(), dao.Team{
					CompetitionID: competition.ID,
					Name:          fmt.Sprintf("team-%d", i),
					Leader:        fmt.Sprintf("leader%d@example.com", i),
					Status:        "pending",
					Code:          fmt.Sprintf("CODE%04d", i),
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			require.ErrorIs(t, err, dao.ErrCapacityExceeded)
		}
		require.Equal(t, 1, succeeded)

		var count int64
		require.NoError(t, db.Model(&dao.Team{}).
			Where("competition_id = ?", competition.ID).
			Count(&count).Error)
		require.EqualValues(t, 1, count)
	})

	t.Run("duplicate leader is refused", func(t *testing.T) {
		competition := seedCompetition(t, db, 10)

		_, err := teamDAO.Register(context.Background(), dao.Team{
			CompetitionID: competition.ID,
			Name:          "first",
			Leader:        "lea@example.com",
			Status:        "pending",
			Code:          "DUPAAA01",
		})
		require.NoError(t, err)

		_, err = teamDAO.Register(context.Background(), dao.Team{
			CompetitionID: competition.ID,
			Name:          "second",
			Leader:        "lea@example.com",
			Status:        "pending",
			Code:          "DUPAAA02",
		})
		require.ErrorIs(t, err, dao.ErrDuplicateRegistration)
	})

	t.Run("rejected team frees its capacity slot", func(t *testing.T) {
		competition := seedCompetition(t, db, 1)

		first, err := teamDAO.Register(context.Background(), dao.Team{
			CompetitionID: competition.ID,
			Name:          "first",
			Leader:        "ann@example.com",
			Status:        "pending",
			Code:          "FREEAA01",
		})
		require.NoError(t, err)

		require.NoError(t, teamDAO.UpdateStatus(context.Background(), first.ID, "pending", "rejected"))

		_, err = teamDAO.Register(context.Background(), dao.Team{
			CompetitionID: competition.ID,
			Name:          "second",
			Leader:        "ben@example.com",
			Status:        "pending",
			Code:          "FREEAA02",
		})
		require.NoError(t, err)
	})

	t.Run("join by code respects team size", func(t *testing.T) {
		competition := seedCompetition(t, db, 10)

		team, err := teamDAO.Register(context.Background(), dao.Team{
			CompetitionID: competition.ID,
			Name:          "joiners",
			Leader:        "cap@example.com",
			Status:        "pending",
			Code:          "JOINAA01",
		})
		require.NoError(t, err)

		_, err = teamDAO.AddMemberByCode(context.Background(), competition.ID, "JOINAA01", "m1@example.com", 2)
		require.NoError(t, err)

		_, err = teamDAO.AddMemberByCode(context.Background(), competition.ID, "JOINAA01", "m2@example.com", 2)
		require.ErrorIs(t, err, dao.ErrTeamFull)

		_, err = teamDAO.AddMemberByCode(context.Background(), competition.ID, "WRONG999", "m3@example.com", 4)
		require.ErrorIs(t, err, dao.ErrTeamCodeInvalid)

		got, err := teamDAO.FindByID(context.Background(), team.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 2)
	})
}
