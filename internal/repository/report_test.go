package repository

import (
	"context"
	"testing"
	"time"

	"navega/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addResult(t *testing.T, db *gorm.DB, role string, category models.ResultCategory, score int) {
	t.Helper()
	device := "dev"
	require.NoError(t, NewResultRepository(db).Create(context.Background(), &models.Result{
		DeviceID:       &device,
		AgeRange:       "18-24",
		UserRole:       role,
		FinalScore:     score,
		ResultCategory: category,
	}))
}

func TestReportRepository_EmptyDatabase(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	n, err := repo.CountResults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cat, err := repo.MostFrequentCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", cat)

	counts, err := repo.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[models.ResultCategory]int64{"verde": 0, "amarillo": 0, "rojo": 0}, counts)

	stats, err := repo.RoleStats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestReportRepository_Aggregates(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	addResult(t, db, "estudiante", models.CategoryRojo, 30)
	addResult(t, db, "estudiante", models.CategoryVerde, 80)
	addResult(t, db, "docente", models.CategoryRojo, 20)
	addResult(t, db, "docente", models.CategoryVerde, 75)
	addResult(t, db, "estudiante", models.CategoryAmarillo, 55)

	n, err := repo.CountResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// rojo and verde tie at two; the alphabetical first wins.
	cat, err := repo.MostFrequentCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rojo", cat)

	role, err := repo.MostFrequentRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "estudiante", role)

	counts, err := repo.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.CategoryVerde])
	assert.Equal(t, int64(1), counts[models.CategoryAmarillo])
	assert.Equal(t, int64(2), counts[models.CategoryRojo])

	stats, err := repo.RoleStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "estudiante", stats[0].Role)
	assert.Equal(t, int64(3), stats[0].TestCount)
	assert.InDelta(t, 55.0, stats[0].AverageScore, 0.001)
	assert.Equal(t, "docente", stats[1].Role)
	assert.InDelta(t, 47.5, stats[1].AverageScore, 0.001)
}

func TestReportRepository_UsersCreatedBetween(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	now := time.Now()
	old := &models.User{Name: "old", Email: "old@x.com", Password: "h", CreatedAt: now.AddDate(0, 0, -3)}
	require.NoError(t, db.Create(old).Error)
	createUser(t, db, "new", "new@x.com", models.RoleUser)

	total, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	from := now.Add(-time.Hour)
	n, err := repo.CountUsersCreatedBetween(ctx, from, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestResultRepository_LatestForUser(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewResultRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "A", "a@x.com", models.RoleUser)

	_, err := repo.LatestForUser(ctx, u.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	for _, score := range []int{10, 20} {
		uid := u.ID
		require.NoError(t, repo.Create(ctx, &models.Result{
			UserID: &uid, AgeRange: "25-34", UserRole: "familia", FinalScore: score, ResultCategory: models.CategoryAmarillo,
		}))
	}

	latest, err := repo.LatestForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, latest.FinalScore)

	results, total, err := repo.List(ctx, Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 20, results[0].FinalScore)
}
