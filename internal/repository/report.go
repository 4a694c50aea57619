package repository

import (
	"context"
	"fmt"
	"time"

	"navega/internal/models"

	"gorm.io/gorm"
)

// RoleStat aggregates the results submitted under one user_role.
type RoleStat struct {
	Role         string
	TestCount    int64
	AverageScore float64
}

// ReportRepository runs the read-only aggregate queries behind the dashboard.
type ReportRepository interface {
	CountResults(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountUsersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	// MostFrequentCategory and MostFrequentRole return "" when there are no
	// results. Ties resolve to the alphabetically first value.
	MostFrequentCategory(ctx context.Context) (string, error)
	MostFrequentRole(ctx context.Context) (string, error)
	CategoryCounts(ctx context.Context) (map[models.ResultCategory]int64, error)
	// RoleStats is ordered by test count descending, then role.
	RoleStats(ctx context.Context) ([]RoleStat, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a ReportRepository over db.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) results(ctx context.Context) *gorm.DB {
	return readDB(ctx, r.db).WithContext(ctx).Model(&models.Result{})
}

func (r *reportRepository) CountResults(ctx context.Context) (int64, error) {
	var n int64
	if err := r.results(ctx).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *reportRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *reportRepository) CountUsersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := readDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *reportRepository) MostFrequentCategory(ctx context.Context) (string, error) {
	return r.mostFrequent(ctx, "result_category")
}

func (r *reportRepository) MostFrequentRole(ctx context.Context) (string, error) {
	return r.mostFrequent(ctx, "user_role")
}

// mostFrequent expects a trusted column name.
func (r *reportRepository) mostFrequent(ctx context.Context, column string) (string, error) {
	var rows []struct {
		Value string
		Total int64
	}
	err := r.results(ctx).
		Select(fmt.Sprintf("%s AS value, COUNT(*) AS total", column)).
		Group(column).
		Order(fmt.Sprintf("total DESC, %s ASC", column)).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Value, nil
}

func (r *reportRepository) CategoryCounts(ctx context.Context) (map[models.ResultCategory]int64, error) {
	var rows []struct {
		Category models.ResultCategory
		Total    int64
	}
	err := r.results(ctx).
		Select("result_category AS category, COUNT(*) AS total").
		Group("result_category").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.ResultCategory]int64, len(models.ResultCategories))
	for _, c := range models.ResultCategories {
		counts[c] = 0
	}
	for _, row := range rows {
		counts[row.Category] = row.Total
	}
	return counts, nil
}

func (r *reportRepository) RoleStats(ctx context.Context) ([]RoleStat, error) {
	stats := make([]RoleStat, 0)
	err := r.results(ctx).
		Select("user_role AS role, COUNT(*) AS test_count, AVG(final_score) AS average_score").
		Group("user_role").
		Order("test_count DESC, user_role ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
