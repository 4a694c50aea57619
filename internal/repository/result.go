package repository

import (
	"context"

	"navega/internal/models"

	"gorm.io/gorm"
)

// ResultRepository stores quiz results. Results are append-only.
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	LatestForUser(ctx context.Context, userID uint) (*models.Result, error)
	List(ctx context.Context, page Page) ([]models.Result, int64, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository returns a new ResultRepository implementation.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *resultRepository) LatestForUser(ctx context.Context, userID uint) (*models.Result, error) {
	var result models.Result
	err := readDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&result).Error
	if err != nil {
		return nil, lookupError(err, "Result for user", userID)
	}
	return &result, nil
}

func (r *resultRepository) List(ctx context.Context, page Page) ([]models.Result, int64, error) {
	db := readDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Result{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	results := make([]models.Result, 0)
	if err := page.apply(db.Order("created_at DESC, id DESC")).Find(&results).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return results, total, nil
}
