package repository

import (
	"context"

	"navega/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for forum posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads a live post with its author and live comments.
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetForUpdate loads a live post and, on PostgreSQL, row-locks it until
	// the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// List returns live posts newest first, each with its live comments oldest first.
	List(ctx context.Context, page Page) ([]models.Post, error)
	UpdateIdentifiesCount(ctx context.Context, post *models.Post, count int) error
	// SoftDelete tombstones the post; identify rows are kept.
	SoftDelete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func withThread(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User")
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withThread(readDB(ctx, r.db).WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	post.ResolveAuthor()
	return &post, nil
}

func (r *postRepository) GetForUpdate(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

// lockForUpdate adds FOR UPDATE where the dialect supports it. SQLite
// serializes writers on its own.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := readDB(ctx, r.db).WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) List(ctx context.Context, page Page) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	q := withThread(readDB(ctx, r.db).WithContext(ctx)).Order("posts.created_at DESC, posts.id DESC")
	if err := page.apply(q).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		posts[i].ResolveAuthor()
	}
	return posts, nil
}

func (r *postRepository) UpdateIdentifiesCount(ctx context.Context, post *models.Post, count int) error {
	post.IdentifiesCount = count
	if err := r.db.WithContext(ctx).Model(post).Update("identifies_count", count).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
