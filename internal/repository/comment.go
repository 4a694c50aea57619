package repository

import (
	"context"

	"navega/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments. Every
// lookup is scoped to the live post in the route, so a comment id that
// belongs to another post, or to a deleted one, is reported as not found.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID loads a live comment of postID with its author.
	GetByID(ctx context.Context, postID, id uint) (*models.Comment, error)
	// GetForUpdate row-locks the comment on PostgreSQL.
	GetForUpdate(ctx context.Context, postID, id uint) (*models.Comment, error)
	UpdateIdentifiesCount(ctx context.Context, comment *models.Comment, count int) error
	SoftDelete(ctx context.Context, postID, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// underLivePost narrows q to comments of postID while that post is not
// soft deleted.
func underLivePost(q *gorm.DB, postID uint) *gorm.DB {
	return q.Where("comments.post_id = ?", postID).
		Where("EXISTS (SELECT 1 FROM posts WHERE posts.id = comments.post_id AND posts.deleted_at IS NULL)")
}

func (r *commentRepository) GetByID(ctx context.Context, postID, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := underLivePost(readDB(ctx, r.db).WithContext(ctx).Preload("User"), postID).
		First(&comment, id).Error
	if err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	comment.ResolveAuthor()
	return &comment, nil
}

func (r *commentRepository) GetForUpdate(ctx context.Context, postID, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := underLivePost(lockForUpdate(r.db.WithContext(ctx)), postID).
		First(&comment, id).Error
	if err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateIdentifiesCount(ctx context.Context, comment *models.Comment, count int) error {
	comment.IdentifiesCount = count
	if err := r.db.WithContext(ctx).Model(comment).Update("identifies_count", count).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, postID, id uint) error {
	res := underLivePost(r.db.WithContext(ctx), postID).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
