package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are the content repositories bound to one transaction.
type TxRepositories struct {
	Posts            PostRepository
	Comments         CommentRepository
	PostReactions    ReactionStore
	CommentReactions ReactionStore
}

// UnitOfWork runs a function against transaction-bound repositories.
type UnitOfWork interface {
	// Do commits when fn returns nil and rolls back on error or panic.
	Do(ctx context.Context, fn func(tx TxRepositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork returns a UnitOfWork backed by db.Transaction.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(tx TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Posts:            NewPostRepository(tx),
			Comments:         NewCommentRepository(tx),
			PostReactions:    NewPostReactionStore(tx),
			CommentReactions: NewCommentReactionStore(tx),
		})
	})
}
