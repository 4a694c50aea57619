package repository

import (
	"context"
	"fmt"

	"navega/internal/models"

	"gorm.io/gorm"
)

// ReactionStore is the identify capability of a post or comment target.
type ReactionStore interface {
	HasReacted(ctx context.Context, targetID uint, who models.Identity) (bool, error)
	AddReaction(ctx context.Context, targetID uint, who models.Identity) error
	RemoveReaction(ctx context.Context, targetID uint, who models.Identity) error
	CountReactions(ctx context.Context, targetID uint) (int64, error)
}

// Conflict messages reported when an identity reacts to the same target twice.
const (
	DuplicatePostIdentifyMessage    = "Ya te identificaste con esta publicación."
	DuplicateCommentIdentifyMessage = "Ya te identificaste con este comentario."
)

type reactionStore struct {
	db       *gorm.DB
	column   string
	conflict string
	model    func() any
	row      func(targetID uint, userID *uint, deviceID *string) any
}

// NewPostReactionStore returns the ReactionStore backed by post_identifies.
func NewPostReactionStore(db *gorm.DB) ReactionStore {
	return &reactionStore{
		db:       db,
		column:   "post_id",
		conflict: DuplicatePostIdentifyMessage,
		model:    func() any { return &models.PostIdentify{} },
		row: func(targetID uint, userID *uint, deviceID *string) any {
			return &models.PostIdentify{PostID: targetID, UserID: userID, DeviceID: deviceID}
		},
	}
}

// NewCommentReactionStore returns the ReactionStore backed by comment_identifies.
func NewCommentReactionStore(db *gorm.DB) ReactionStore {
	return &reactionStore{
		db:       db,
		column:   "comment_id",
		conflict: DuplicateCommentIdentifyMessage,
		model:    func() any { return &models.CommentIdentify{} },
		row: func(targetID uint, userID *uint, deviceID *string) any {
			return &models.CommentIdentify{CommentID: targetID, UserID: userID, DeviceID: deviceID}
		},
	}
}

// scope narrows q to the rows of who on targetID. Anonymous rows never match
// a registered identity and the reverse.
func (s *reactionStore) scope(q *gorm.DB, targetID uint, who models.Identity) (*gorm.DB, error) {
	q = q.Where(s.column+" = ?", targetID)
	switch id := who.(type) {
	case models.Registered:
		return q.Where("user_id = ?", id.UserID), nil
	case models.Anonymous:
		return q.Where("device_id = ? AND user_id IS NULL", id.DeviceID), nil
	}
	return nil, fmt.Errorf("unsupported identity %T", who)
}

func (s *reactionStore) HasReacted(ctx context.Context, targetID uint, who models.Identity) (bool, error) {
	q, err := s.scope(s.db.WithContext(ctx).Model(s.model()), targetID, who)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (s *reactionStore) AddReaction(ctx context.Context, targetID uint, who models.Identity) error {
	var row any
	switch id := who.(type) {
	case models.Registered:
		uid := id.UserID
		row = s.row(targetID, &uid, nil)
	case models.Anonymous:
		device := id.DeviceID
		row = s.row(targetID, nil, &device)
	default:
		return models.NewInternalError(fmt.Errorf("unsupported identity %T", who))
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return writeError(err, s.conflict)
	}
	return nil
}

func (s *reactionStore) RemoveReaction(ctx context.Context, targetID uint, who models.Identity) error {
	q, err := s.scope(s.db.WithContext(ctx), targetID, who)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := q.Delete(s.model()).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *reactionStore) CountReactions(ctx context.Context, targetID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(s.model()).Where(s.column+" = ?", targetID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
