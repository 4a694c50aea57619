package models

import "time"

// PostIdentify records that one identity identified with a post. At most one
// row exists per (post, user) and per (post, device).
type PostIdentify struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_identify_user;uniqueIndex:idx_post_identify_device" json:"postId"`
	UserID    *uint     `gorm:"uniqueIndex:idx_post_identify_user" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	DeviceID  *string   `gorm:"size:255;uniqueIndex:idx_post_identify_device" json:"deviceId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table backing PostIdentify.
func (PostIdentify) TableName() string { return "post_identifies" }

// CommentIdentify is the comment-level counterpart of PostIdentify.
type CommentIdentify struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_identify_user;uniqueIndex:idx_comment_identify_device" json:"commentId"`
	UserID    *uint     `gorm:"uniqueIndex:idx_comment_identify_user" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	DeviceID  *string   `gorm:"size:255;uniqueIndex:idx_comment_identify_device" json:"deviceId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table backing CommentIdentify.
func (CommentIdentify) TableName() string { return "comment_identifies" }
