package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply to a post.
type Comment struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	PostID          uint   `gorm:"not null;index" json:"postId"`
	Message         string `gorm:"type:text;not null" json:"message"`
	Author          `gorm:"embedded"`
	User            *User          `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	IdentifiesCount int            `gorm:"not null;default:0" json:"identifiesCount"`
	AuthorName      string         `gorm:"-" json:"authorName"`
	CreatedAt       time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ResolveAuthor fills AuthorName from the loaded user or the nickname.
func (c *Comment) ResolveAuthor() {
	c.AuthorName = displayName(c.User, c.AnonymousNickname)
}
