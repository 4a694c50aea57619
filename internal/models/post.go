// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxMessageLength bounds the text of posts and comments.
const MaxMessageLength = 10000

// Post is a forum entry written by a registered user or an anonymous device.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Message string `gorm:"type:text;not null" json:"message"`
	Author  `gorm:"embedded"`
	User    *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	// IdentifiesCount mirrors the number of post_identifies rows; it is
	// rewritten on every toggle.
	IdentifiesCount int       `gorm:"not null;default:0" json:"identifiesCount"`
	Comments        []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"Comments"`
	// AuthorName is resolved at read time.
	AuthorName string         `gorm:"-" json:"authorName"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// ResolveAuthor fills AuthorName on the post and its loaded comments.
func (p *Post) ResolveAuthor() {
	p.AuthorName = displayName(p.User, p.AnonymousNickname)
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	for i := range p.Comments {
		p.Comments[i].ResolveAuthor()
	}
}
