package models

import (
	"fmt"
	"strings"
)

// Identity is the acting party of a forum operation. It is either
// Registered or Anonymous; no other implementations exist.
type Identity interface {
	isIdentity()
	fmt.Stringer
}

// Registered identifies an authenticated account.
type Registered struct {
	UserID uint
}

// Anonymous identifies an unauthenticated viewer by a client-supplied device id.
type Anonymous struct {
	DeviceID string
}

func (Registered) isIdentity() {}
func (Anonymous) isIdentity()  {}

func (r Registered) String() string { return fmt.Sprintf("user:%d", r.UserID) }
func (a Anonymous) String() string  { return "device:" + a.DeviceID }

// Author is the persisted authorship of a post or comment. Exactly one of
// UserID and DeviceID is set.
type Author struct {
	UserID            *uint   `gorm:"index" json:"userId"`
	DeviceID          *string `gorm:"size:255;index" json:"deviceId"`
	AnonymousNickname *string `gorm:"size:100" json:"anonymousNickname"`
}

// NewAuthor builds the authorship columns for who. The nickname is only kept
// for anonymous authors.
func NewAuthor(who Identity, nickname string) Author {
	switch id := who.(type) {
	case Registered:
		uid := id.UserID
		return Author{UserID: &uid}
	case Anonymous:
		device := id.DeviceID
		a := Author{DeviceID: &device}
		if nick := strings.TrimSpace(nickname); nick != "" {
			a.AnonymousNickname = &nick
		}
		return a
	}
	return Author{}
}

// WrittenBy reports whether who is the author.
func (a Author) WrittenBy(who Identity) bool {
	switch id := who.(type) {
	case Registered:
		return a.UserID != nil && *a.UserID == id.UserID
	case Anonymous:
		return a.UserID == nil && a.DeviceID != nil && *a.DeviceID == id.DeviceID
	}
	return false
}

func displayName(user *User, nickname *string) string {
	if user != nil && user.Name != "" {
		return user.Name
	}
	if nickname != nil {
		return *nickname
	}
	return ""
}
