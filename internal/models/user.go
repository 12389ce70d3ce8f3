package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the account record (PostgreSQL). Follow edges live in the follows table.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:40;uniqueIndex"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email" gorm:"index"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID, nil for accounts issued by the JWT provider
	AvatarURL   string    `json:"avatar_url,omitempty"`
	ShowWatched bool      `json:"show_watched" gorm:"not null"` // profile allows watched entries in followers' feeds
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the minimal user shape embedded in feed items and notifications
type UserCompact struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ToCompact projects a user to its compact form
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
