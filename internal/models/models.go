package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Enabled      bool      `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `gorm:"not null"                 json:"created_at"`
	RoleID       uint      `gorm:"not null"                 json:"-"`
	Role         Role      `json:"role"`
}

type Role struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string       `gorm:"unique;not null"             json:"name"`
	Permissions []Permission `gorm:"many2many:roles_permissions" json:"permissions"`
	CreatedAt   time.Time    `gorm:"not null"                    json:"created_at"`
}

type Permission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"unique;not null"          json:"title"`
	Description string    `gorm:"not null"                 json:"description"`
	CreatedAt   time.Time `gorm:"not null"                 json:"created_at"`
}

// RefreshToken is a user's single rotation slot: ID equals the owning user's
// id, Token holds the current value and OldToken the immediately prior one.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	OldToken  string    `json:"old_token"`
	UserAgent string    `gorm:"not null"        json:"user_agent"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"unique;not null"          json:"title"`
	CreatedAt time.Time `gorm:"not null"                 json:"created_at"`
}

type Post struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"   json:"id"`
	Title       string     `gorm:"unique;not null"            json:"title"`
	Description string     `gorm:"not null"                   json:"description"`
	Author      string     `gorm:"not null"                   json:"author"`
	Content     string     `gorm:"not null;type:text"         json:"content"`
	CreatedAt   time.Time  `gorm:"not null"                   json:"created_at"`
	Logo        string     `json:"logo"`
	Likes       int        `gorm:"not null;default:0"         json:"likes"`
	Categories  []Category `gorm:"many2many:posts_categories" json:"categories"`
}

type PostLike struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"index;not null"           json:"user_id"`
	PostID uint `gorm:"index;not null"           json:"post_id"`
}

type File struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	Content   []byte    `gorm:"not null"             json:"-"`
	CreatedAt time.Time `gorm:"not null"             json:"created_at"`
}
