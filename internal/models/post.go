// Package models contains data structures for the community's domain models.
package models

import (
	"time"
)

// Post represents a discussion post on the community board.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Title    string   `gorm:"size:200;not null" json:"title"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	Category Category `gorm:"size:32;not null;index" json:"category"`
	// UserID is the author. It is set once at creation and never reassigned.
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Views     int64     `gorm:"not null;default:0;index" json:"views"`
	Likes     int64     `gorm:"not null;default:0;index" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostRow is a post joined with its author, as read by listing, search and
// detail queries.
type PostRow struct {
	ID             uint
	Title          string
	Content        string
	Category       Category
	UserID         uint
	Views          int64
	Likes          int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuthorUsername string
	AuthorAvatar   string
}

// PostInput is the caller-supplied payload for create and update.
type PostInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
}
