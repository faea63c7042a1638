package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a blog post
type Post struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID string  `gorm:"not null;index" json:"accountId"`
	Account   Account `gorm:"foreignKey:AccountID" json:"-"`

	Content string `gorm:"type:text;not null" json:"content"`

	// Human-readable slug used in URLs. Unique across all posts,
	// soft-deleted ones included, so a reused slug can never collide.
	Link string `gorm:"uniqueIndex;not null" json:"link"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// PostLike records one account liking one post
type PostLike struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	PostID    string  `gorm:"not null;uniqueIndex:idx_post_like_pair;index" json:"postId"`
	Post      Post    `gorm:"foreignKey:PostID" json:"-"`
	AccountID string  `gorm:"not null;uniqueIndex:idx_post_like_pair;index" json:"accountId"`
	Account   Account `gorm:"foreignKey:AccountID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
