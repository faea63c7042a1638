package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a comment on a post. Threading is one level deep:
// a reply carries the ID of its top-level parent, plus the account it
// answers so "@name" can be rendered even for reply-to-reply.
type Comment struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	PostID    string  `gorm:"not null;index" json:"postId"`
	Post      Post    `gorm:"foreignKey:PostID" json:"-"`
	AccountID string  `gorm:"not null;index" json:"accountId"`
	Account   Account `gorm:"foreignKey:AccountID" json:"-"`

	Content string `gorm:"type:text" json:"content"`

	// Nil for top-level comments. Always points at a top-level comment.
	ParentCommentID *string  `gorm:"type:uuid;index" json:"parentCommentId,omitempty"`
	ParentComment   *Comment `gorm:"foreignKey:ParentCommentID" json:"-"`

	// The account a reply is addressed to. Required whenever ParentCommentID is set.
	ReplyAccountID *string  `gorm:"type:uuid" json:"replyAccountId,omitempty"`
	ReplyAccount   *Account `gorm:"foreignKey:ReplyAccountID" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	DeletedAt *time.Time `gorm:"index" json:"-"`
}

// CommentLike records one account liking one comment
type CommentLike struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	CommentID string  `gorm:"not null;uniqueIndex:idx_comment_like_pair;index" json:"commentId"`
	Comment   Comment `gorm:"foreignKey:CommentID" json:"-"`
	AccountID string  `gorm:"not null;uniqueIndex:idx_comment_like_pair;index" json:"accountId"`
	Account   Account `gorm:"foreignKey:AccountID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
