package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Picture is an uploaded image. It is created unattached at upload time
// and later linked to an account avatar, a post, or a comment by link URL.
type Picture struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	// External storage object key, used when deleting from the store.
	PublicID string `gorm:"not null" json:"publicId"`
	Link     string `gorm:"uniqueIndex;not null" json:"link"`

	// Uploader, kept even after the picture is attached elsewhere.
	UploaderID string `gorm:"not null;index" json:"-"`

	// At most one of these is set once the picture is attached.
	AccountID *string `gorm:"type:uuid;index" json:"accountId,omitempty"`
	PostID    *string `gorm:"type:uuid;index" json:"postId,omitempty"`
	CommentID *string `gorm:"type:uuid;index" json:"commentId,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (p *Picture) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
