package dto

import (
	"time"

	"github.com/quillhub/quillhub/internal/models"
)

// AccountSummary is the small author shape embedded in posts and comments
type AccountSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	AvatarLink  string `json:"avatarLink,omitempty"`
	IsFollowing bool   `json:"isFollowing"`
}

// ProfileResponse is the full profile shape, viewer-relative
type ProfileResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Bio            string     `json:"bio"`
	AvatarLink     string     `json:"avatarLink,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	Language       string     `json:"language"`
	FollowerCount  int64      `json:"followerCount"`
	FollowingCount int64      `json:"followingCount"`
	PostCount      int64      `json:"postCount"`
	IsOwner        bool       `json:"isOwner"`
	IsFollowing    bool       `json:"isFollowing"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// UpdateProfileRequest for PUT /accounts/profile/me
type UpdateProfileRequest struct {
	Username    *string    `json:"username,omitempty" binding:"omitempty,min=3,max=30"`
	Name        *string    `json:"name,omitempty" binding:"omitempty,min=1,max=50"`
	Bio         *string    `json:"bio,omitempty" binding:"omitempty,max=500"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Language    *string    `json:"language,omitempty" binding:"omitempty,max=10"`
}

// ChangePasswordRequest for PUT /accounts/profile/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ChangeAvatarRequest re-links a previously uploaded picture as the avatar
type ChangeAvatarRequest struct {
	Link string `json:"link" binding:"required,url"`
}

// ToAccountSummary builds the embedded author shape. isFollowing is
// viewer-relative and computed by the caller.
func ToAccountSummary(a *models.Account, isFollowing bool) *AccountSummary {
	if a == nil {
		return nil
	}
	return &AccountSummary{
		ID:          a.ID,
		Username:    a.Username,
		Name:        a.Name,
		AvatarLink:  a.AvatarLink,
		IsFollowing: isFollowing,
	}
}
