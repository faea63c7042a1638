package api

import "time"

// AccountSummary is the author shape embedded in posts and comments
type AccountSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	AvatarLink  string `json:"avatarLink,omitempty"`
	IsFollowing bool   `json:"isFollowing"`
}

// Profile is the full account profile, viewer-relative
type Profile struct {
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

// Post is the viewer-relative post shape
type Post struct {
	ID            string          `json:"id"`
	Link          string          `json:"link"`
	Content       string          `json:"content"`
	Pictures      []string        `json:"pictures"`
	Account       *AccountSummary `json:"account"`
	LikeCount     int64           `json:"likeCount"`
	CommentCount  int64           `json:"commentCount"`
	IsOwner       bool            `json:"isOwner"`
	IsLiked       bool            `json:"isLiked"`
	LatestComment *CommentSummary `json:"latestComment,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CommentSummary is the compact latest-comment shape on feed items
type CommentSummary struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Account   *AccountSummary `json:"account"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Comment is the viewer-relative comment shape
type Comment struct {
	ID              string          `json:"id"`
	PostID          string          `json:"postId"`
	Content         string          `json:"content"`
	Pictures        []string        `json:"pictures"`
	Account         *AccountSummary `json:"account"`
	ParentCommentID *string         `json:"parentCommentId,omitempty"`
	ReplyAccount    *AccountSummary `json:"replyAccount,omitempty"`
	LikeCount       int64           `json:"likeCount"`
	ReplyCount      int64           `json:"replyCount"`
	IsOwner         bool            `json:"isOwner"`
	IsLiked         bool            `json:"isLiked"`
	IsDeleted       bool            `json:"isDeleted"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Page is one cursor-paginated result window
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
}

// TokenPair is a fresh access + refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the login / confirm-register payload
type Session struct {
	Account      *AccountSummary `json:"account"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

// CommentMutation carries a mutated comment plus the authoritative
// counts to write into cached views
type CommentMutation struct {
	Comment          *Comment `json:"comment,omitempty"`
	PostCommentCount int64    `json:"postCommentCount"`
	ParentReplyCount *int64   `json:"parentReplyCount,omitempty"`
}
