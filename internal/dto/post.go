package dto

import "time"

// PostResponse is the viewer-relative post shape used by the feed,
// profile listings, and the detail view.
type PostResponse struct {
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

// CreatePostRequest for POST /posts. Pictures are links returned by a
// prior upload call; they are attached to the post transactionally.
type CreatePostRequest struct {
	Content  string   `json:"content"`
	Pictures []string `json:"pictures"`
}

// UpdatePostRequest for PUT /posts/:id. The picture set replaces the
// previous one wholesale.
type UpdatePostRequest struct {
	Content  string   `json:"content"`
	Pictures []string `json:"pictures"`
}
