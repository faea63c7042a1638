package dto

import "time"

// CommentResponse is the viewer-relative comment shape. Deleted comments
// keep their row but carry empty content and isDeleted=true.
type CommentResponse struct {
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

// CreateCommentRequest for POST /comments. A reply sets both
// parentCommentId and replyAccountId; a top-level comment sets neither.
type CreateCommentRequest struct {
	PostID          string   `json:"postId" binding:"required"`
	Content         string   `json:"content"`
	Pictures        []string `json:"pictures"`
	ParentCommentID *string  `json:"parentCommentId"`
	ReplyAccountID  *string  `json:"replyAccountId"`
}

// UpdateCommentRequest for PUT /comments/:id
type UpdateCommentRequest struct {
	Content  string   `json:"content"`
	Pictures []string `json:"pictures"`
}

// CommentMutationResponse carries the created/deleted comment alongside
// the authoritative counts clients write into their cached views.
type CommentMutationResponse struct {
	Comment          *CommentResponse `json:"comment,omitempty"`
	PostCommentCount int64            `json:"postCommentCount"`
	ParentReplyCount *int64           `json:"parentReplyCount,omitempty"`
}
