package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/metrics"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/pagination"
	"github.com/quillhub/quillhub/internal/projection"
	"github.com/quillhub/quillhub/internal/util"
)

// GetFeed returns the global feed: cursor-paginated by recency, each
// page re-ordered by engagement score
// GET /api/posts?cursor=&pageSize=
func (h *Handlers) GetFeed(c *gin.Context) {
	cursor, err := pagination.Parse(util.CursorFromQuery(c))
	if err != nil {
		util.RespondBadRequest(c, "InvalidCursor")
		return
	}

	page, err := h.projection.ListPosts(projection.PostQuery{
		ViewerID: util.ViewerIDFromContext(c),
		Cursor:   cursor,
		PageSize: util.PageSizeFromQuery(c),
		Feed:     true,
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, page)
}

// GetMyPosts lists the caller's own posts, newest first
// GET /api/posts/me
func (h *Handlers) GetMyPosts(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	cursor, err := pagination.Parse(util.CursorFromQuery(c))
	if err != nil {
		util.RespondBadRequest(c, "InvalidCursor")
		return
	}

	page, err := h.projection.ListPosts(projection.PostQuery{
		ViewerID: accountID,
		AuthorID: accountID,
		Cursor:   cursor,
		PageSize: util.PageSizeFromQuery(c),
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, page)
}

// GetPostsByUsername lists an account's posts, newest first
// GET /api/posts/username/:username
func (h *Handlers) GetPostsByUsername(c *gin.Context) {
	var author models.Account
	if err := h.db.Where("LOWER(username) = ? AND deleted_at IS NULL",
		strings.ToLower(c.Param("username"))).Take(&author).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoAccount)
		return
	}

	cursor, err := pagination.Parse(util.CursorFromQuery(c))
	if err != nil {
		util.RespondBadRequest(c, "InvalidCursor")
		return
	}

	page, err := h.projection.ListPosts(projection.PostQuery{
		ViewerID: util.ViewerIDFromContext(c),
		AuthorID: author.ID,
		Cursor:   cursor,
		PageSize: util.PageSizeFromQuery(c),
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, page)
}

// GetPostByLink returns one post looked up by its URL slug. Soft-deleted
// posts are a 404.
// GET /api/posts/link/:link
func (h *Handlers) GetPostByLink(c *gin.Context) {
	post, err := h.projection.GetPostByLink(c.Param("link"), util.ViewerIDFromContext(c))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, post)
}

// GetPostComments lists a post's top-level comments, newest first
// GET /api/posts/:id/comments
func (h *Handlers) GetPostComments(c *gin.Context) {
	postID := c.Param("id")
	if err := h.db.Where("id = ? AND deleted_at IS NULL", postID).
		Take(&models.Post{}).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoPost)
		return
	}

	cursor, err := pagination.Parse(util.CursorFromQuery(c))
	if err != nil {
		util.RespondBadRequest(c, "InvalidCursor")
		return
	}

	page, err := h.projection.ListComments(projection.CommentQuery{
		ViewerID: util.ViewerIDFromContext(c),
		PostID:   postID,
		Cursor:   cursor,
		PageSize: util.PageSizeFromQuery(c),
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, page)
}

// CreatePost creates a post and attaches its pre-uploaded pictures
// POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if strings.TrimSpace(req.Content) == "" && len(req.Pictures) == 0 {
		util.RespondError(c, apperr.BadRequest(apperr.MsgPostAndPictureEmpty))
		return
	}

	post := models.Post{
		AccountID: accountID,
		Content:   req.Content,
		Link:      generatePostLink(req.Content),
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return attachPicturesToPost(tx, req.Pictures, accountID, post.ID)
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().PostsCreatedTotal.Inc()

	response, err := h.projection.GetPostByID(post.ID, accountID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondCreated(c, response)
}

// UpdatePost replaces a post's content and picture set. Owner only.
// PUT /api/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if strings.TrimSpace(req.Content) == "" && len(req.Pictures) == 0 {
		util.RespondError(c, apperr.BadRequest(apperr.MsgPostAndPictureEmpty))
		return
	}

	post, ok := h.ownedPost(c, accountID)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Update("content", req.Content).Error; err != nil {
			return err
		}
		// The new picture set replaces the old one wholesale
		if err := tx.Model(&models.Picture{}).
			Where("post_id = ?", post.ID).
			Update("post_id", nil).Error; err != nil {
			return err
		}
		return attachPicturesToPost(tx, req.Pictures, accountID, post.ID)
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	response, err := h.projection.GetPostByID(post.ID, accountID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, response)
}

// DeletePost soft-deletes a post and detaches its pictures. Owner only.
// DELETE /api/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	post, ok := h.ownedPost(c, accountID)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Update("deleted_at", time.Now()).Error; err != nil {
			return err
		}
		return tx.Model(&models.Picture{}).
			Where("post_id = ?", post.ID).
			Update("post_id", nil).Error
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, nil)
}

// LikePost records a like. Idempotent; responds with the authoritative count.
// POST /api/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if err := h.db.Where("id = ? AND deleted_at IS NULL", postID).
		Take(&models.Post{}).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoPost)
		return
	}

	like := models.PostLike{PostID: postID, AccountID: accountID}
	if err := h.db.Where("post_id = ? AND account_id = ?", postID, accountID).
		FirstOrCreate(&like).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().LikesTotal.WithLabelValues("post", "like").Inc()
	h.respondPostLikeCount(c, postID)
}

// CancelLikePost removes a like. Idempotent.
// DELETE /api/posts/:id/cancel-like
func (h *Handlers) CancelLikePost(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if err := h.db.Where("post_id = ? AND account_id = ?", postID, accountID).
		Delete(&models.PostLike{}).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().LikesTotal.WithLabelValues("post", "unlike").Inc()
	h.respondPostLikeCount(c, postID)
}

func (h *Handlers) respondPostLikeCount(c *gin.Context, postID string) {
	count, err := h.projection.PostLikeCount(postID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, gin.H{"likeCount": count})
}

// ownedPost loads a live post and enforces ownership, writing the error
// response itself on failure.
func (h *Handlers) ownedPost(c *gin.Context, accountID string) (*models.Post, bool) {
	var post models.Post
	if err := h.db.Where("id = ? AND deleted_at IS NULL", c.Param("id")).
		Take(&post).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoPost)
		return nil, false
	}
	if post.AccountID != accountID {
		util.RespondError(c, apperr.Forbidden())
		return nil, false
	}
	return &post, true
}

// attachPicturesToPost links unattached uploads to a post by URL. Only
// pictures the author uploaded are eligible.
func attachPicturesToPost(tx *gorm.DB, links []string, uploaderID, postID string) error {
	if len(links) == 0 {
		return nil
	}
	return tx.Model(&models.Picture{}).
		Where("link IN ? AND uploader_id = ? AND post_id IS NULL AND comment_id IS NULL AND account_id IS NULL",
			links, uploaderID).
		Update("post_id", postID).Error
}

// generatePostLink builds a URL slug from the content's leading words
// plus a random suffix that keeps it unique.
func generatePostLink(content string) string {
	suffix := strings.Split(uuid.New().String(), "-")[0]

	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(content) {
		if b.Len() >= 60 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
