package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/metrics"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/pagination"
	"github.com/quillhub/quillhub/internal/projection"
	"github.com/quillhub/quillhub/internal/util"
)

// GetCommentReplies lists a comment's replies, newest first. The parent
// may be soft-deleted; its thread stays readable.
// GET /api/comments/:id?cursor=&pageSize=
func (h *Handlers) GetCommentReplies(c *gin.Context) {
	parentID := c.Param("id")
	if err := h.db.Where("id = ?", parentID).
		Take(&models.Comment{}).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoComment)
		return
	}

	cursor, err := pagination.Parse(util.CursorFromQuery(c))
	if err != nil {
		util.RespondBadRequest(c, "InvalidCursor")
		return
	}

	page, err := h.projection.ListComments(projection.CommentQuery{
		ViewerID: util.ViewerIDFromContext(c),
		ParentID: parentID,
		Cursor:   cursor,
		PageSize: util.PageSizeFromQuery(c),
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, page)
}

// CreateComment creates a top-level comment or a reply. A reply to a
// reply collapses onto the top-level parent, keeping threads one level deep.
// POST /api/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if req.ParentCommentID != nil && req.ReplyAccountID == nil {
		util.RespondError(c, apperr.BadRequest(apperr.MsgReplyAccountRequired))
		return
	}
	if req.ReplyAccountID != nil && req.ParentCommentID == nil {
		util.RespondError(c, apperr.BadRequest(apperr.MsgParentCommentRequired))
		return
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Pictures) == 0 {
		util.RespondError(c, apperr.BadRequest(apperr.MsgCommentAndPictureEmpty))
		return
	}

	if err := h.db.Where("id = ? AND deleted_at IS NULL", req.PostID).
		Take(&models.Post{}).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoPost)
		return
	}

	parentID := req.ParentCommentID
	if parentID != nil {
		var parent models.Comment
		if err := h.db.Where("id = ? AND post_id = ? AND deleted_at IS NULL",
			*parentID, req.PostID).Take(&parent).Error; err != nil {
			util.HandleDBError(c, err, apperr.MsgNoComment)
			return
		}
		if parent.ParentCommentID != nil {
			parentID = parent.ParentCommentID
		}

		if err := h.db.Where("id = ? AND deleted_at IS NULL", *req.ReplyAccountID).
			Take(&models.Account{}).Error; err != nil {
			util.HandleDBError(c, err, apperr.MsgNoAccount)
			return
		}
	}

	comment := models.Comment{
		PostID:          req.PostID,
		AccountID:       accountID,
		Content:         req.Content,
		ParentCommentID: parentID,
		ReplyAccountID:  req.ReplyAccountID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return attachPicturesToComment(tx, req.Pictures, accountID, comment.ID)
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().CommentsCreatedTotal.Inc()

	response, err := h.commentMutationResponse(comment.ID, req.PostID, parentID, accountID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondCreated(c, response)
}

// UpdateComment replaces a comment's content and picture set. Owner only;
// deleted comments cannot be edited.
// PUT /api/comments/:id
func (h *Handlers) UpdateComment(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if strings.TrimSpace(req.Content) == "" && len(req.Pictures) == 0 {
		util.RespondError(c, apperr.BadRequest(apperr.MsgCommentAndPictureEmpty))
		return
	}

	comment, ok := h.ownedComment(c, accountID)
	if !ok {
		return
	}
	if comment.DeletedAt != nil {
		util.RespondError(c, apperr.BadRequest(apperr.MsgCommentDeleted))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(comment).Update("content", req.Content).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Picture{}).
			Where("comment_id = ?", comment.ID).
			Update("comment_id", nil).Error; err != nil {
			return err
		}
		return attachPicturesToComment(tx, req.Pictures, accountID, comment.ID)
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	response, err := h.projection.GetCommentByID(comment.ID, accountID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, response)
}

// DeleteComment soft-deletes a comment. The row stays addressable so its
// replies remain readable; listings and counts drop it.
// DELETE /api/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	comment, ok := h.ownedComment(c, accountID)
	if !ok {
		return
	}
	if comment.DeletedAt != nil {
		util.RespondError(c, apperr.BadRequest(apperr.MsgCommentDeleted))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(comment).Update("deleted_at", time.Now()).Error; err != nil {
			return err
		}
		return tx.Model(&models.Picture{}).
			Where("comment_id = ?", comment.ID).
			Update("comment_id", nil).Error
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	response, err := h.commentMutationResponse("", comment.PostID, comment.ParentCommentID, accountID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccessMessage(c, apperr.MsgCommentDeleted, response)
}

// LikeComment records a like on a comment. Idempotent.
// POST /api/comments/:id/like
func (h *Handlers) LikeComment(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	commentID := c.Param("id")
	if err := h.db.Where("id = ? AND deleted_at IS NULL", commentID).
		Take(&models.Comment{}).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoComment)
		return
	}

	like := models.CommentLike{CommentID: commentID, AccountID: accountID}
	if err := h.db.Where("comment_id = ? AND account_id = ?", commentID, accountID).
		FirstOrCreate(&like).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().LikesTotal.WithLabelValues("comment", "like").Inc()
	h.respondCommentLikeCount(c, commentID)
}

// CancelLikeComment removes a like from a comment. Idempotent.
// DELETE /api/comments/:id/cancel-like
func (h *Handlers) CancelLikeComment(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	commentID := c.Param("id")
	if err := h.db.Where("comment_id = ? AND account_id = ?", commentID, accountID).
		Delete(&models.CommentLike{}).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().LikesTotal.WithLabelValues("comment", "unlike").Inc()
	h.respondCommentLikeCount(c, commentID)
}

func (h *Handlers) respondCommentLikeCount(c *gin.Context, commentID string) {
	count, err := h.projection.CommentLikeCount(commentID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, gin.H{"likeCount": count})
}

// commentMutationResponse bundles the mutated comment with the counts
// clients write back into their cached views. commentID may be empty
// after a delete.
func (h *Handlers) commentMutationResponse(commentID, postID string, parentID *string, viewerID string) (*dto.CommentMutationResponse, error) {
	response := &dto.CommentMutationResponse{}

	if commentID != "" {
		comment, err := h.projection.GetCommentByID(commentID, viewerID)
		if err != nil {
			return nil, err
		}
		response.Comment = comment
	}

	postCount, err := h.projection.PostCommentCount(postID)
	if err != nil {
		return nil, err
	}
	response.PostCommentCount = postCount

	if parentID != nil {
		replyCount, err := h.projection.ReplyCount(*parentID)
		if err != nil {
			return nil, err
		}
		response.ParentReplyCount = &replyCount
	}

	return response, nil
}

func (h *Handlers) ownedComment(c *gin.Context, accountID string) (*models.Comment, bool) {
	var comment models.Comment
	if err := h.db.Where("id = ?", c.Param("id")).
		Take(&comment).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoComment)
		return nil, false
	}
	if comment.AccountID != accountID {
		util.RespondError(c, apperr.Forbidden())
		return nil, false
	}
	return &comment, true
}

func attachPicturesToComment(tx *gorm.DB, links []string, uploaderID, commentID string) error {
	if len(links) == 0 {
		return nil
	}
	return tx.Model(&models.Picture{}).
		Where("link IN ? AND uploader_id = ? AND post_id IS NULL AND comment_id IS NULL AND account_id IS NULL",
			links, uploaderID).
		Update("comment_id", commentID).Error
}
