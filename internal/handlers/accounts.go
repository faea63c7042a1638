package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/logger"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/pagination"
	"github.com/quillhub/quillhub/internal/projection"
	"github.com/quillhub/quillhub/internal/util"
)

// GetMyProfile returns the caller's own profile
// GET /api/accounts/profile/me
func (h *Handlers) GetMyProfile(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	profile, err := h.projection.GetProfileByID(accountID, accountID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, profile)
}

// GetProfileByID returns a profile, viewer-relative
// GET /api/accounts/profile/:id
func (h *Handlers) GetProfileByID(c *gin.Context) {
	profile, err := h.projection.GetProfileByID(c.Param("id"), util.ViewerIDFromContext(c))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, profile)
}

// GetProfileByUsername returns a profile looked up by username
// GET /api/accounts/profile/username/:username
func (h *Handlers) GetProfileByUsername(c *gin.Context) {
	profile, err := h.projection.GetProfileByUsername(c.Param("username"), util.ViewerIDFromContext(c))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, profile)
}

// SearchAccounts lists accounts whose name or username matches, paginated
// GET /api/accounts?name=&cursor=&pageSize=
func (h *Handlers) SearchAccounts(c *gin.Context) {
	cursor, err := pagination.Parse(util.CursorFromQuery(c))
	if err != nil {
		util.RespondBadRequest(c, "InvalidCursor")
		return
	}

	page, err := h.projection.SearchAccounts(projection.SearchQuery{
		ViewerID: util.ViewerIDFromContext(c),
		Name:     strings.TrimSpace(c.Query("name")),
		Cursor:   cursor,
		PageSize: util.PageSizeFromQuery(c),
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, page)
}

// UpdateProfile updates the caller's profile fields
// PUT /api/accounts/profile/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	account, ok := util.GetAccountFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil && *req.Username != account.Username {
		if !util.ValidUsername(*req.Username) {
			util.RespondError(c, apperr.Validation(apperr.MsgUpdateAccountFailed, map[string]string{
				"username": "InvalidUsername",
			}))
			return
		}
		var count int64
		if err := h.db.Model(&models.Account{}).
			Where("LOWER(username) = ? AND id <> ?", strings.ToLower(*req.Username), account.ID).
			Count(&count).Error; err != nil {
			util.RespondError(c, err)
			return
		}
		if count > 0 {
			util.RespondError(c, apperr.Validation(apperr.MsgUsernameExists, map[string]string{
				"username": "UsernameExists",
			}))
			return
		}
		updates["username"] = *req.Username
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.DateOfBirth != nil {
		updates["date_of_birth"] = *req.DateOfBirth
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}

	if len(updates) > 0 {
		if err := h.db.Model(account).Updates(updates).Error; err != nil {
			util.RespondError(c, apperr.BadRequest(apperr.MsgUpdateAccountFailed))
			return
		}
	}

	profile, err := h.projection.GetProfileByID(account.ID, account.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, profile)
}

// ChangePassword verifies the old password and sets a new one
// PUT /api/accounts/profile/change-password
func (h *Handlers) ChangePassword(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.ChangePassword(accountID, req.OldPassword, req.NewPassword); err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, nil)
}

// ChangeAvatar re-links a previously uploaded picture as the avatar
// PUT /api/accounts/profile/change-avatar
func (h *Handlers) ChangeAvatar(c *gin.Context) {
	account, ok := util.GetAccountFromContext(c)
	if !ok {
		return
	}

	var req dto.ChangeAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var picture models.Picture
	if err := h.db.Where("link = ? AND uploader_id = ?", req.Link, account.ID).
		Take(&picture).Error; err != nil {
		util.HandleDBError(c, err, "NoPicture")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Detach the previous avatar picture, if any
		if err := tx.Model(&models.Picture{}).
			Where("account_id = ?", account.ID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&picture).Update("account_id", account.ID).Error; err != nil {
			return err
		}
		return tx.Model(account).Update("avatar_link", picture.Link).Error
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	profile, err := h.projection.GetProfileByID(account.ID, account.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, profile)
}

// SelfRemove schedules the caller's account for permanent removal after
// the grace period. Logging in again before then cancels it.
// POST /api/accounts/profile/self-remove
func (h *Handlers) SelfRemove(c *gin.Context) {
	account, ok := util.GetAccountFromContext(c)
	if !ok {
		return
	}

	removeAt := time.Now().Add(h.selfRemoveAfter)
	if err := h.db.Model(account).Update("self_remove_time", removeAt).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	if h.notifier != nil {
		if err := h.notifier.SendRemovalNotice(account.Email, removeAt); err != nil {
			logger.Log.Warn("failed to send removal notice",
				zap.String("account_id", account.ID),
				zap.Error(err),
			)
		}
	}

	util.RespondSuccess(c, gin.H{"removeAt": removeAt})
}

// FollowAccount creates a follow edge to the target account. Idempotent.
// POST /api/accounts/:id/follow
func (h *Handlers) FollowAccount(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if targetID == accountID {
		util.RespondError(c, apperr.Forbidden())
		return
	}

	var target models.Account
	if err := h.db.Where("id = ? AND deleted_at IS NULL", targetID).
		Take(&target).Error; err != nil {
		util.HandleDBError(c, err, apperr.MsgNoAccount)
		return
	}

	follow := models.Follow{AccountID: accountID, FollowingID: targetID}
	if err := h.db.Where("account_id = ? AND following_id = ?", accountID, targetID).
		FirstOrCreate(&follow).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	count, err := h.followerCount(targetID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, gin.H{"followerCount": count})
}

// UnfollowAccount removes a follow edge. Idempotent.
// DELETE /api/accounts/:id/unfollow
func (h *Handlers) UnfollowAccount(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if err := h.db.Where("account_id = ? AND following_id = ?", accountID, targetID).
		Delete(&models.Follow{}).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	count, err := h.followerCount(targetID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, gin.H{"followerCount": count})
}

func (h *Handlers) followerCount(accountID string) (int64, error) {
	var count int64
	err := h.db.Model(&models.Follow{}).
		Where("following_id = ?", accountID).
		Count(&count).Error
	return count, err
}
