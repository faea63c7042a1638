package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/logger"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/util"
)

const maxPictureSize = 10 << 20 // 10 MB per file

// UploadPictures accepts multipart image uploads, stores them, and
// records each as an unattached Picture. A later post, comment, or
// avatar mutation claims them by link.
// POST /api/upload
func (h *Handlers) UploadPictures(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	if h.store == nil {
		util.RespondError(c, apperr.Internal())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		util.RespondBadRequest(c, "NoFiles")
		return
	}

	links := make([]string, 0, len(files))
	for _, header := range files {
		if header.Size > maxPictureSize {
			util.RespondBadRequest(c, "FileTooLarge")
			return
		}
		if !util.IsValidImageFile(header.Filename) {
			util.RespondBadRequest(c, "InvalidFileType")
			return
		}

		file, err := header.Open()
		if err != nil {
			util.RespondError(c, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			util.RespondError(c, err)
			return
		}

		result, err := h.store.UploadImage(c.Request.Context(), data, accountID, header.Filename)
		if err != nil {
			logger.Log.Error("picture upload failed",
				zap.String("account_id", accountID),
				zap.String("filename", header.Filename),
				zap.Error(err),
			)
			util.RespondError(c, apperr.Internal())
			return
		}

		picture := models.Picture{
			PublicID:   result.Key,
			Link:       result.URL,
			UploaderID: accountID,
		}
		if err := h.db.Create(&picture).Error; err != nil {
			util.RespondError(c, err)
			return
		}

		links = append(links, picture.Link)
	}

	util.RespondCreated(c, gin.H{"links": links})
}

// DeletePicture removes an uploaded picture from storage and the
// database. Uploader only.
// DELETE /api/upload?link=
func (h *Handlers) DeletePicture(c *gin.Context) {
	accountID, ok := util.GetAccountIDFromContext(c)
	if !ok {
		return
	}

	link := c.Query("link")
	if link == "" {
		util.RespondBadRequest(c, "LinkRequired")
		return
	}

	var picture models.Picture
	if err := h.db.Where("link = ?", link).Take(&picture).Error; err != nil {
		util.HandleDBError(c, err, "NoPicture")
		return
	}
	if picture.UploaderID != accountID {
		util.RespondError(c, apperr.Forbidden())
		return
	}

	if h.store != nil {
		if err := h.store.DeleteImage(c.Request.Context(), picture.PublicID); err != nil {
			logger.Log.Warn("failed to delete picture from storage",
				zap.String("key", picture.PublicID),
				zap.Error(err),
			)
		}
	}

	if err := h.db.Delete(&picture).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, nil)
}
