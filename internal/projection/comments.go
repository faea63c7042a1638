package projection

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/pagination"
)

// commentRow is the flat scan target for projected comment queries.
// Content is redacted to the empty string in SQL for deleted rows.
type commentRow struct {
	ID              string
	PostID          string
	Content         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AccountID       string
	AuthorUsername  string
	AuthorName      string
	AuthorAvatar    string
	ParentCommentID *string
	ReplyAccountID  *string
	ReplyUsername   *string
	ReplyName       *string
	LikeCount       int64
	ReplyCount      int64
	IsLiked         bool
	IsOwner         bool
	IsDeleted       bool
}

func (s *Service) baseCommentQuery(viewerID string) *gorm.DB {
	return s.db.Table("comments").
		Select(`comments.id, comments.post_id,
			CASE WHEN comments.deleted_at IS NOT NULL THEN '' ELSE comments.content END AS content,
			comments.created_at, comments.updated_at,
			comments.account_id, comments.parent_comment_id, comments.reply_account_id,
			accounts.username AS author_username,
			accounts.name AS author_name,
			accounts.avatar_link AS author_avatar,
			reply_accounts.username AS reply_username,
			reply_accounts.name AS reply_name,
			(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = comments.id) AS like_count,
			(SELECT COUNT(*) FROM comments r WHERE r.parent_comment_id = comments.id AND r.deleted_at IS NULL) AS reply_count,
			EXISTS(SELECT 1 FROM comment_likes cl2 WHERE cl2.comment_id = comments.id AND cl2.account_id = ?) AS is_liked,
			comments.account_id = ? AS is_owner,
			comments.deleted_at IS NOT NULL AS is_deleted`,
			viewerID, viewerID).
		Joins("JOIN accounts ON accounts.id = comments.account_id").
		Joins("LEFT JOIN accounts reply_accounts ON reply_accounts.id = comments.reply_account_id")
}

// CommentQuery selects which comments to list
type CommentQuery struct {
	ViewerID string
	PostID   string // top-level comments of a post
	ParentID string // replies of a comment
	Cursor   *pagination.Cursor
	PageSize int
}

// ListComments returns one projected page of top-level comments or
// replies, newest first. Deleted comments are excluded from listings;
// they only surface redacted when addressed as a parent.
func (s *Service) ListComments(q CommentQuery) (pagination.Page[dto.CommentResponse], error) {
	var empty pagination.Page[dto.CommentResponse]

	query := s.baseCommentQuery(q.ViewerID).Where("comments.deleted_at IS NULL")
	switch {
	case q.ParentID != "":
		query = query.Where("comments.parent_comment_id = ?", q.ParentID)
	case q.PostID != "":
		query = query.Where("comments.post_id = ? AND comments.parent_comment_id IS NULL", q.PostID)
	}
	query = query.Scopes(pagination.Scope(q.Cursor, "comments")).Limit(q.PageSize + 1)

	var rows []commentRow
	if err := query.Scan(&rows).Error; err != nil {
		return empty, err
	}

	items := make([]dto.CommentResponse, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		items[i] = row.toResponse()
		ids[i] = row.ID
	}
	if err := s.attachCommentPictures(items, ids); err != nil {
		return empty, err
	}

	return pagination.Shape(items, q.PageSize, func(c dto.CommentResponse) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}), nil
}

// GetCommentByID projects a single comment. Deleted comments are still
// addressable here, redacted, so reply threads under them keep working.
func (s *Service) GetCommentByID(id, viewerID string) (*dto.CommentResponse, error) {
	var row commentRow
	err := s.baseCommentQuery(viewerID).Where("comments.id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.MsgNoComment)
	}
	if err != nil {
		return nil, err
	}

	items := []dto.CommentResponse{row.toResponse()}
	if err := s.attachCommentPictures(items, []string{row.ID}); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r commentRow) toResponse() dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:      r.ID,
		PostID:  r.PostID,
		Content: r.Content,
		Account: &dto.AccountSummary{
			ID:         r.AccountID,
			Username:   r.AuthorUsername,
			Name:       r.AuthorName,
			AvatarLink: r.AuthorAvatar,
		},
		Pictures:        []string{},
		ParentCommentID: r.ParentCommentID,
		LikeCount:       r.LikeCount,
		ReplyCount:      r.ReplyCount,
		IsOwner:         r.IsOwner,
		IsLiked:         r.IsLiked,
		IsDeleted:       r.IsDeleted,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ReplyAccountID != nil {
		summary := &dto.AccountSummary{ID: *r.ReplyAccountID}
		if r.ReplyUsername != nil {
			summary.Username = *r.ReplyUsername
		}
		if r.ReplyName != nil {
			summary.Name = *r.ReplyName
		}
		resp.ReplyAccount = summary
	}
	return resp
}

func (s *Service) attachCommentPictures(items []dto.CommentResponse, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		CommentID string
		Link      string
	}
	err := s.db.Table("pictures").
		Select("comment_id, link").
		Where("comment_id IN ?", ids).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byComment := make(map[string][]string, len(ids))
	for _, row := range rows {
		byComment[row.CommentID] = append(byComment[row.CommentID], row.Link)
	}
	for i := range items {
		// deleted comments are redacted wholesale, pictures included
		if items[i].IsDeleted {
			continue
		}
		if links, ok := byComment[items[i].ID]; ok {
			items[i].Pictures = links
		}
	}
	return nil
}

// ReplyCount returns the live reply count under a top-level comment
func (s *Service) ReplyCount(parentID string) (int64, error) {
	var count int64
	err := s.db.Table("comments").
		Where("parent_comment_id = ? AND deleted_at IS NULL", parentID).
		Count(&count).Error
	return count, err
}

// CommentLikeCount returns the current like count for a comment
func (s *Service) CommentLikeCount(commentID string) (int64, error) {
	var count int64
	err := s.db.Table("comment_likes").Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}
