package projection

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/pagination"
)

// commentCountSQL counts a post's visible comments: non-deleted top-level
// comments plus non-deleted replies whose parent is also not deleted.
// A live reply under a deleted parent is orphaned and not counted.
const commentCountSQL = `(SELECT COUNT(*) FROM comments c
	WHERE c.post_id = posts.id AND c.deleted_at IS NULL
	AND (c.parent_comment_id IS NULL OR EXISTS (
		SELECT 1 FROM comments pc WHERE pc.id = c.parent_comment_id AND pc.deleted_at IS NULL)))`

// postRow is the flat scan target for projected post queries
type postRow struct {
	ID             string
	Link           string
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AccountID      string
	AuthorUsername string
	AuthorName     string
	AuthorAvatar   string
	LikeCount      int64
	CommentCount   int64
	IsLiked        bool
	IsOwner        bool
	IsFollowing    bool
}

// PostQuery selects which posts to list. Exactly one of the restriction
// fields may be set; none of them means the global feed.
type PostQuery struct {
	ViewerID string
	AuthorID string
	Cursor   *pagination.Cursor
	PageSize int

	// Feed enables the feed extras: latestComment and score ordering
	// within the page.
	Feed bool
}

func (s *Service) basePostQuery(viewerID string) *gorm.DB {
	return s.db.Table("posts").
		Select(`posts.id, posts.link, posts.content, posts.created_at, posts.updated_at,
			posts.account_id,
			accounts.username AS author_username,
			accounts.name AS author_name,
			accounts.avatar_link AS author_avatar,
			(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id) AS like_count,
			`+commentCountSQL+` AS comment_count,
			EXISTS(SELECT 1 FROM post_likes pl2 WHERE pl2.post_id = posts.id AND pl2.account_id = ?) AS is_liked,
			posts.account_id = ? AS is_owner,
			CASE WHEN posts.account_id = ? THEN FALSE ELSE EXISTS(
				SELECT 1 FROM follows f WHERE f.account_id = ? AND f.following_id = posts.account_id
			) END AS is_following`,
			viewerID, viewerID, viewerID, viewerID).
		Joins("JOIN accounts ON accounts.id = posts.account_id").
		Where("posts.deleted_at IS NULL")
}

// ListPosts returns one projected page of posts
func (s *Service) ListPosts(q PostQuery) (pagination.Page[dto.PostResponse], error) {
	var empty pagination.Page[dto.PostResponse]

	query := s.basePostQuery(q.ViewerID)
	if q.AuthorID != "" {
		query = query.Where("posts.account_id = ?", q.AuthorID)
	}
	query = query.Scopes(pagination.Scope(q.Cursor, "posts")).Limit(q.PageSize + 1)

	var rows []postRow
	if err := query.Scan(&rows).Error; err != nil {
		return empty, err
	}

	items := make([]dto.PostResponse, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		items[i] = row.toResponse()
		ids[i] = row.ID
	}

	if err := s.attachPictures(items, ids); err != nil {
		return empty, err
	}
	if q.Feed {
		if err := s.attachLatestComments(items, ids); err != nil {
			return empty, err
		}
	}

	page := pagination.Shape(items, q.PageSize, func(p dto.PostResponse) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})

	// Feed pages are displayed by score; the cursor above was taken
	// before this reorder, so paging still advances by creation time.
	if q.Feed {
		s.sortPageByScore(page.Items)
	}

	return page, nil
}

// GetPostByID projects a single live post for the viewer
func (s *Service) GetPostByID(id, viewerID string) (*dto.PostResponse, error) {
	return s.getPost("posts.id = ?", id, viewerID)
}

// GetPostByLink projects a single live post addressed by its slug
func (s *Service) GetPostByLink(link, viewerID string) (*dto.PostResponse, error) {
	return s.getPost("posts.link = ?", link, viewerID)
}

func (s *Service) getPost(cond, value, viewerID string) (*dto.PostResponse, error) {
	var row postRow
	err := s.basePostQuery(viewerID).Where(cond, value).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.MsgNoPost)
	}
	if err != nil {
		return nil, err
	}

	items := []dto.PostResponse{row.toResponse()}
	if err := s.attachPictures(items, []string{row.ID}); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r postRow) toResponse() dto.PostResponse {
	return dto.PostResponse{
		ID:      r.ID,
		Link:    r.Link,
		Content: r.Content,
		Account: &dto.AccountSummary{
			ID:          r.AccountID,
			Username:    r.AuthorUsername,
			Name:        r.AuthorName,
			AvatarLink:  r.AuthorAvatar,
			IsFollowing: r.IsFollowing,
		},
		Pictures:     []string{},
		LikeCount:    r.LikeCount,
		CommentCount: r.CommentCount,
		IsOwner:      r.IsOwner,
		IsLiked:      r.IsLiked,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// attachPictures fills picture links for a batch of posts in one query,
// ordered by upload time
func (s *Service) attachPictures(items []dto.PostResponse, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		PostID string
		Link   string
	}
	err := s.db.Table("pictures").
		Select("post_id, link").
		Where("post_id IN ?", ids).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byPost := make(map[string][]string, len(ids))
	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], row.Link)
	}
	for i := range items {
		if links, ok := byPost[items[i].ID]; ok {
			items[i].Pictures = links
		}
	}
	return nil
}

// attachLatestComments fills the newest live top-level comment per post,
// batched with a window function
func (s *Service) attachLatestComments(items []dto.PostResponse, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		ID        string
		PostID    string
		Content   string
		CreatedAt time.Time
		AccountID string
		Username  string
		Name      string
		Avatar    string
	}
	err := s.db.Raw(`SELECT id, post_id, content, created_at, account_id, username, name, avatar FROM (
			SELECT c.id, c.post_id, c.content, c.created_at,
				a.id AS account_id, a.username, a.name, a.avatar_link AS avatar,
				ROW_NUMBER() OVER (PARTITION BY c.post_id ORDER BY c.created_at DESC, c.id DESC) AS rn
			FROM comments c
			JOIN accounts a ON a.id = c.account_id
			WHERE c.post_id IN ? AND c.deleted_at IS NULL AND c.parent_comment_id IS NULL
		) ranked WHERE rn = 1`, ids).Scan(&rows).Error
	if err != nil {
		return err
	}

	byPost := make(map[string]dto.CommentSummary, len(rows))
	for _, row := range rows {
		byPost[row.PostID] = dto.CommentSummary{
			ID:      row.ID,
			Content: row.Content,
			Account: &dto.AccountSummary{
				ID:         row.AccountID,
				Username:   row.Username,
				Name:       row.Name,
				AvatarLink: row.Avatar,
			},
			CreatedAt: row.CreatedAt,
		}
	}
	for i := range items {
		if summary, ok := byPost[items[i].ID]; ok {
			latest := summary
			items[i].LatestComment = &latest
		}
	}
	return nil
}

// PostCommentCount returns the authoritative visible comment count for a
// post, using the same orphan-suppressing rule as listings
func (s *Service) PostCommentCount(postID string) (int64, error) {
	var count int64
	err := s.db.Raw(`SELECT COUNT(*) FROM comments c
		WHERE c.post_id = ? AND c.deleted_at IS NULL
		AND (c.parent_comment_id IS NULL OR EXISTS (
			SELECT 1 FROM comments pc WHERE pc.id = c.parent_comment_id AND pc.deleted_at IS NULL))`,
		postID).Scan(&count).Error
	return count, err
}

// PostLikeCount returns the current like count for a post
func (s *Service) PostLikeCount(postID string) (int64, error) {
	var count int64
	err := s.db.Table("post_likes").Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
