package projection

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/dto"
	"github.com/quillhub/quillhub/internal/pagination"
)

type accountRow struct {
	ID             string
	Username       string
	Name           string
	Bio            string
	AvatarLink     string
	DateOfBirth    *time.Time
	Language       string
	CreatedAt      time.Time
	FollowerCount  int64
	FollowingCount int64
	PostCount      int64
	IsOwner        bool
	IsFollowing    bool
}

func (s *Service) baseAccountQuery(viewerID string) *gorm.DB {
	return s.db.Table("accounts").
		Select(`accounts.id, accounts.username, accounts.name, accounts.bio,
			accounts.avatar_link, accounts.date_of_birth, accounts.language, accounts.created_at,
			(SELECT COUNT(*) FROM follows fr WHERE fr.following_id = accounts.id) AS follower_count,
			(SELECT COUNT(*) FROM follows fg WHERE fg.account_id = accounts.id) AS following_count,
			(SELECT COUNT(*) FROM posts p WHERE p.account_id = accounts.id AND p.deleted_at IS NULL) AS post_count,
			accounts.id = ? AS is_owner,
			CASE WHEN accounts.id = ? THEN FALSE ELSE EXISTS(
				SELECT 1 FROM follows f WHERE f.account_id = ? AND f.following_id = accounts.id
			) END AS is_following`,
			viewerID, viewerID, viewerID).
		Where("accounts.deleted_at IS NULL")
}

// GetProfileByID projects a profile for the viewer
func (s *Service) GetProfileByID(id, viewerID string) (*dto.ProfileResponse, error) {
	return s.getProfile("accounts.id = ?", id, viewerID)
}

// GetProfileByUsername projects a profile addressed by username
func (s *Service) GetProfileByUsername(username, viewerID string) (*dto.ProfileResponse, error) {
	return s.getProfile("LOWER(accounts.username) = LOWER(?)", username, viewerID)
}

func (s *Service) getProfile(cond, value, viewerID string) (*dto.ProfileResponse, error) {
	var row accountRow
	err := s.baseAccountQuery(viewerID).Where(cond, value).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.MsgNoAccount)
	}
	if err != nil {
		return nil, err
	}
	resp := row.toResponse()
	return &resp, nil
}

// SearchQuery selects accounts whose display name matches a fragment
type SearchQuery struct {
	ViewerID string
	Name     string
	Cursor   *pagination.Cursor
	PageSize int
}

// SearchAccounts returns one page of name matches, newest accounts first
func (s *Service) SearchAccounts(q SearchQuery) (pagination.Page[dto.ProfileResponse], error) {
	var empty pagination.Page[dto.ProfileResponse]

	query := s.baseAccountQuery(q.ViewerID)
	if q.Name != "" {
		query = query.Where("LOWER(accounts.name) LIKE LOWER(?)", "%"+q.Name+"%")
	}
	query = query.Scopes(pagination.Scope(q.Cursor, "accounts")).Limit(q.PageSize + 1)

	var rows []accountRow
	if err := query.Scan(&rows).Error; err != nil {
		return empty, err
	}

	items := make([]dto.ProfileResponse, len(rows))
	for i, row := range rows {
		items[i] = row.toResponse()
	}

	return pagination.Shape(items, q.PageSize, func(p dto.ProfileResponse) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

func (r accountRow) toResponse() dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:             r.ID,
		Username:       r.Username,
		Name:           r.Name,
		Bio:            r.Bio,
		AvatarLink:     r.AvatarLink,
		DateOfBirth:    r.DateOfBirth,
		Language:       r.Language,
		FollowerCount:  r.FollowerCount,
		FollowingCount: r.FollowingCount,
		PostCount:      r.PostCount,
		IsOwner:        r.IsOwner,
		IsFollowing:    r.IsFollowing,
		CreatedAt:      r.CreatedAt,
	}
}
