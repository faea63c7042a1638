// Package projection builds viewer-relative response shapes straight
// from SQL. Every derived field (isOwner, isLiked, isFollowing, counts,
// latest comment) is computed per result row via joins and correlated
// subqueries, never one query per item. The viewer is always an explicit
// parameter; an empty viewer ID means anonymous.
package projection

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/dto"
)

// ScoreFunc computes the display-order weight of a feed item. The feed
// sorts each fetched page by this score while the pagination cursor
// still advances by creation time.
type ScoreFunc func(likeCount, commentCount int64, createdAt time.Time) float64

// DefaultScore boosts engagement and decays with age
func DefaultScore(likeCount, commentCount int64, createdAt time.Time) float64 {
	score := 1.0 + float64(likeCount)*0.5 + float64(commentCount)*0.8

	hoursSince := time.Since(createdAt).Hours()
	switch {
	case hoursSince < 1:
		score *= 1.5
	case hoursSince < 6:
		score *= 1.3
	case hoursSince < 24:
		score *= 1.1
	case hoursSince > 168:
		score *= 0.8
	}

	return score
}

// Service runs projection queries against the database
type Service struct {
	db    *gorm.DB
	score ScoreFunc
}

// New creates a projection service. A nil score falls back to DefaultScore.
func New(db *gorm.DB, score ScoreFunc) *Service {
	if score == nil {
		score = DefaultScore
	}
	return &Service{db: db, score: score}
}

// sortPageByScore reorders a kept feed page by descending score. Scores
// within epsilon of each other fall back to recency.
func (s *Service) sortPageByScore(items []dto.PostResponse) {
	type scored struct {
		item  dto.PostResponse
		score float64
	}
	ranked := make([]scored, len(items))
	for i, item := range items {
		ranked[i] = scored{item: item, score: s.score(item.LikeCount, item.CommentCount, item.CreatedAt)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if diff := ranked[i].score - ranked[j].score; diff > 0.1 || diff < -0.1 {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item.CreatedAt.After(ranked[j].item.CreatedAt)
	})
	for i := range ranked {
		items[i] = ranked[i].item
	}
}
