package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/logger"
	"github.com/quillhub/quillhub/internal/metrics"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/storage"
)

// Service periodically finalizes accounts whose self-removal grace
// period has run out.
type Service struct {
	db       *gorm.DB
	store    storage.ImageStore
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
}

// New creates a cleanup service. The image store may be nil; uploaded
// pictures are then only removed from the database.
func New(db *gorm.DB, store storage.ImageStore, interval time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		db:       db,
		store:    store,
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// Start begins the periodic sweep
func (s *Service) Start() {
	logger.Log.Info("starting account removal sweep", zap.Duration("interval", s.interval))
	go s.run()
}

// Stop halts the sweep
func (s *Service) Stop() {
	s.cancel()
}

func (s *Service) run() {
	// Sweep once on startup, then on the interval
	s.SweepOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce()
		case <-s.ctx.Done():
			return
		}
	}
}

// SweepOnce finalizes every account whose removal is due: the account
// and its posts and comments are soft-deleted, sessions are cleared,
// and its uploads are purged from storage. Returns the number of
// accounts finalized.
func (s *Service) SweepOnce() int {
	var due []models.Account
	err := s.db.Where("self_remove_time IS NOT NULL AND self_remove_time < ? AND deleted_at IS NULL",
		time.Now().UTC()).Find(&due).Error
	if err != nil {
		logger.Log.Error("removal sweep query failed", zap.Error(err))
		return 0
	}

	removed := 0
	for _, account := range due {
		if err := s.removeAccount(&account); err != nil {
			logger.Log.Error("failed to finalize account removal",
				zap.String("account_id", account.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.Get().AccountsRemovedTotal.Inc()
		removed++
	}

	if removed > 0 {
		logger.Log.Info("removal sweep finished", zap.Int("removed", removed))
	}
	return removed
}

func (s *Service) removeAccount(account *models.Account) error {
	var pictures []models.Picture
	if err := s.db.Where("uploader_id = ?", account.ID).Find(&pictures).Error; err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.Post{}).
			Where("account_id = ? AND deleted_at IS NULL", account.ID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).
			Where("account_id = ? AND deleted_at IS NULL", account.ID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ? OR following_id = ?", account.ID, account.ID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("uploader_id = ?", account.ID).
			Delete(&models.Picture{}).Error; err != nil {
			return err
		}
		return tx.Model(account).Updates(map[string]interface{}{
			"deleted_at":       now,
			"access_token":     "",
			"refresh_token":    "",
			"self_remove_time": nil,
		}).Error
	})
	if err != nil {
		return err
	}

	// Storage deletes happen after the commit; a failed delete leaves
	// an orphaned object, not a dangling row.
	if s.store != nil {
		for _, picture := range pictures {
			if err := s.store.DeleteImage(s.ctx, picture.PublicID); err != nil {
				logger.Log.Warn("failed to delete picture from storage",
					zap.String("key", picture.PublicID),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}
