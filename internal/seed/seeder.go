package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/logger"
	"github.com/quillhub/quillhub/internal/models"
)

// Seeder fills a development database with realistic data
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds accounts, posts, comments, likes, and follows. Every
// seeded account logs in with the password "password1234".
func (s *Seeder) SeedDev() error {
	logger.Log.Info("seeding accounts")
	accounts, err := s.seedAccounts(50)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	logger.Log.Info("seeding posts")
	posts, err := s.seedPosts(accounts, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("seeding comments")
	if err := s.seedComments(accounts, posts, 900); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("seeding likes")
	if err := s.seedLikes(accounts, posts); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	logger.Log.Info("seeding follows")
	if err := s.seedFollows(accounts); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("seeding complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

func (s *Seeder) seedAccounts(count int) ([]models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1234"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		dob := gofakeit.DateRange(
			time.Now().AddDate(-50, 0, 0),
			time.Now().AddDate(-18, 0, 0),
		)

		account := models.Account{
			Username:     username,
			Email:        fmt.Sprintf("%s@example.com", username),
			Name:         gofakeit.Name(),
			PasswordHash: string(hash),
			Bio:          gofakeit.HipsterSentence(),
			DateOfBirth:  &dob,
			Language:     "en",
			Status:       models.StatusActive,
			CreatedAt:    gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now().AddDate(0, 0, -30)),
		}
		if err := s.db.Create(&account).Error; err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *Seeder) seedPosts(accounts []models.Account, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := accounts[rand.Intn(len(accounts))]

		paragraphs := 1 + rand.Intn(3)
		content := gofakeit.Paragraph(paragraphs, 3, 12, "\n\n")
		slugWord := strings.ToLower(gofakeit.Word())

		post := models.Post{
			AccountID: author.ID,
			Content:   content,
			Link:      fmt.Sprintf("%s-%s-%d", slugWord, strings.ToLower(gofakeit.Word()), i),
			CreatedAt: gofakeit.DateRange(author.CreatedAt, time.Now()),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(accounts []models.Account, posts []models.Post, count int) error {
	var topLevel []models.Comment

	for i := 0; i < count; i++ {
		author := accounts[rand.Intn(len(accounts))]
		post := posts[rand.Intn(len(posts))]

		comment := models.Comment{
			PostID:    post.ID,
			AccountID: author.ID,
			Content:   gofakeit.HipsterSentence(),
			CreatedAt: gofakeit.DateRange(post.CreatedAt, time.Now()),
		}

		// Roughly a third of comments are replies
		if len(topLevel) > 0 && rand.Intn(3) == 0 {
			parent := topLevel[rand.Intn(len(topLevel))]
			comment.PostID = parent.PostID
			comment.ParentCommentID = &parent.ID
			comment.ReplyAccountID = &parent.AccountID
			comment.CreatedAt = gofakeit.DateRange(parent.CreatedAt, time.Now())
		}

		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
		if comment.ParentCommentID == nil {
			topLevel = append(topLevel, comment)
		}
	}
	return nil
}

func (s *Seeder) seedLikes(accounts []models.Account, posts []models.Post) error {
	for _, post := range posts {
		likers := rand.Intn(len(accounts) / 2)
		perm := rand.Perm(len(accounts))
		for i := 0; i < likers; i++ {
			like := models.PostLike{
				PostID:    post.ID,
				AccountID: accounts[perm[i]].ID,
				CreatedAt: gofakeit.DateRange(post.CreatedAt, time.Now()),
			}
			if err := s.db.Create(&like).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedFollows(accounts []models.Account) error {
	for _, follower := range accounts {
		count := rand.Intn(10)
		perm := rand.Perm(len(accounts))
		created := 0
		for _, idx := range perm {
			if created >= count {
				break
			}
			target := accounts[idx]
			if target.ID == follower.ID {
				continue
			}
			follow := models.Follow{
				AccountID:   follower.ID,
				FollowingID: target.ID,
				CreatedAt:   gofakeit.DateRange(follower.CreatedAt, time.Now()),
			}
			if err := s.db.Create(&follow).Error; err != nil {
				return err
			}
			created++
		}
	}
	return nil
}
