package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/database"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))
	return db
}

func newAccount(t *testing.T, db *gorm.DB, username string) *models.Account {
	t.Helper()
	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		PasswordHash: "x",
		Status:       models.StatusActive,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func newPost(t *testing.T, db *gorm.DB, author *models.Account, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		AccountID: author.ID,
		Content:   content,
		Link:      content + "-" + author.Username,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestListPostsPagination(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	author := newAccount(t, db, "alice")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		newPost(t, db, author, string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
	}

	page, err := svc.ListPosts(PostQuery{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "e-alice", page.Items[0].Link)
	assert.Equal(t, "d-alice", page.Items[1].Link)

	cursor, err := pagination.Parse(page.NextCursor)
	require.NoError(t, err)

	page2, err := svc.ListPosts(PostQuery{PageSize: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "c-alice", page2.Items[0].Link)
	assert.Equal(t, "b-alice", page2.Items[1].Link)

	cursor2, err := pagination.Parse(page2.NextCursor)
	require.NoError(t, err)

	page3, err := svc.ListPosts(PostQuery{PageSize: 2, Cursor: cursor2})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
}

func TestListPostsExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	author := newAccount(t, db, "alice")

	now := time.Now().UTC()
	live := newPost(t, db, author, "live", now)
	gone := newPost(t, db, author, "gone", now.Add(time.Minute))
	require.NoError(t, db.Model(gone).Update("deleted_at", now).Error)

	page, err := svc.ListPosts(PostQuery{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, live.ID, page.Items[0].ID)

	_, err = svc.GetPostByLink(gone.Link, "")
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok)
	assert.Equal(t, apperr.MsgNoPost, appErr.Message)
}

func TestViewerRelativeFields(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	alice := newAccount(t, db, "alice")
	bob := newAccount(t, db, "bob")

	post := newPost(t, db, alice, "hello", time.Now().UTC())
	require.NoError(t, db.Create(&models.PostLike{PostID: post.ID, AccountID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{AccountID: bob.ID, FollowingID: alice.ID}).Error)

	// bob's view: liked, following the author, not owner
	got, err := svc.GetPostByID(post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLiked)
	assert.False(t, got.IsOwner)
	assert.True(t, got.Account.IsFollowing)
	assert.Equal(t, int64(1), got.LikeCount)

	// alice's view: owner, isFollowing short-circuits to false on own content
	got, err = svc.GetPostByID(post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOwner)
	assert.False(t, got.IsLiked)
	assert.False(t, got.Account.IsFollowing)

	// anonymous view
	got, err = svc.GetPostByID(post.ID, "")
	require.NoError(t, err)
	assert.False(t, got.IsOwner)
	assert.False(t, got.IsLiked)
	assert.False(t, got.Account.IsFollowing)
}

func TestOrphanSuppressedCommentCount(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	alice := newAccount(t, db, "alice")
	bob := newAccount(t, db, "bob")
	post := newPost(t, db, alice, "hello", time.Now().UTC())

	parent := &models.Comment{PostID: post.ID, AccountID: bob.ID, Content: "top"}
	require.NoError(t, db.Create(parent).Error)
	reply := &models.Comment{
		PostID: post.ID, AccountID: alice.ID, Content: "re",
		ParentCommentID: &parent.ID, ReplyAccountID: &bob.ID,
	}
	require.NoError(t, db.Create(reply).Error)

	count, err := svc.PostCommentCount(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// deleting the parent orphans the reply: neither counts anymore
	require.NoError(t, db.Model(parent).Update("deleted_at", time.Now().UTC()).Error)

	count, err = svc.PostCommentCount(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	got, err := svc.GetPostByID(post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CommentCount)
}

func TestDeletedCommentRedactedButAddressable(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	alice := newAccount(t, db, "alice")
	post := newPost(t, db, alice, "hello", time.Now().UTC())

	parent := &models.Comment{PostID: post.ID, AccountID: alice.ID, Content: "secret"}
	require.NoError(t, db.Create(parent).Error)
	reply := &models.Comment{
		PostID: post.ID, AccountID: alice.ID, Content: "still here",
		ParentCommentID: &parent.ID, ReplyAccountID: &alice.ID,
	}
	require.NoError(t, db.Create(reply).Error)

	require.NoError(t, db.Model(parent).Update("deleted_at", time.Now().UTC()).Error)

	// the deleted parent is still addressable, content redacted
	got, err := svc.GetCommentByID(parent.ID, "")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Empty(t, got.Content)

	// its replies remain independently listable
	page, err := svc.ListComments(CommentQuery{ParentID: parent.ID, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, reply.ID, page.Items[0].ID)

	// but it no longer appears in the post's top-level listing
	page, err = svc.ListComments(CommentQuery{PostID: post.ID, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestLatestCommentOnFeed(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	alice := newAccount(t, db, "alice")
	bob := newAccount(t, db, "bob")
	post := newPost(t, db, alice, "hello", time.Now().UTC().Add(-time.Hour))

	older := &models.Comment{PostID: post.ID, AccountID: bob.ID, Content: "first",
		CreatedAt: time.Now().UTC().Add(-30 * time.Minute)}
	require.NoError(t, db.Create(older).Error)
	newer := &models.Comment{PostID: post.ID, AccountID: bob.ID, Content: "second",
		CreatedAt: time.Now().UTC().Add(-10 * time.Minute)}
	require.NoError(t, db.Create(newer).Error)

	page, err := svc.ListPosts(PostQuery{PageSize: 10, Feed: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].LatestComment)
	assert.Equal(t, "second", page.Items[0].LatestComment.Content)
	assert.Equal(t, "bob", page.Items[0].LatestComment.Account.Username)
}

func TestPostPicturesOrdered(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	alice := newAccount(t, db, "alice")
	post := newPost(t, db, alice, "hello", time.Now().UTC())

	base := time.Now().UTC().Add(-time.Minute)
	for i, link := range []string{"https://cdn/one.jpg", "https://cdn/two.jpg"} {
		pic := &models.Picture{
			PublicID:   link,
			Link:       link,
			UploaderID: alice.ID,
			PostID:     &post.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(pic).Error)
	}

	got, err := svc.GetPostByID(post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/one.jpg", "https://cdn/two.jpg"}, got.Pictures)
}

func TestSearchAccounts(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)

	for _, username := range []string{"john", "joan", "mary"} {
		newAccount(t, db, username)
	}

	page, err := svc.SearchAccounts(SearchQuery{Name: "jo", PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.SearchAccounts(SearchQuery{Name: "jo", PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.True(t, page.HasMore)

	cursor, err := pagination.Parse(page.NextCursor)
	require.NoError(t, err)
	page2, err := svc.SearchAccounts(SearchQuery{Name: "jo", PageSize: 1, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.NotEqual(t, page.Items[0].ID, page2.Items[0].ID)
}

func TestProfileCounts(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil)
	alice := newAccount(t, db, "alice")
	bob := newAccount(t, db, "bob")

	newPost(t, db, alice, "one", time.Now().UTC())
	deleted := newPost(t, db, alice, "two", time.Now().UTC())
	require.NoError(t, db.Model(deleted).Update("deleted_at", time.Now().UTC()).Error)
	require.NoError(t, db.Create(&models.Follow{AccountID: bob.ID, FollowingID: alice.ID}).Error)

	profile, err := svc.GetProfileByUsername("ALICE", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.PostCount)
	assert.Equal(t, int64(1), profile.FollowerCount)
	assert.Equal(t, int64(0), profile.FollowingCount)
	assert.True(t, profile.IsFollowing)
	assert.False(t, profile.IsOwner)
}
