package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillhub/quillhub/internal/apperr"
	"github.com/quillhub/quillhub/internal/auth"
	"github.com/quillhub/quillhub/internal/database"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/projection"
	"github.com/quillhub/quillhub/internal/storage"
)

const testPassword = "password1234"

type recordingMailer struct {
	to      []string
	codes   []string
	purpose []models.VerificationType
}

func (m *recordingMailer) SendVerificationCode(to, code string, purpose models.VerificationType) error {
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	m.purpose = append(m.purpose, purpose)
	return nil
}

type recordingNotifier struct {
	notices []string
}

func (n *recordingNotifier) SendRemovalNotice(to string, removeAt time.Time) error {
	n.notices = append(n.notices, to)
	return nil
}

type fakeImageStore struct {
	uploads int
	deleted []string
}

func (f *fakeImageStore) UploadImage(ctx context.Context, data []byte, uploaderID, originalFilename string) (*storage.UploadResult, error) {
	f.uploads++
	key := fmt.Sprintf("images/%s/%d-%s", uploaderID, f.uploads, originalFilename)
	return &storage.UploadResult{
		Key:  key,
		URL:  "https://img.test/" + key,
		Size: int64(len(data)),
	}, nil
}

func (f *fakeImageStore) DeleteImage(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// HandlerTestSuite runs every route against an in-memory database with
// the real middleware chain.
type HandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	auth     *auth.Service
	mailer   *recordingMailer
	notifier *recordingNotifier
	store    *fakeImageStore
}

func (s *HandlerTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.MigrateDB(db))

	s.db = db
	s.mailer = &recordingMailer{}
	s.notifier = &recordingNotifier{}
	s.store = &fakeImageStore{}
	s.auth = auth.NewService(db, []byte("test-secret"), s.mailer)

	s.handlers = New(db, s.auth, projection.New(db, nil))
	s.handlers.SetImageStore(s.store)
	s.handlers.SetRemovalNotifier(s.notifier)

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.handlers.RegisterRoutes(s.router)
}

// createAccount inserts an active account and signs it in, returning the
// model and a bearer token.
func (s *HandlerTestSuite) createAccount(username string) (*models.Account, string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(s.T(), err)

	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		Name:         "Test " + username,
		PasswordHash: string(hash),
		Status:       models.StatusActive,
	}
	require.NoError(s.T(), s.db.Create(account).Error)

	_, tokens, err := s.auth.Login(username, testPassword)
	require.NoError(s.T(), err)
	return account, tokens.AccessToken
}

func (s *HandlerTestSuite) request(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *HandlerTestSuite) createPost(token, content string) map[string]interface{} {
	w, env := s.request(http.MethodPost, "/api/posts", token, gin.H{"content": content})
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var post map[string]interface{}
	require.NoError(s.T(), json.Unmarshal(env.Data, &post))
	return post
}

func (s *HandlerTestSuite) TestRegisterConfirmLogin() {
	w, _ := s.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "walt",
		"email":    "walt@example.com",
		"password": testPassword,
		"name":     "Walt",
	})
	s.Equal(http.StatusCreated, w.Code)
	s.Require().Len(s.mailer.codes, 1)

	// Login is rejected until the address is confirmed
	w, env := s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "walt", "password": testPassword,
	})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apperr.MsgForbidden, env.Message)

	w, env = s.request(http.MethodPost, "/api/auth/confirm-register", "", gin.H{
		"email": "walt@example.com", "code": s.mailer.codes[0],
	})
	s.Equal(http.StatusOK, w.Code)

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.NotEmpty(payload.AccessToken)
	s.NotEmpty(payload.RefreshToken)

	// Access token also arrives as an HTTP-only cookie
	cookies := w.Result().Cookies()
	s.Require().NotEmpty(cookies)
	s.Equal("accessToken", cookies[0].Name)
	s.Equal(payload.AccessToken, cookies[0].Value)

	w, _ = s.request(http.MethodGet, "/api/accounts/profile/me", payload.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestLoginWrongPassword() {
	s.createAccount("alice")

	w, env := s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "not-the-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apperr.MsgNoAccount, env.Message)
}

func (s *HandlerTestSuite) TestCreatePostAttachesPictures() {
	account, token := s.createAccount("alice")

	picture := models.Picture{
		PublicID:   "images/k1",
		Link:       "https://img.test/images/k1.png",
		UploaderID: account.ID,
	}
	s.Require().NoError(s.db.Create(&picture).Error)

	w, env := s.request(http.MethodPost, "/api/posts", token, gin.H{
		"content":  "hello world",
		"pictures": []string{picture.Link},
	})
	s.Equal(http.StatusCreated, w.Code)

	var post struct {
		ID       string   `json:"id"`
		Link     string   `json:"link"`
		Pictures []string `json:"pictures"`
		IsOwner  bool     `json:"isOwner"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &post))
	s.NotEmpty(post.Link)
	s.True(post.IsOwner)
	s.Equal([]string{picture.Link}, post.Pictures)

	var attached models.Picture
	s.Require().NoError(s.db.First(&attached, "id = ?", picture.ID).Error)
	s.Require().NotNil(attached.PostID)
	s.Equal(post.ID, *attached.PostID)
}

func (s *HandlerTestSuite) TestCreatePostRejectsEmpty() {
	_, token := s.createAccount("alice")

	w, env := s.request(http.MethodPost, "/api/posts", token, gin.H{"content": "   "})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperr.MsgPostAndPictureEmpty, env.Message)
}

func (s *HandlerTestSuite) TestFeedVisibleToAnonymous() {
	_, token := s.createAccount("alice")
	s.createPost(token, "first post")

	w, env := s.request(http.MethodGet, "/api/posts", "", nil)
	s.Equal(http.StatusOK, w.Code)

	var page struct {
		Items []struct {
			IsOwner bool `json:"isOwner"`
			IsLiked bool `json:"isLiked"`
		} `json:"items"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page.Items, 1)
	s.False(page.Items[0].IsOwner)
	s.False(page.Items[0].IsLiked)
}

func (s *HandlerTestSuite) TestUpdatePostOwnerOnly() {
	_, aliceToken := s.createAccount("alice")
	_, bobToken := s.createAccount("bob")

	post := s.createPost(aliceToken, "original")
	postID := post["id"].(string)

	w, env := s.request(http.MethodPut, "/api/posts/"+postID, bobToken, gin.H{"content": "hijacked"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apperr.MsgForbidden, env.Message)

	w, env = s.request(http.MethodPut, "/api/posts/"+postID, aliceToken, gin.H{"content": "edited"})
	s.Equal(http.StatusOK, w.Code)

	var updated struct {
		Content string `json:"content"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Equal("edited", updated.Content)
}

func (s *HandlerTestSuite) TestDeletePostHidesFromLookup() {
	_, token := s.createAccount("alice")
	post := s.createPost(token, "short lived")

	w, _ := s.request(http.MethodDelete, "/api/posts/"+post["id"].(string), token, nil)
	s.Equal(http.StatusOK, w.Code)

	w, env := s.request(http.MethodGet, "/api/posts/link/"+post["link"].(string), token, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apperr.MsgNoPost, env.Message)
}

func (s *HandlerTestSuite) TestLikePostIdempotent() {
	_, aliceToken := s.createAccount("alice")
	_, bobToken := s.createAccount("bob")
	post := s.createPost(aliceToken, "like me")
	postID := post["id"].(string)

	likeCount := func(env envelope) float64 {
		var data map[string]float64
		s.Require().NoError(json.Unmarshal(env.Data, &data))
		return data["likeCount"]
	}

	w, env := s.request(http.MethodPost, "/api/posts/"+postID+"/like", bobToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), likeCount(env))

	// A repeated like changes nothing
	_, env = s.request(http.MethodPost, "/api/posts/"+postID+"/like", bobToken, nil)
	s.Equal(float64(1), likeCount(env))

	_, env = s.request(http.MethodDelete, "/api/posts/"+postID+"/cancel-like", bobToken, nil)
	s.Equal(float64(0), likeCount(env))

	_, env = s.request(http.MethodDelete, "/api/posts/"+postID+"/cancel-like", bobToken, nil)
	s.Equal(float64(0), likeCount(env))
}

func (s *HandlerTestSuite) TestCreateCommentValidation() {
	_, token := s.createAccount("alice")
	post := s.createPost(token, "discuss")
	postID := post["id"].(string)

	parentID := "some-parent"
	w, env := s.request(http.MethodPost, "/api/comments", token, gin.H{
		"postId": postID, "content": "hi", "parentCommentId": parentID,
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperr.MsgReplyAccountRequired, env.Message)

	w, env = s.request(http.MethodPost, "/api/comments", token, gin.H{
		"postId": postID, "content": "hi", "replyAccountId": "someone",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperr.MsgParentCommentRequired, env.Message)

	w, env = s.request(http.MethodPost, "/api/comments", token, gin.H{
		"postId": postID, "content": "  ",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperr.MsgCommentAndPictureEmpty, env.Message)
}

type commentMutation struct {
	Comment struct {
		ID              string  `json:"id"`
		ParentCommentID *string `json:"parentCommentId"`
	} `json:"comment"`
	PostCommentCount int64  `json:"postCommentCount"`
	ParentReplyCount *int64 `json:"parentReplyCount"`
}

func (s *HandlerTestSuite) postComment(token string, body gin.H) commentMutation {
	w, env := s.request(http.MethodPost, "/api/comments", token, body)
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var m commentMutation
	require.NoError(s.T(), json.Unmarshal(env.Data, &m))
	return m
}

func (s *HandlerTestSuite) TestReplyToReplyCollapses() {
	alice, aliceToken := s.createAccount("alice")
	bob, bobToken := s.createAccount("bob")
	post := s.createPost(aliceToken, "threads")
	postID := post["id"].(string)

	top := s.postComment(aliceToken, gin.H{"postId": postID, "content": "top"})
	s.Nil(top.Comment.ParentCommentID)
	s.Equal(int64(1), top.PostCommentCount)

	reply := s.postComment(bobToken, gin.H{
		"postId": postID, "content": "reply",
		"parentCommentId": top.Comment.ID, "replyAccountId": alice.ID,
	})
	s.Require().NotNil(reply.Comment.ParentCommentID)
	s.Equal(top.Comment.ID, *reply.Comment.ParentCommentID)
	s.Equal(int64(2), reply.PostCommentCount)
	s.Require().NotNil(reply.ParentReplyCount)
	s.Equal(int64(1), *reply.ParentReplyCount)

	// Replying to the reply lands on the top-level parent
	deep := s.postComment(aliceToken, gin.H{
		"postId": postID, "content": "deeper",
		"parentCommentId": reply.Comment.ID, "replyAccountId": bob.ID,
	})
	s.Require().NotNil(deep.Comment.ParentCommentID)
	s.Equal(top.Comment.ID, *deep.Comment.ParentCommentID)
	s.Require().NotNil(deep.ParentReplyCount)
	s.Equal(int64(2), *deep.ParentReplyCount)
}

func (s *HandlerTestSuite) TestDeleteCommentReturnsCounts() {
	alice, aliceToken := s.createAccount("alice")
	post := s.createPost(aliceToken, "counts")
	postID := post["id"].(string)

	top := s.postComment(aliceToken, gin.H{"postId": postID, "content": "top"})
	reply := s.postComment(aliceToken, gin.H{
		"postId": postID, "content": "reply",
		"parentCommentId": top.Comment.ID, "replyAccountId": alice.ID,
	})

	w, env := s.request(http.MethodDelete, "/api/comments/"+reply.Comment.ID, aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(apperr.MsgCommentDeleted, env.Message)

	var m commentMutation
	s.Require().NoError(json.Unmarshal(env.Data, &m))
	s.Equal(int64(1), m.PostCommentCount)
	s.Require().NotNil(m.ParentReplyCount)
	s.Equal(int64(0), *m.ParentReplyCount)

	// Deleting again is rejected
	w, env = s.request(http.MethodDelete, "/api/comments/"+reply.Comment.ID, aliceToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperr.MsgCommentDeleted, env.Message)
}

func (s *HandlerTestSuite) TestDeletedTopLevelRepliesStillListed() {
	alice, aliceToken := s.createAccount("alice")
	post := s.createPost(aliceToken, "orphans")
	postID := post["id"].(string)

	top := s.postComment(aliceToken, gin.H{"postId": postID, "content": "top"})
	s.postComment(aliceToken, gin.H{
		"postId": postID, "content": "reply",
		"parentCommentId": top.Comment.ID, "replyAccountId": alice.ID,
	})

	w, _ := s.request(http.MethodDelete, "/api/comments/"+top.Comment.ID, aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)

	// The deleted parent's thread stays readable
	w, env := s.request(http.MethodGet, "/api/comments/"+top.Comment.ID, "", nil)
	s.Equal(http.StatusOK, w.Code)

	var page struct {
		Items []struct {
			Content string `json:"content"`
		} `json:"items"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Len(page.Items, 1)
}

func (s *HandlerTestSuite) TestSuspendedAccountIsReadOnly() {
	account, token := s.createAccount("alice")
	s.Require().NoError(s.db.Model(account).Update("status", models.StatusSuspended).Error)

	w, _ := s.request(http.MethodGet, "/api/posts/me", token, nil)
	s.Equal(http.StatusOK, w.Code)

	w, env := s.request(http.MethodPost, "/api/posts", token, gin.H{"content": "nope"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apperr.MsgForbidden, env.Message)
}

func (s *HandlerTestSuite) TestFollowUnfollow() {
	alice, aliceToken := s.createAccount("alice")
	bob, _ := s.createAccount("bob")

	followerCount := func(env envelope) float64 {
		var data map[string]float64
		s.Require().NoError(json.Unmarshal(env.Data, &data))
		return data["followerCount"]
	}

	w, env := s.request(http.MethodPost, "/api/accounts/"+bob.ID+"/follow", aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), followerCount(env))

	_, env = s.request(http.MethodPost, "/api/accounts/"+bob.ID+"/follow", aliceToken, nil)
	s.Equal(float64(1), followerCount(env))

	w, _ = s.request(http.MethodPost, "/api/accounts/"+alice.ID+"/follow", aliceToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	_, env = s.request(http.MethodDelete, "/api/accounts/"+bob.ID+"/unfollow", aliceToken, nil)
	s.Equal(float64(0), followerCount(env))
}

func (s *HandlerTestSuite) TestUpdateProfileUsernameTaken() {
	s.createAccount("bob")
	_, token := s.createAccount("alice")

	w, env := s.request(http.MethodPut, "/api/accounts/profile/me", token, gin.H{"username": "BOB"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperr.MsgUsernameExists, env.Message)

	w, env = s.request(http.MethodPut, "/api/accounts/profile/me", token, gin.H{
		"username": "alice2", "bio": "writer",
	})
	s.Equal(http.StatusOK, w.Code)

	var profile struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal("alice2", profile.Username)
	s.Equal("writer", profile.Bio)
}

func (s *HandlerTestSuite) TestUploadAndChangeAvatar() {
	_, token := s.createAccount("alice")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", "avatar.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("not really a png"))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusCreated, w.Code)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	var uploaded struct {
		Links []string `json:"links"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &uploaded))
	s.Require().Len(uploaded.Links, 1)

	w2, env2 := s.request(http.MethodPut, "/api/accounts/profile/change-avatar", token, gin.H{
		"link": uploaded.Links[0],
	})
	s.Equal(http.StatusOK, w2.Code)

	var profile struct {
		AvatarLink string `json:"avatarLink"`
	}
	s.Require().NoError(json.Unmarshal(env2.Data, &profile))
	s.Equal(uploaded.Links[0], profile.AvatarLink)
}

func (s *HandlerTestSuite) TestUploadRejectsWrongType() {
	_, token := s.createAccount("alice")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", "malware.exe")
	s.Require().NoError(err)
	_, err = part.Write([]byte("nope"))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestSelfRemoveSchedulesAndNotifies() {
	account, token := s.createAccount("alice")

	w, _ := s.request(http.MethodPost, "/api/accounts/profile/self-remove", token, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{account.Email}, s.notifier.notices)

	var stored models.Account
	s.Require().NoError(s.db.First(&stored, "id = ?", account.ID).Error)
	s.Require().NotNil(stored.SelfRemoveTime)
	s.True(stored.SelfRemoveTime.After(time.Now()))

	// Logging back in cancels the scheduled removal
	_, _, err := s.auth.Login("alice", testPassword)
	s.Require().NoError(err)
	var afterLogin models.Account
	s.Require().NoError(s.db.First(&afterLogin, "id = ?", account.ID).Error)
	s.Nil(afterLogin.SelfRemoveTime)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
