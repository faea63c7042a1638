package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/auth"
	"github.com/quillhub/quillhub/internal/middleware"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/projection"
	"github.com/quillhub/quillhub/internal/storage"
)

// RemovalNotifier tells an account owner their removal is scheduled.
// Satisfied by email.Service; tests plug in a recorder.
type RemovalNotifier interface {
	SendRemovalNotice(to string, removeAt time.Time) error
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db         *gorm.DB
	auth       *auth.Service
	projection *projection.Service
	store      storage.ImageStore
	notifier   RemovalNotifier

	// Grace period between a self-removal request and the sweep
	// finalizing it. Logging in during the window cancels it.
	selfRemoveAfter time.Duration
}

// New creates a handlers instance. Image storage and the removal
// notifier are optional and wired with the setters below.
func New(db *gorm.DB, authService *auth.Service, proj *projection.Service) *Handlers {
	return &Handlers{
		db:              db,
		auth:            authService,
		projection:      proj,
		selfRemoveAfter: 30 * 24 * time.Hour,
	}
}

// SetImageStore sets the picture store used by the upload endpoints
func (h *Handlers) SetImageStore(store storage.ImageStore) {
	h.store = store
}

// SetRemovalNotifier sets the sender for self-removal notices
func (h *Handlers) SetRemovalNotifier(n RemovalNotifier) {
	h.notifier = n
}

// SetSelfRemoveAfter overrides the self-removal grace period
func (h *Handlers) SetSelfRemoveAfter(d time.Duration) {
	h.selfRemoveAfter = d
}

// RegisterRoutes wires every API route onto the router
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	requireAuth := middleware.RequireAuth(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)
	canWrite := middleware.RequireStatus(models.StatusActive)
	canRead := middleware.RequireStatus(models.StatusActive, models.StatusSuspended)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/confirm-register", h.ConfirmRegister)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh-token", h.RefreshToken)
		authGroup.POST("/logout", requireAuth, h.Logout)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/confirm-forgot-password", h.ConfirmForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}

	accounts := api.Group("/accounts")
	{
		accounts.GET("", optionalAuth, h.SearchAccounts)
		accounts.GET("/profile/me", requireAuth, canRead, h.GetMyProfile)
		accounts.GET("/profile/username/:username", optionalAuth, h.GetProfileByUsername)
		accounts.GET("/profile/:id", optionalAuth, h.GetProfileByID)
		accounts.PUT("/profile/me", requireAuth, canWrite, h.UpdateProfile)
		accounts.PUT("/profile/change-password", requireAuth, canWrite, h.ChangePassword)
		accounts.PUT("/profile/change-avatar", requireAuth, canWrite, h.ChangeAvatar)
		accounts.POST("/profile/self-remove", requireAuth, canRead, h.SelfRemove)
		accounts.POST("/:id/follow", requireAuth, canWrite, h.FollowAccount)
		accounts.DELETE("/:id/unfollow", requireAuth, canWrite, h.UnfollowAccount)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", optionalAuth, h.GetFeed)
		posts.GET("/me", requireAuth, canRead, h.GetMyPosts)
		posts.GET("/username/:username", optionalAuth, h.GetPostsByUsername)
		posts.GET("/link/:link", optionalAuth, h.GetPostByLink)
		posts.GET("/:id/comments", optionalAuth, h.GetPostComments)
		posts.POST("", requireAuth, canWrite, h.CreatePost)
		posts.PUT("/:id", requireAuth, canWrite, h.UpdatePost)
		posts.DELETE("/:id", requireAuth, canWrite, h.DeletePost)
		posts.POST("/:id/like", requireAuth, canWrite, h.LikePost)
		posts.DELETE("/:id/cancel-like", requireAuth, canWrite, h.CancelLikePost)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/:id", optionalAuth, h.GetCommentReplies)
		comments.POST("", requireAuth, canWrite, h.CreateComment)
		comments.PUT("/:id", requireAuth, canWrite, h.UpdateComment)
		comments.DELETE("/:id", requireAuth, canWrite, h.DeleteComment)
		comments.POST("/:id/like", requireAuth, canWrite, h.LikeComment)
		comments.DELETE("/:id/cancel-like", requireAuth, canWrite, h.CancelLikeComment)
	}

	api.POST("/upload", requireAuth, canWrite, h.UploadPictures)
	api.DELETE("/upload", requireAuth, canWrite, h.DeletePicture)
}
