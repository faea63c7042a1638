package cache

import "github.com/quillhub/quillhub/client/api"

// View keys. Post views share one store so a mutation patches the feed,
// the profile listing, and the detail view in one pass.
const (
	FeedView    = "feed"
	MyPostsView = "posts:me"
)

// AuthorView is the view key for one account's post listing
func AuthorView(username string) string {
	return "posts:author:" + username
}

// CommentsView is the view key for a post's top-level comments
func CommentsView(postID string) string {
	return "comments:" + postID
}

// RepliesView is the view key for a comment's reply thread
func RepliesView(commentID string) string {
	return "replies:" + commentID
}

// State bundles the post and comment stores and applies server mutation
// responses to every affected view. Counter fields always come from the
// response payload, never from local arithmetic.
type State struct {
	Posts    *Store[api.Post]
	Comments *Store[api.Comment]
}

// NewState creates an empty client cache
func NewState() *State {
	return &State{
		Posts:    NewStore(func(p api.Post) string { return p.ID }),
		Comments: NewStore(func(c api.Comment) string { return c.ID }),
	}
}

// ApplyPostLike writes the server's like count and the viewer's like
// state into every view holding the post
func (s *State) ApplyPostLike(postID string, likeCount int64, liked bool) {
	s.Posts.UpdateItem(postID, func(p api.Post) api.Post {
		p.LikeCount = likeCount
		p.IsLiked = liked
		return p
	})
}

// ApplyPostCreated front-inserts the created post into the feed and the
// owner's listings
func (s *State) ApplyPostCreated(post api.Post) {
	s.Posts.AddItemFront(FeedView, post)
	s.Posts.AddItemFront(MyPostsView, post)
	if post.Account != nil {
		s.Posts.AddItemFront(AuthorView(post.Account.Username), post)
	}
}

// ApplyPostUpdated replaces the post wherever it appears
func (s *State) ApplyPostUpdated(post api.Post) {
	s.Posts.UpdateItem(post.ID, func(api.Post) api.Post { return post })
}

// ApplyPostDeleted removes the post from every view
func (s *State) ApplyPostDeleted(postID string) {
	s.Posts.RemoveItem(postID)
}

// ApplyCommentAdded handles a created top-level comment: it lands at
// the head of the post's comment view and the post's comment count is
// overwritten with the server's.
func (s *State) ApplyCommentAdded(m *api.CommentMutation) {
	if m.Comment != nil {
		s.Comments.AddItemFront(CommentsView(m.Comment.PostID), *m.Comment)
		s.setPostCommentCount(m.Comment.PostID, m.PostCommentCount)
	}
}

// ApplyReplyAdded handles a created reply: it lands at the tail of the
// parent's thread, and both the parent's reply count and the post's
// comment count are overwritten with the server's.
func (s *State) ApplyReplyAdded(m *api.CommentMutation) {
	if m.Comment == nil || m.Comment.ParentCommentID == nil {
		return
	}

	s.Comments.AddItemBack(RepliesView(*m.Comment.ParentCommentID), *m.Comment)
	if m.ParentReplyCount != nil {
		s.setReplyCount(*m.Comment.ParentCommentID, *m.ParentReplyCount)
	}
	s.setPostCommentCount(m.Comment.PostID, m.PostCommentCount)
}

// ApplyCommentDeleted removes the comment and writes the server's
// post-level and parent-level counts
func (s *State) ApplyCommentDeleted(commentID, postID string, parentCommentID *string, m *api.CommentMutation) {
	s.Comments.RemoveItem(commentID)
	s.setPostCommentCount(postID, m.PostCommentCount)
	if parentCommentID != nil && m.ParentReplyCount != nil {
		s.setReplyCount(*parentCommentID, *m.ParentReplyCount)
	}
}

// ApplyCommentUpdated replaces the comment wherever it appears
func (s *State) ApplyCommentUpdated(comment api.Comment) {
	s.Comments.UpdateItem(comment.ID, func(api.Comment) api.Comment { return comment })
}

// ApplyCommentLike writes the server's like count and the viewer's like
// state into every view holding the comment
func (s *State) ApplyCommentLike(commentID string, likeCount int64, liked bool) {
	s.Comments.UpdateItem(commentID, func(c api.Comment) api.Comment {
		c.LikeCount = likeCount
		c.IsLiked = liked
		return c
	})
}

func (s *State) setPostCommentCount(postID string, count int64) {
	s.Posts.UpdateItem(postID, func(p api.Post) api.Post {
		p.CommentCount = count
		return p
	})
}

func (s *State) setReplyCount(commentID string, count int64) {
	s.Comments.UpdateItem(commentID, func(c api.Comment) api.Comment {
		c.ReplyCount = count
		return c
	})
}
