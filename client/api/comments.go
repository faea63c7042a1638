package api

import "github.com/quillhub/quillhub/client/transport"

// GetCommentReplies fetches one page of a comment's replies
func GetCommentReplies(commentID, cursor string, pageSize int) (*Page[Comment], error) {
	var page Page[Comment]
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   "/api/comments/" + commentID,
		Query:  pageQuery(cursor, pageSize),
		Result: &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateComment creates a top-level comment. Returns the comment plus
// the post's authoritative comment count.
func CreateComment(postID, content string, pictures []string) (*CommentMutation, error) {
	return createComment(map[string]interface{}{
		"postId":   postID,
		"content":  content,
		"pictures": pictures,
	})
}

// CreateReply replies to a comment. The server collapses a reply to a
// reply onto the top-level parent.
func CreateReply(postID, parentCommentID, replyAccountID, content string, pictures []string) (*CommentMutation, error) {
	return createComment(map[string]interface{}{
		"postId":          postID,
		"content":         content,
		"pictures":        pictures,
		"parentCommentId": parentCommentID,
		"replyAccountId":  replyAccountID,
	})
}

func createComment(body map[string]interface{}) (*CommentMutation, error) {
	var mutation CommentMutation
	err := transport.Do(transport.Request{
		Method: "POST",
		Path:   "/api/comments",
		Body:   body,
		Result: &mutation,
	})
	if err != nil {
		return nil, err
	}
	return &mutation, nil
}

// UpdateComment replaces a comment's content and picture set
func UpdateComment(id, content string, pictures []string) (*Comment, error) {
	var comment Comment
	err := transport.Do(transport.Request{
		Method: "PUT",
		Path:   "/api/comments/" + id,
		Body: map[string]interface{}{
			"content":  content,
			"pictures": pictures,
		},
		Result: &comment,
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment soft-deletes a comment, returning the updated counts
func DeleteComment(id string) (*CommentMutation, error) {
	var mutation CommentMutation
	err := transport.Do(transport.Request{
		Method: "DELETE",
		Path:   "/api/comments/" + id,
		Result: &mutation,
	})
	if err != nil {
		return nil, err
	}
	return &mutation, nil
}

// LikeComment likes a comment, returning the authoritative like count
func LikeComment(id string) (int64, error) {
	return likeMutation("POST", "/api/comments/"+id+"/like")
}

// CancelLikeComment removes a like from a comment
func CancelLikeComment(id string) (int64, error) {
	return likeMutation("DELETE", "/api/comments/"+id+"/cancel-like")
}
