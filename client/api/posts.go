package api

import (
	"strconv"

	"github.com/quillhub/quillhub/client/transport"
)

func pageQuery(cursor string, pageSize int) map[string]string {
	return map[string]string{
		"cursor":   cursor,
		"pageSize": strconv.Itoa(pageSize),
	}
}

// GetFeed fetches one page of the global feed
func GetFeed(cursor string, pageSize int) (*Page[Post], error) {
	return postPage("/api/posts", cursor, pageSize)
}

// GetMyPosts fetches one page of the signed-in account's posts
func GetMyPosts(cursor string, pageSize int) (*Page[Post], error) {
	return postPage("/api/posts/me", cursor, pageSize)
}

// GetPostsByUsername fetches one page of an account's posts
func GetPostsByUsername(username, cursor string, pageSize int) (*Page[Post], error) {
	return postPage("/api/posts/username/"+username, cursor, pageSize)
}

func postPage(path, cursor string, pageSize int) (*Page[Post], error) {
	var page Page[Post]
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   path,
		Query:  pageQuery(cursor, pageSize),
		Result: &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPostByLink fetches one post by its URL slug
func GetPostByLink(link string) (*Post, error) {
	var post Post
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   "/api/posts/link/" + link,
		Result: &post,
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a post with optional pre-uploaded picture links
func CreatePost(content string, pictures []string) (*Post, error) {
	var post Post
	err := transport.Do(transport.Request{
		Method: "POST",
		Path:   "/api/posts",
		Body: map[string]interface{}{
			"content":  content,
			"pictures": pictures,
		},
		Result: &post,
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces a post's content and picture set
func UpdatePost(id, content string, pictures []string) (*Post, error) {
	var post Post
	err := transport.Do(transport.Request{
		Method: "PUT",
		Path:   "/api/posts/" + id,
		Body: map[string]interface{}{
			"content":  content,
			"pictures": pictures,
		},
		Result: &post,
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost soft-deletes a post
func DeletePost(id string) error {
	return transport.Do(transport.Request{
		Method: "DELETE",
		Path:   "/api/posts/" + id,
	})
}

// LikePost likes a post, returning the authoritative like count
func LikePost(id string) (int64, error) {
	return likeMutation("POST", "/api/posts/"+id+"/like")
}

// CancelLikePost removes a like, returning the authoritative like count
func CancelLikePost(id string) (int64, error) {
	return likeMutation("DELETE", "/api/posts/"+id+"/cancel-like")
}

// GetPostComments fetches one page of a post's top-level comments
func GetPostComments(postID, cursor string, pageSize int) (*Page[Comment], error) {
	var page Page[Comment]
	err := transport.Do(transport.Request{
		Method: "GET",
		Path:   "/api/posts/" + postID + "/comments",
		Query:  pageQuery(cursor, pageSize),
		Result: &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func likeMutation(method, path string) (int64, error) {
	var data struct {
		LikeCount int64 `json:"likeCount"`
	}
	err := transport.Do(transport.Request{
		Method: method,
		Path:   path,
		Result: &data,
	})
	return data.LikeCount, err
}
