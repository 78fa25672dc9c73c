package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/bookverse/bookverse/internal/models"
)

// GetFeed fetches one page of the social feed
func (c *Client) GetFeed(ctx context.Context, page, pageSize int) ([]models.Post, error) {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	res, err := listOf[models.Post](ctx, c, "/feed", pageQuery(page, pageSize))
	return res.Items, err
}

// NewPost is the payload for CreatePost
type NewPost struct {
	Type     models.PostType `json:"type"`
	Content  string          `json:"content"`
	BookID   models.ID       `json:"bookId,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// CreatePost publishes a status or goal post
func (c *Client) CreatePost(ctx context.Context, p NewPost) (models.Post, error) {
	var out models.Post
	err := c.do(ctx, http.MethodPost, "/posts", nil, p, &out)
	return out, err
}

// UpdatePost replaces a post's text
func (c *Client) UpdatePost(ctx context.Context, postID models.ID, content string) error {
	body := map[string]string{"content": content}
	return c.do(ctx, http.MethodPut, "/posts/"+escape(postID.String()), nil, body, nil)
}

// DeletePost removes a post
func (c *Client) DeletePost(ctx context.Context, postID models.ID) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+escape(postID.String()), nil, nil, nil)
}

// CreateComment adds a comment to the entity behind a post. The comments
// endpoint is optional; a 404 means comments are server-disabled.
func (c *Client) CreateComment(ctx context.Context, postID models.ID, text string) (models.Comment, error) {
	var out models.Comment
	body := map[string]string{"text": text}
	err := c.do(ctx, http.MethodPost, "/posts/"+escape(postID.String())+"/comments", nil, body, &out)
	return out, err
}

// DeleteComment removes a comment
func (c *Client) DeleteComment(ctx context.Context, postID, commentID models.ID) error {
	path := "/posts/" + escape(postID.String()) + "/comments/" + escape(commentID.String())
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// LikeState is the server's view of a like toggle
type LikeState struct {
	IsLiked bool `json:"isLiked"`
	Likes   *int `json:"likes,omitempty"`
}

// UnmarshalJSON accepts a bare boolean, the {isLiked, likes} object, or
// that object under a data key.
func (s *LikeState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var liked bool
	if err := json.Unmarshal(data, &liked); err == nil {
		*s = LikeState{IsLiked: liked}
		return nil
	}

	type plain LikeState
	var aux struct {
		plain
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if inner := bytes.TrimSpace(aux.Data); len(inner) > 0 && !bytes.Equal(inner, []byte("null")) {
		return s.UnmarshalJSON(inner)
	}
	*s = LikeState(aux.plain)
	return nil
}

// ToggleQuoteLike flips the current user's like on a quote
func (c *Client) ToggleQuoteLike(ctx context.Context, quoteID models.ID) (LikeState, error) {
	var out LikeState
	err := c.do(ctx, http.MethodPost, "/quotes/"+escape(quoteID.String())+"/like", nil, nil, &out)
	return out, err
}

// UpdateQuote replaces a quote's text. Optional endpoint: 404 when the
// server does not support quote edits.
func (c *Client) UpdateQuote(ctx context.Context, quoteID models.ID, text string) error {
	body := map[string]string{"text": text}
	return c.do(ctx, http.MethodPut, "/quotes/"+escape(quoteID.String()), nil, body, nil)
}
