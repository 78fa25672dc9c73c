package apiclient

import (
	"context"
	"net/http"

	"github.com/bookverse/bookverse/internal/models"
)

// GetUser fetches a public profile by username
func (c *Client) GetUser(ctx context.Context, username string) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/users/"+escape(username), nil, nil, &out)
	return out, err
}

// Follow makes the current user follow username
func (c *Client) Follow(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodPost, "/users/"+escape(username)+"/follow", nil, nil, nil)
}

// Unfollow removes the follow relationship
func (c *Client) Unfollow(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+escape(username)+"/follow", nil, nil, nil)
}

// FollowCounts fetches the follower summary for username
func (c *Client) FollowCounts(ctx context.Context, username string) (models.FollowCounts, error) {
	var out models.FollowCounts
	err := c.do(ctx, http.MethodGet, "/users/"+escape(username)+"/follows", nil, nil, &out)
	return out, err
}

// ListNotifications fetches the current user's notifications
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	res, err := listOf[models.Notification](ctx, c, "/notifications", nil)
	return res.Items, err
}
