package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/bookverse/bookverse/internal/models"
)

type profileResponse struct {
	User   models.User         `json:"user"`
	Follow models.FollowCounts `json:"follow"`
}

func (r *Router) getProfile(c *gin.Context) {
	username := c.Param("username")
	var resp profileResponse

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		resp.User, err = r.svc.Users.GetUser(ctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Follow, err = r.svc.Users.FollowCounts(ctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) follow(c *gin.Context) {
	if err := r.svc.Users.Follow(c.Request.Context(), c.Param("username")); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) unfollow(c *gin.Context) {
	if err := r.svc.Users.Unfollow(c.Request.Context(), c.Param("username")); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
