package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/models"
)

type postRequest struct {
	Type     models.PostType `json:"type"`
	Content  string          `json:"content"`
	BookID   models.ID       `json:"bookId"`
	ImageURL string          `json:"imageUrl"`
}

type editRequest struct {
	Content string `json:"content"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type shareRequest struct {
	BookID    models.ID `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	BookCover string    `json:"bookCover"`
	Rating    float64   `json:"rating"`
	Content   string    `json:"content"`
}

func (s shareRequest) book() models.Book {
	return models.Book{ID: s.BookID, Title: s.BookTitle, CoverImage: s.BookCover}
}

func (r *Router) getFeed(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"posts": r.svc.Feed.Posts()})
}

func (r *Router) refreshFeed(c *gin.Context) {
	posts, err := r.svc.Feed.Refresh(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (r *Router) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.respondError(c, badRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		r.respondError(c, badRequest("content is required"))
		return
	}
	switch req.Type {
	case "", models.PostTypeStatus, models.PostTypeGoal, models.PostTypePost:
	default:
		r.respondError(c, badRequest("reviews and quotes are shared through their own routes"))
		return
	}

	post, err := r.svc.Feed.CreatePost(c.Request.Context(), apiclient.NewPost{
		Type:     req.Type,
		Content:  req.Content,
		BookID:   req.BookID,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (r *Router) shareReview(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookID.IsZero() {
		r.respondError(c, badRequest("bookId is required"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		r.respondError(c, badRequest("rating must be between 1 and 5"))
		return
	}
	post, err := r.svc.Feed.ShareReview(c.Request.Context(), req.book(), req.Rating, req.Content)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (r *Router) shareQuote(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookID.IsZero() {
		r.respondError(c, badRequest("bookId is required"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		r.respondError(c, badRequest("content is required"))
		return
	}
	post, err := r.svc.Feed.ShareQuote(c.Request.Context(), req.book(), req.Content)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (r *Router) editPost(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.respondError(c, badRequest("invalid request body"))
		return
	}
	post, err := r.svc.Feed.EditPost(c.Request.Context(), models.ID(c.Param("id")), req.Content)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Router) deletePost(c *gin.Context) {
	if err := r.svc.Feed.DeletePost(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) toggleLike(c *gin.Context) {
	post, err := r.svc.Feed.ToggleLike(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Router) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		r.respondError(c, badRequest("text is required"))
		return
	}
	comment, err := r.svc.Feed.AddComment(c.Request.Context(), models.ID(c.Param("id")), req.Text)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (r *Router) deleteComment(c *gin.Context) {
	err := r.svc.Feed.DeleteComment(c.Request.Context(), models.ID(c.Param("id")), models.ID(c.Param("commentId")))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) reportPost(c *gin.Context) {
	if err := r.svc.Feed.Report(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) toggleSaved(c *gin.Context) {
	saved, err := r.svc.Feed.ToggleSaved(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}
