package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/models"
)

type moveRequest struct {
	BookID models.ID `json:"bookId"`
	From   string    `json:"from"`
	To     string    `json:"to"`
}

type shelfBookRequest struct {
	BookID models.ID `json:"bookId"`
}

func (r *Router) listShelves(c *gin.Context) {
	list, err := r.svc.Shelves.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": list})
}

func (r *Router) moveBook(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookID.IsZero() || req.From == "" || req.To == "" {
		r.respondError(c, badRequest("bookId, from and to are required"))
		return
	}
	if err := r.svc.Shelves.Move(c.Request.Context(), req.BookID, req.From, req.To); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) addToShelf(c *gin.Context) {
	var req shelfBookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookID.IsZero() {
		r.respondError(c, badRequest("bookId is required"))
		return
	}
	if err := r.svc.Shelves.Add(c.Request.Context(), c.Param("shelf"), req.BookID); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) removeFromShelf(c *gin.Context) {
	if err := r.svc.Shelves.Remove(c.Request.Context(), c.Param("shelf"), models.ID(c.Param("bookId"))); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
