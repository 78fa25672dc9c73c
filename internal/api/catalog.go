package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/catalog"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/search"
)

func (r *Router) browseBooks(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		r.respondError(c, err)
		return
	}
	result, err := r.svc.Catalog.Browse(c.Request.Context(), catalog.Query{
		Search:   c.Query("search"),
		GenreID:  models.ID(c.Query("genreId")),
		AuthorID: models.ID(c.Query("authorId")),
		Page:     page,
	})
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) trendingBooks(c *gin.Context) {
	books, err := r.svc.Catalog.Trending(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (r *Router) getBook(c *gin.Context) {
	detail, err := r.svc.Catalog.Book(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (r *Router) search(c *gin.Context) {
	mode, err := search.ParseMode(c.Query("mode"))
	if err != nil {
		r.respondError(c, badRequest(err.Error()))
		return
	}
	result, err := r.svc.Search.Search(c.Request.Context(), search.Query{Mode: mode, Text: c.Query("q")})
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
