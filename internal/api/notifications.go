package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookverse/bookverse/internal/models"
)

func (r *Router) listNotifications(c *gin.Context) {
	list, err := r.svc.Notifications.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (r *Router) dismissNotification(c *gin.Context) {
	if err := r.svc.Notifications.Dismiss(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) dismissAllNotifications(c *gin.Context) {
	n, err := r.svc.Notifications.DismissAll(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": n})
}
