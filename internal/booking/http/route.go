package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/bookings")
	{
		group.GET("", h.List)
		group.GET("/filter", h.Filter)
		group.GET("/today", h.Today)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
		group.POST("/:id/status", h.Mark)
		group.DELETE("/retired", h.ClearRetired)
		group.DELETE("/:id", h.Delete)
	}
}
