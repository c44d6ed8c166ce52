package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/persons")
	{
		group.GET("", h.List)
		group.GET("/:phone", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:phone/membership", h.SetMembership)
		group.DELETE("/:phone", h.Delete)
	}
}
