package router

import (
	"commentkit/internal/config"
	"commentkit/internal/handlers"
	"commentkit/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Register mounts the comment API under the configured route prefix.
func Register(r *gin.Engine, cfg *config.Config, commentHandler *handlers.CommentHandler, reactionHandler *handlers.ReactionHandler) {
	api := r.Group("/" + cfg.RoutePrefix)
	api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	api.Use(middleware.LoadUser())

	api.POST("/owners/:otype/:oid", commentHandler.Create)
	api.GET("/owners/:otype/:oid", commentHandler.Tree)
	api.POST("/comments/:id/approve", commentHandler.Approve)

	api.POST("/comments/:id/reactions", reactionHandler.Toggle)
	api.GET("/comments/:id/reactions", reactionHandler.List)
	api.GET("/comments/:id/reactions/stats", reactionHandler.Stats)
	api.GET("/comments/:id/reactions/me", reactionHandler.Me)
	api.POST("/reactions/bulk", reactionHandler.BulkToggle)
	api.GET("/popular", reactionHandler.Popular)
}
