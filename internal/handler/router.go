package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Search *SearchHandler
	Videos *VideoHandler
	Index  *IndexHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/search", deps.Search.Search)

	api.GET("/videos", deps.Videos.List)
	api.GET("/videos/:id", deps.Videos.Get)
	api.GET("/videos/:id/related", deps.Videos.Related)

	api.POST("/videos/:id/reindex", deps.Index.Reindex)
	api.DELETE("/videos/:id/index", deps.Index.Delete)
}
