package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vidhub/internal/pkg/response"
	"github.com/xxxsen/vidhub/internal/service"
)

type VideoHandler struct {
	videos  *service.VideoService
	related *service.RelatedService
}

func NewVideoHandler(videos *service.VideoService, related *service.RelatedService) *VideoHandler {
	return &VideoHandler{videos: videos, related: related}
}

func (h *VideoHandler) Get(c *gin.Context) {
	detail, err := h.videos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *VideoHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	videos, err := h.videos.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"videos": videos, "count": len(videos)})
}

func (h *VideoHandler) Related(c *gin.Context) {
	limit := queryInt(c, "limit", 5)
	matches, err := h.related.GetRelated(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"related": matches, "count": len(matches)})
}
