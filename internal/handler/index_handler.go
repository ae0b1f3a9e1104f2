package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vidhub/internal/pkg/response"
	"github.com/xxxsen/vidhub/internal/service"
)

type IndexHandler struct {
	indexer *service.IndexService
}

func NewIndexHandler(indexer *service.IndexService) *IndexHandler {
	return &IndexHandler{indexer: indexer}
}

func (h *IndexHandler) Reindex(c *gin.Context) {
	chunks, err := h.indexer.Reindex(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chunks": chunks})
}

func (h *IndexHandler) Delete(c *gin.Context) {
	if err := h.indexer.DeleteIndex(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
