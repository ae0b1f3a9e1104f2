package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vidhub/internal/pkg/errcode"
	"github.com/xxxsen/vidhub/internal/pkg/response"
	"github.com/xxxsen/vidhub/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query    string  `json:"query"`
	Limit    int     `json:"limit"`
	MinScore float64 `json:"min_score"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Total   int         `json:"total"`
	Results interface{} `json:"results"`
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	results, err := h.search.Search(c.Request.Context(), req.Query, req.Limit, req.MinScore)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, searchResponse{
		Query:   req.Query,
		Total:   len(results),
		Results: results,
	})
}
