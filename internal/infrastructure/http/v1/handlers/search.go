package handlers

import (
	"github.com/gin-gonic/gin"

	"vcbot/internal/domain/search"
	"vcbot/internal/infrastructure/http/v1/dto"
)

// SearchHandler exposes vector search over bill texts.
type SearchHandler struct {
	base     *BaseHandler
	searcher *search.Service
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(base *BaseHandler, searcher *search.Service) *SearchHandler {
	return &SearchHandler{base: base, searcher: searcher}
}

// Search runs one semantic query.
// POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if !h.base.BindJSON(c, &req) {
		return
	}

	results, err := h.searcher.Search(c.Request.Context(), req.Query, req.TopK, req.FullBills)
	if err != nil {
		h.base.Error(c, err)
		return
	}

	items := dto.FromSearchResults(results)
	h.base.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}
