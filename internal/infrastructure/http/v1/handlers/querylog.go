package handlers

import (
	"github.com/gin-gonic/gin"

	"vcbot/internal/domain/querylog"
	"vcbot/internal/infrastructure/http/v1/dto"
)

// QueryLogHandler exposes the assistant query log.
type QueryLogHandler struct {
	base    *BaseHandler
	queries querylog.Store
}

// NewQueryLogHandler creates a query log handler.
func NewQueryLogHandler(base *BaseHandler, queries querylog.Store) *QueryLogHandler {
	return &QueryLogHandler{base: base, queries: queries}
}

// Recent returns the latest logged exchanges, newest first.
// GET /api/v1/queries?limit=50&user_id=...
func (h *QueryLogHandler) Recent(c *gin.Context) {
	limit := h.base.ParseIntQuery(c, "limit", 50)

	var (
		entries []querylog.Entry
		err     error
	)
	if userID := c.Query("user_id"); userID != "" {
		entries, err = h.queries.ByUser(c.Request.Context(), userID, limit)
	} else {
		entries, err = h.queries.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.ListResponse{Items: entries, Count: len(entries)})
}
