package handlers

import (
	"github.com/gin-gonic/gin"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/assistant"
	"vcbot/internal/infrastructure/http/v1/dto"
)

// AssistantHandler exposes the AI assistant.
type AssistantHandler struct {
	base      *BaseHandler
	assistant *assistant.Service
}

// NewAssistantHandler creates an assistant handler.
func NewAssistantHandler(base *BaseHandler, svc *assistant.Service) *AssistantHandler {
	return &AssistantHandler{base: base, assistant: svc}
}

// Ask answers one question on behalf of the authenticated user.
// POST /api/v1/assistant/ask
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if !h.base.BindJSON(c, &req) {
		return
	}

	user := h.base.GetUser(c)
	if user == nil {
		h.base.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	resp, err := h.assistant.Ask(c.Request.Context(), assistant.Request{
		UserID:    user.UserID,
		UserName:  user.UserName,
		ChannelID: req.ChannelID,
		Query:     req.Query,
	})
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.AskResponse{
		Text:      resp.Text,
		ToolCalls: resp.ToolCalls,
		Truncated: resp.Truncated,
	})
}
