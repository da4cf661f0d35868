package dto

// AskRequest is one assistant question.
type AskRequest struct {
	Query     string `json:"query" binding:"required"`
	ChannelID string `json:"channel_id"`
}

// AskResponse is the assistant's answer.
type AskResponse struct {
	Text      string   `json:"text"`
	ToolCalls []string `json:"tool_calls,omitempty"`
	Truncated bool     `json:"truncated,omitempty"`
}
