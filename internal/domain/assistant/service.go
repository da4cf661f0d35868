package assistant

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/querylog"
	"vcbot/internal/observability"
	"vcbot/pkg/logger"
)

var tracer = otel.Tracer("vcbot/assistant")

// MaxResponseLength is the chat platform message limit. Longer answers are
// truncated with an ellipsis marker.
const MaxResponseLength = 2000

const systemPrompt = `You are the legislative clerk assistant for a ` +
	`model-government chat server. Answer questions about bills, server rules ` +
	`and procedure. Use the available tools to look up documents, search bill ` +
	`texts and report reference numbers. Be concise and cite bill identifiers ` +
	`such as "HR 12" when relevant. If you do not know, say so.`

// Request is one user question for the assistant.
type Request struct {
	UserID    string
	UserName  string
	ChannelID string
	Query     string
}

// Response is the assistant's answer plus bookkeeping.
type Response struct {
	Text      string   `json:"text"`
	ToolCalls []string `json:"tool_calls,omitempty"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Service answers user questions via the model and logs every exchange.
type Service struct {
	model    Model
	registry *Registry
	queries  querylog.Store
	log      *logger.Logger
}

func NewService(model Model, registry *Registry, queries querylog.Store, log *logger.Logger) *Service {
	return &Service{
		model:    model,
		registry: registry,
		queries:  queries,
		log:      log.WithComponent("assistant"),
	}
}

// Ask runs one question through the model, executing any tool calls it
// requests, and appends the exchange to the query log.
func (s *Service) Ask(ctx context.Context, req Request) (Response, error) {
	ctx, span := tracer.Start(ctx, "assistant.Ask")
	defer span.End()

	if strings.TrimSpace(req.Query) == "" {
		return Response{}, apperror.NewValidation("query cannot be empty")
	}

	reply, err := s.model.Generate(ctx, systemPrompt, req.Query, s.registry.Specs(), s.execute)
	if err != nil {
		observability.AssistantRequests.WithLabelValues("error").Inc()
		s.log.Errorw("assistant generation failed", "user_id", req.UserID, "error", err)
		return Response{}, err
	}

	resp := Response{Text: reply.Text, ToolCalls: reply.ToolCalls}
	if runes := []rune(resp.Text); len(runes) > MaxResponseLength {
		resp.Text = string(runes[:MaxResponseLength-1]) + "…"
		resp.Truncated = true
	}

	entry := querylog.Entry{
		UserID:    req.UserID,
		UserName:  req.UserName,
		ChannelID: req.ChannelID,
		Query:     req.Query,
		Response:  resp.Text,
		ToolCalls: reply.ToolCalls,
		Tokens:    reply.Tokens,
	}
	if err := s.queries.Append(ctx, entry); err != nil {
		// The answer is already produced; a logging failure must not eat it.
		s.log.Errorw("query log append failed", "user_id", req.UserID, "error", err)
	}

	observability.AssistantRequests.WithLabelValues("ok").Inc()
	s.log.Infow("assistant answered",
		"user_id", req.UserID,
		"tool_calls", reply.ToolCalls,
		"truncated", resp.Truncated,
	)
	return resp, nil
}

func (s *Service) execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	tool, err := s.registry.Get(name)
	if err != nil {
		return nil, apperror.NewToolExecution(name, err)
	}
	s.log.Debugw("executing tool", "tool", name)
	out, err := tool.Call(ctx, args)
	if err != nil {
		return nil, apperror.NewToolExecution(name, err)
	}
	return out, nil
}
