package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/assistant"
	"vcbot/pkg/logger"
)

const (
	defaultChatModel = "gemini-2.0-flash"

	// maxToolRounds bounds the function-calling loop so a misbehaving model
	// cannot spin forever.
	maxToolRounds = 8
)

// GeminiModel implements assistant.Model on the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewGeminiModel(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultChatModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiModel{client: client, model: model, log: log.WithComponent("gemini")}, nil
}

// Generate runs the prompt through Gemini, resolving function calls via exec
// until the model answers in plain text.
func (m *GeminiModel) Generate(ctx context.Context, system, prompt string, tools []assistant.ToolSpec, exec assistant.ToolExecutor) (assistant.Reply, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations(tools)}}
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	reply := assistant.Reply{Tokens: map[string]int64{}}

	for round := 0; round < maxToolRounds; round++ {
		result, err := m.client.Models.GenerateContent(ctx, m.model, contents, config)
		if err != nil {
			return reply, apperror.NewAIService(err)
		}
		if usage := result.UsageMetadata; usage != nil {
			reply.Tokens["prompt"] += int64(usage.PromptTokenCount)
			reply.Tokens["completion"] += int64(usage.CandidatesTokenCount)
			reply.Tokens["total"] += int64(usage.TotalTokenCount)
		}

		calls := result.FunctionCalls()
		if len(calls) == 0 {
			reply.Text = result.Text()
			return reply, nil
		}

		if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			contents = append(contents, result.Candidates[0].Content)
		}
		for _, call := range calls {
			m.log.Debugw("model requested tool", "tool", call.Name)
			reply.ToolCalls = append(reply.ToolCalls, call.Name)

			out, err := exec(ctx, call.Name, call.Args)
			if err != nil {
				// Feed the failure back so the model can recover or explain.
				out = map[string]any{"error": err.Error()}
			}
			part := genai.NewPartFromFunctionResponse(call.Name, out)
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		}
	}

	return reply, apperror.NewAIService(fmt.Errorf("tool loop exceeded %d rounds", maxToolRounds))
}

var _ assistant.Model = (*GeminiModel)(nil)

func declarations(tools []assistant.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, spec := range tools {
		props := make(map[string]*genai.Schema, len(spec.Params))
		var required []string
		for _, p := range spec.Params {
			props[p.Name] = &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		decls[i] = &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		}
	}
	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
