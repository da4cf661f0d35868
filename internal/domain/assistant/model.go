package assistant

import "context"

// ToolExecutor runs a named tool with model-provided arguments and returns
// the structured result to feed back into the conversation.
type ToolExecutor func(ctx context.Context, name string, args map[string]any) (map[string]any, error)

// Reply is the outcome of one model exchange, including any tool activity.
type Reply struct {
	Text      string
	ToolCalls []string
	Tokens    map[string]int64
}

// Model runs a single prompt through the language model, resolving function
// calls via exec until the model produces a final text answer.
type Model interface {
	Generate(ctx context.Context, system, prompt string, tools []ToolSpec, exec ToolExecutor) (Reply, error)
}

// MockModel is a test double with overridable behavior.
type MockModel struct {
	GenerateFunc func(ctx context.Context, system, prompt string, tools []ToolSpec, exec ToolExecutor) (Reply, error)
}

func (m *MockModel) Generate(ctx context.Context, system, prompt string, tools []ToolSpec, exec ToolExecutor) (Reply, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt, tools, exec)
	}
	return Reply{}, nil
}

var _ Model = (*MockModel)(nil)
