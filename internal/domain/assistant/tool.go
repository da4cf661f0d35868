package assistant

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Param describes one tool parameter. Type is a JSON schema primitive:
// "string", "integer", "number" or "boolean".
type Param struct {
	Name        string
	Description string
	Type        string
	Required    bool
}

// ToolSpec is the declarative description of a tool exposed to the model.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// Tool is a function the model may invoke during a conversation.
type Tool interface {
	Spec() ToolSpec
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry holds the tools available to the assistant.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Spec().Name] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t, nil
}

// Specs returns all tool specs sorted by name.
func (r *Registry) Specs() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, t.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
