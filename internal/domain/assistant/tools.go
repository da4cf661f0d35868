package assistant

import (
	"context"
	"fmt"
	"strings"

	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/knowledge"
	"vcbot/internal/domain/reference"
	"vcbot/internal/domain/search"
)

// KnowledgeTool exposes the server knowledge base to the model.
type KnowledgeTool struct {
	base *knowledge.Base
}

func NewKnowledgeTool(base *knowledge.Base) *KnowledgeTool {
	return &KnowledgeTool{base: base}
}

func (t *KnowledgeTool) Spec() ToolSpec {
	return ToolSpec{
		Name: "call_knowledge",
		Description: "Retrieve a server knowledge document. Available documents: " +
			strings.Join(t.base.Names(), ", ") + ".",
		Params: []Param{
			{Name: "name", Description: "Document name to retrieve", Type: "string", Required: true},
		},
	}
}

func (t *KnowledgeTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	content, err := t.base.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"name": name, "content": content}, nil
}

// BillSearchTool lets the model search the bill corpus.
type BillSearchTool struct {
	searcher *search.Service
}

func NewBillSearchTool(searcher *search.Service) *BillSearchTool {
	return &BillSearchTool{searcher: searcher}
}

func (t *BillSearchTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "call_bill_search",
		Description: "Search legislative bill texts by semantic similarity and return the most relevant excerpts.",
		Params: []Param{
			{Name: "query", Description: "What to search for", Type: "string", Required: true},
			{Name: "top_k", Description: "Number of results, 1 to 10", Type: "integer", Required: false},
			{Name: "full_bills", Description: "Return whole bills instead of excerpts", Type: "boolean", Required: false},
		},
	}
}

func (t *BillSearchTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	topK := intArg(args, "top_k", 3)
	full := boolArg(args, "full_bills")

	results, err := t.searcher.Search(ctx, query, topK, full)
	if err != nil {
		return nil, err
	}
	hits := make([]map[string]any, len(results))
	for i, r := range results {
		hits[i] = map[string]any{"bill_id": r.BillID, "score": r.Score, "text": r.Text}
	}
	return map[string]any{"results": hits}, nil
}

// ReferenceTool reports the current reference numbers.
type ReferenceTool struct {
	refs *reference.Service
}

func NewReferenceTool(refs *reference.Service) *ReferenceTool {
	return &ReferenceTool{refs: refs}
}

func (t *ReferenceTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "get_reference",
		Description: "Look up the latest issued reference number for a bill type, or all types when none is given.",
		Params: []Param{
			{Name: "bill_type", Description: "Bill type such as hr, s or hjres", Type: "string", Required: false},
		},
	}
}

func (t *ReferenceTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	raw, _ := args["bill_type"].(string)
	if strings.TrimSpace(raw) == "" {
		refs, err := t.refs.List(ctx)
		if err != nil {
			return nil, err
		}
		all := make([]map[string]any, len(refs))
		for i, r := range refs {
			all[i] = map[string]any{"bill_type": r.BillType.String(), "reference_number": r.Number}
		}
		return map[string]any{"references": all}, nil
	}

	bt, err := billtype.Parse(raw)
	if err != nil {
		return nil, err
	}
	rec, err := t.refs.Query(ctx, bt)
	if err != nil {
		return nil, err
	}
	return map[string]any{"bill_type": rec.BillType.String(), "reference_number": rec.Number}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
