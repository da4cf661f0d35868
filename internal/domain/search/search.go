// Package search provides vector search over the legislative corpus.
// Bill texts are chunked and embedded offline; queries are embedded at
// request time and ranked by cosine similarity.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"vcbot/internal/core/apperror"
	"vcbot/pkg/logger"
)

// MaxTopK bounds how many chunks a single search may return.
const MaxTopK = 10

// Embedder turns text into a vector. The Gemini implementation lives in the
// infrastructure layer; tests use a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunk is one embedded slice of a bill.
type Chunk struct {
	BillID    string    `json:"bill_id"`
	Seq       int       `json:"seq"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Result is one ranked search hit.
type Result struct {
	Score  float64 `json:"score"`
	BillID string  `json:"bill_id"`
	Text   string  `json:"text"`
}

// Index is the persisted embedding corpus.
type Index struct {
	Chunks []Chunk `json:"chunks"`
}

// LoadIndex reads a JSON index file.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &idx, nil
}

// Service answers search queries against a loaded index.
type Service struct {
	index    *Index
	embedder Embedder
	log      *logger.Logger
}

// NewService creates a search service.
func NewService(index *Index, embedder Embedder, log *logger.Logger) *Service {
	return &Service{index: index, embedder: embedder, log: log.WithComponent("search")}
}

// Search embeds the query and returns the top-k most similar chunks.
// When reconstruct is true, hits are grouped per bill and each bill's chunks
// are stitched back together in corpus order.
func (s *Service) Search(ctx context.Context, query string, topK int, reconstruct bool) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperror.NewValidation("query cannot be empty")
	}
	if topK < 1 {
		topK = 1
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if len(s.index.Chunks) == 0 {
		return nil, nil
	}
	if topK > len(s.index.Chunks) {
		topK = len(s.index.Chunks)
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperror.NewAIService(fmt.Errorf("embed query: %w", err))
	}

	type scored struct {
		chunk Chunk
		score float64
	}
	hits := make([]scored, 0, len(s.index.Chunks))
	for _, chunk := range s.index.Chunks {
		hits = append(hits, scored{chunk: chunk, score: cosine(qvec, chunk.Embedding)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	hits = hits[:topK]

	if !reconstruct {
		out := make([]Result, len(hits))
		for i, h := range hits {
			out[i] = Result{Score: h.score, BillID: h.chunk.BillID, Text: h.chunk.Text}
		}
		return out, nil
	}

	// Group hits per bill, keep the best score, and rebuild each bill from
	// all of its chunks in sequence order.
	best := map[string]float64{}
	order := []string{}
	for _, h := range hits {
		if _, seen := best[h.chunk.BillID]; !seen {
			order = append(order, h.chunk.BillID)
			best[h.chunk.BillID] = h.score
		}
	}

	out := make([]Result, 0, len(order))
	for _, billID := range order {
		var parts []Chunk
		for _, chunk := range s.index.Chunks {
			if chunk.BillID == billID {
				parts = append(parts, chunk)
			}
		}
		sort.Slice(parts, func(i, j int) bool { return parts[i].Seq < parts[j].Seq })

		var sb strings.Builder
		for _, p := range parts {
			sb.WriteString(p.Text)
		}
		out = append(out, Result{Score: best[billID], BillID: billID, Text: sb.String()})
	}
	return out, nil
}

// cosine returns the cosine similarity of two vectors, 0 for mismatched or
// zero-magnitude inputs.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ChunkText splits text into overlapping chunks for indexing.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1024
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
