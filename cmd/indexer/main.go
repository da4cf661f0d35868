// Package main builds the vector search index from the stored bill corpus.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vcbot/internal/domain/search"
	"vcbot/internal/infrastructure/ai"
	"vcbot/internal/infrastructure/storage/billstore"
	"vcbot/pkg/logger"
)

// embedBatchSize keeps each embedding request within API limits.
const embedBatchSize = 64

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dataDir := getEnv("VCBOT_DATA_DIR", "data")
	indexPath := getEnv("VCBOT_INDEX_FILE", filepath.Join(dataDir, "index.json"))
	chunkSize := getEnvInt("VCBOT_CHUNK_SIZE", 1024)
	chunkOverlap := getEnvInt("VCBOT_CHUNK_OVERLAP", 50)

	embedder, err := ai.NewEmbedder(ctx, mustEnv("GEMINI_API_KEY"),
		getEnv("VCBOT_EMBEDDING_MODEL", ""), "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Fatalw("failed to create embedder", "error", err)
	}

	store, err := billstore.New(filepath.Join(dataDir, "bills"), log)
	if err != nil {
		log.Fatalw("failed to open bill store", "error", err)
	}

	bills, err := store.FindAll(ctx)
	if err != nil {
		log.Fatalw("failed to load bills", "error", err)
	}
	log.Infow("indexing corpus", "bills", len(bills), "chunk_size", chunkSize)

	var (
		chunks []search.Chunk
		texts  []string
	)
	for _, bill := range bills {
		for seq, text := range search.ChunkText(bill.TextContent, chunkSize, chunkOverlap) {
			chunks = append(chunks, search.Chunk{BillID: bill.Identifier, Seq: seq, Text: text})
			texts = append(texts, text)
		}
	}

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			log.Fatalw("embedding batch failed", "offset", start, "error", err)
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
		log.Infow("embedded batch", "done", end, "total", len(texts))
	}

	if err := writeIndex(indexPath, &search.Index{Chunks: chunks}); err != nil {
		log.Fatalw("failed to write index", "error", err)
	}
	log.Infow("index written", "path", indexPath, "chunks", len(chunks))
}

// writeIndex persists the index with a temp-file rename so a crash never
// leaves a half-written index behind.
func writeIndex(path string, index *search.Index) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	tmp = nil

	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename index: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
