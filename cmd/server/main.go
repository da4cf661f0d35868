// Package main is the entry point for the vcbot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vcbot/internal/domain/assistant"
	"vcbot/internal/domain/auth"
	"vcbot/internal/domain/bills"
	"vcbot/internal/domain/knowledge"
	"vcbot/internal/domain/querylog"
	"vcbot/internal/domain/reference"
	"vcbot/internal/domain/search"
	"vcbot/internal/infrastructure/ai"
	v1 "vcbot/internal/infrastructure/http/v1"
	"vcbot/internal/infrastructure/http/v1/handlers"
	"vcbot/internal/infrastructure/storage/billstore"
	"vcbot/internal/infrastructure/storage/querylogstore"
	"vcbot/internal/infrastructure/storage/refstore"
	"vcbot/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting vcbot server")

	dataDir := getEnv("VCBOT_DATA_DIR", "data")
	readyChecks := map[string]handlers.ReadyCheck{}

	// --- Reference store: Postgres when DATABASE_URL is set, file otherwise ---
	var refStore reference.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatalw("failed to ping database", "error", err)
		}
		pgStore, err := refstore.NewPostgresStore(ctx, pool, log)
		if err != nil {
			log.Fatalw("failed to initialize reference store", "error", err)
		}
		refStore = pgStore
		readyChecks["database"] = pool.Ping
		log.Info("using postgres reference store")
	} else {
		refsFile := getEnv("VCBOT_REFS_FILE", filepath.Join(dataDir, "refs.json"))
		fileStore, err := refstore.NewFileStore(refsFile, log)
		if err != nil {
			log.Fatalw("failed to initialize reference store", "error", err)
		}
		refStore = fileStore
		readyChecks["reference_store"] = func(ctx context.Context) error {
			_, err := fileStore.Load(ctx)
			return err
		}
		log.Infow("using file reference store", "path", refsFile)
	}

	refService := reference.NewService(refStore, log)

	// --- Bill catalog ---
	billStore, err := billstore.New(filepath.Join(dataDir, "bills"), log)
	if err != nil {
		log.Fatalw("failed to initialize bill store", "error", err)
	}
	billService := bills.NewService(billStore, refService, log)

	// --- Query log ---
	queryStore, err := querylogstore.New(getEnv("VCBOT_QUERYLOG_DB", filepath.Join(dataDir, "queries.db")))
	if err != nil {
		log.Fatalw("failed to initialize query log", "error", err)
	}
	defer queryStore.Close()

	// --- JWT and operators ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	operators, err := loadOperators()
	if err != nil {
		log.Fatalw("failed to provision operators", "error", err)
	}
	authService := auth.NewService(operators, jwtService, log)

	// --- Optional AI surface: search and assistant ---
	var (
		searchService    *search.Service
		assistantService *assistant.Service
	)
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		embedder, err := ai.NewEmbedder(ctx, apiKey, getEnv("VCBOT_EMBEDDING_MODEL", ""), "RETRIEVAL_QUERY")
		if err != nil {
			log.Fatalw("failed to create embedder", "error", err)
		}

		indexPath := getEnv("VCBOT_INDEX_FILE", filepath.Join(dataDir, "index.json"))
		if index, err := search.LoadIndex(indexPath); err != nil {
			log.Warnw("search index unavailable, search disabled", "path", indexPath, "error", err)
		} else {
			searchService = search.NewService(index, embedder, log)
			log.Infow("search index loaded", "chunks", len(index.Chunks))
		}

		model, err := ai.NewGeminiModel(ctx, apiKey, getEnv("VCBOT_CHAT_MODEL", ""), log)
		if err != nil {
			log.Fatalw("failed to create gemini model", "error", err)
		}

		registry := assistant.NewRegistry()
		registry.Register(assistant.NewReferenceTool(refService))
		if searchService != nil {
			registry.Register(assistant.NewBillSearchTool(searchService))
		}
		if configPath := os.Getenv("VCBOT_KNOWLEDGE_CONFIG"); configPath != "" {
			base, err := knowledge.LoadConfig(configPath)
			if err != nil {
				log.Fatalw("failed to load knowledge config", "error", err)
			}
			registry.Register(assistant.NewKnowledgeTool(base))
		}

		assistantService = assistant.NewService(model, registry, queryStore, log)
		log.Info("assistant enabled")
	} else {
		log.Info("GEMINI_API_KEY not set, assistant and search disabled")
	}

	// --- Router ---
	var queries querylog.Store = queryStore
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		References:   refService,
		Bills:        billService,
		Search:       searchService,
		Assistant:    assistantService,
		Queries:      queries,
		ReadyChecks:  readyChecks,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// loadOperators provisions the fixed operator set from environment passwords.
func loadOperators() ([]auth.Operator, error) {
	var operators []auth.Operator

	if pw := os.Getenv("VCBOT_CLERK_PASSWORD"); pw != "" {
		clerk, err := auth.NewOperator("clerk", pw, []string{"clerk"}, false)
		if err != nil {
			return nil, err
		}
		operators = append(operators, clerk)
	}
	if pw := os.Getenv("VCBOT_ADMIN_PASSWORD"); pw != "" {
		admin, err := auth.NewOperator("admin", pw, []string{"clerk", "admin"}, true)
		if err != nil {
			return nil, err
		}
		operators = append(operators, admin)
	}
	if len(operators) == 0 {
		return nil, fmt.Errorf("no operators configured, set VCBOT_CLERK_PASSWORD or VCBOT_ADMIN_PASSWORD")
	}
	return operators, nil
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
