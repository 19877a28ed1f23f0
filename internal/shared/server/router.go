package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"rrr-backend/internal/analysis"
	"rrr-backend/internal/cache"
	"rrr-backend/internal/llm"
	"rrr-backend/internal/llm/azure"
	"rrr-backend/internal/shared/config"
	obsmetrics "rrr-backend/internal/shared/metrics"
	"rrr-backend/internal/shared/server/middleware"
	"rrr-backend/internal/shared/server/respond"
	"rrr-backend/internal/shared/storage/db"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/analyze" {
					return "ANALYZE"
				}
				return ""
			},
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			},
		}),
	)

	// Dependencies
	llmClient, err := newLLMClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure llm client: %w", err)
	}
	store := newCacheStore(cfg)

	if err := os.MkdirAll(cfg.VizDir, 0o755); err != nil {
		return nil, fmt.Errorf("create visualization dir: %w", err)
	}

	svc := analysis.NewService(llmClient, cfg.VizDir)
	analyzeHandler := analysis.NewHandler(svc, store)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.POST("/analyze", analyzeHandler.Analyze)

	r.GET("/metrics", obsmetrics.Handler())
	r.Static("/visualizations", cfg.VizDir)

	return r, nil
}

func newLLMClient(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "azure", "":
		return azure.NewClient(cfg.AzureEndpoint, cfg.LLMModel, cfg.AzureAPIVersion, cfg.AzureAPIKey)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// newCacheStore selects the configured cache backend, degrading to the
// in-memory store when a durable backend cannot be opened.
func newCacheStore(cfg config.Config) cache.Store {
	switch cfg.CacheBackend {
	case "postgres":
		ctx := context.Background()
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("postgres cache unavailable, falling back to memory: %v", err)
			return cache.NewMemoryStore(cfg.CacheTTL)
		}
		if err := db.RunMigrations(ctx, conn); err != nil {
			log.Printf("postgres migrations failed, falling back to memory: %v", err)
			conn.Close()
			return cache.NewMemoryStore(cfg.CacheTTL)
		}
		return cache.NewPGStore(conn, cfg.CacheTTL)
	case "memory":
		return cache.NewMemoryStore(cfg.CacheTTL)
	default:
		store, err := cache.NewSQLiteStore(cfg.CacheDBPath, cfg.CacheTTL)
		if err != nil {
			log.Printf("sqlite cache unavailable, falling back to memory: %v", err)
			return cache.NewMemoryStore(cfg.CacheTTL)
		}
		return store
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
