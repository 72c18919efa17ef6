package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"callcoach-backend/internal/analyses"
	"callcoach-backend/internal/audios"
	googleauth "callcoach-backend/internal/auth"
	"callcoach-backend/internal/llm"
	"callcoach-backend/internal/reports"
	"callcoach-backend/internal/shared/config"
	"callcoach-backend/internal/shared/metrics"
	"callcoach-backend/internal/shared/server/middleware"
	"callcoach-backend/internal/shared/server/respond"
	"callcoach-backend/internal/shared/storage/db"
	"callcoach-backend/internal/shared/storage/object"
	localstore "callcoach-backend/internal/shared/storage/object/local"
	s3store "callcoach-backend/internal/shared/storage/object/s3"
	"callcoach-backend/internal/shared/telemetry"
	"callcoach-backend/internal/stt"
	"callcoach-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(rateLimitConfig()),
	)

	// Dependencies
	store := newObjectStore(cfg)
	sqlDB := connectDatabase(cfg)

	var userRepo users.Repo
	var audioRepo audios.Repo
	var analysisRepo analyses.Repo
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		audioRepo = &audios.PGRepo{DB: sqlDB}
		analysisRepo = &analyses.PGRepo{DB: sqlDB}
	} else {
		userRepo = users.NewMemoryRepo()
		audioRepo = audios.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	sttGateway := newSTTGateway(cfg)
	llmGateway := newLLMGateway(cfg)

	userSvc := &users.Service{Repo: userRepo}
	userHandler := users.NewHandler(userSvc)
	googleSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, userSvc)

	uploadSvc := &audios.Service{
		Store:       store,
		Repo:        audioRepo,
		STT:         sttGateway,
		Concurrency: cfg.UploadConcurrency,
	}
	uploadHandler := audios.NewHandler(uploadSvc)

	analysisSvc := &analyses.Service{Audios: audioRepo, Repo: analysisRepo, Gateway: llmGateway}
	analysisHandler := analyses.NewHandler(analysisSvc)
	reportHandler := reports.NewHandler(analysisSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	userHandler.RegisterRoutes(api)
	googleSvc.RegisterRoutes(api)
	uploadHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)

	return r
}

// connectDatabase opens Postgres when configured, returning nil to signal
// the in-memory fallback.
func connectDatabase(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	ctx := context.Background()
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		return nil
	}
	return conn
}

func newObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("failed to initialize s3 store, falling back to local: %v", err)
		} else {
			return store
		}
	}
	return localstore.New(cfg.LocalStoreDir)
}

func newSTTGateway(cfg config.Config) *stt.Gateway {
	var backends []stt.Backend
	if cfg.OpenAIAPIKey != "" {
		backend, err := stt.NewWhisperBackend(cfg.OpenAIAPIKey)
		if err != nil {
			log.Printf("openai whisper backend disabled: %v", err)
		} else {
			backends = append(backends, backend)
		}
	}
	if cfg.LocalWhisperURL != "" {
		backend, err := stt.NewLocalWhisperBackend(cfg.LocalWhisperURL)
		if err != nil {
			log.Printf("local whisper backend disabled: %v", err)
		} else {
			backends = append(backends, backend)
		}
	}
	if len(backends) == 0 {
		telemetry.Error("stt.no_backends", map[string]any{})
	}
	return stt.NewGateway(time.Duration(cfg.STTTimeoutSeconds)*time.Second, backends...)
}

func newLLMGateway(cfg config.Config) *llm.Gateway {
	var providers []llm.Provider
	if cfg.GeminiAPIKey != "" {
		provider, err := llm.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("gemini provider disabled: %v", err)
		} else {
			providers = append(providers, provider)
		}
	}
	if cfg.OpenAIAPIKey != "" {
		provider, err := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIChatModel)
		if err != nil {
			log.Printf("openai provider disabled: %v", err)
		} else {
			providers = append(providers, provider)
		}
	}
	if len(providers) == 0 {
		telemetry.Error("llm.no_providers", map[string]any{})
	}
	return llm.NewGateway(time.Duration(cfg.LLMTimeoutSeconds)*time.Second, providers...)
}

func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 10, Burst: 20},
			"UPLOAD":  {Rate: 1, Burst: 5},
			"ANALYZE": {Rate: 0.5, Burst: 2},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			switch {
			case c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/audios/upload"):
				return "UPLOAD"
			case c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/analyze"):
				return "ANALYZE"
			default:
				return "DEFAULT"
			}
		},
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
