// Package bootstrap wires configuration into a running application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resurate/internal/ai"
	"resurate/internal/ai/gemini"
	"resurate/internal/ai/openai"
	"resurate/internal/auth"
	"resurate/internal/convert"
	"resurate/internal/files"
	"resurate/internal/kv"
	"resurate/internal/platform"
	"resurate/internal/resumes"
	"resurate/internal/services/health"
	sharedauth "resurate/internal/shared/auth"
	"resurate/internal/shared/config"
	"resurate/internal/shared/server"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/storage/db"
	"resurate/internal/shared/storage/object"
	localstore "resurate/internal/shared/storage/object/local"
	s3store "resurate/internal/shared/storage/object/s3"
	"resurate/internal/shared/telemetry"
	"resurate/internal/users"
	"resurate/internal/web"
	"resurate/internal/wipe"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Platform  *platform.Platform
	Signer    *sharedauth.Signer
	Converter convert.Converter

	UsersService   *users.Service
	ResumesService *resumes.Service
	WipeService    *wipe.Service
}

// Options override pieces of the wiring, mostly for tests and the CLI.
type Options struct {
	// Converter replaces the headless Chrome converter.
	Converter convert.Converter
	// AI replaces the configured provider.
	AI platform.AI
	// SkipRouter leaves Router nil.
	SkipRouter bool
	// DBProfile sizes the pool; empty means db.ProfileServer.
	DBProfile db.Profile
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := connectDB(ctx, cfg, opts.DBProfile)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.Env, cfg.SessionTTL)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	var kvStore platform.KV
	var userRepo users.Repo
	if sqlDB != nil && cfg.KVStoreType == "postgres" {
		kvStore = &kv.PGStore{DB: sqlDB}
	} else {
		kvStore = kv.NewMemoryStore()
	}
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		userRepo = users.NewMemoryRepo()
	}

	filesCap := &platform.ObjectFiles{Store: store}

	aiClient := opts.AI
	if aiClient == nil {
		aiClient, err = buildAI(ctx, cfg, filesCap)
		if err != nil {
			closeDB(sqlDB)
			return nil, err
		}
	}

	p := &platform.Platform{
		Auth:  signer,
		Files: filesCap,
		KV:    kvStore,
		AI:    ai.WithTimeout(aiClient, cfg.AITimeout),
	}
	if err := p.Validate(); err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	conv := opts.Converter
	if conv == nil {
		conv = convert.NewChrome(cfg.ChromePath, cfg.ConvertTimeout)
	}

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Store:          store,
		Platform:       p,
		Signer:         signer,
		Converter:      conv,
		UsersService:   users.NewService(userRepo),
		ResumesService: resumes.NewService(p, conv, cfg.ConvertTimeout),
		WipeService:    wipe.NewService(p),
	}

	if !opts.SkipRouter {
		router, err := buildRouter(app)
		if err != nil {
			closeDB(sqlDB)
			return nil, err
		}
		app.Router = router
	}

	p.MarkReady()
	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"kv_store":     fmt.Sprintf("%T", kvStore),
		"ai_provider":  cfg.AIProvider,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildRouter(app *App) (*gin.Engine, error) {
	cfg := app.Config
	p := app.Platform

	sessions := &auth.Sessions{
		Auth:   p.Auth,
		Users:  app.UsersService,
		TTL:    app.Signer.TTL(),
		Secure: cfg.Env == "production" || cfg.Env == "staging",
	}
	google := auth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, sessions)
	gate := &auth.Gate{Ready: p.Ready}

	pages, err := web.NewHandler(app.ResumesService, app.WipeService, gate)
	if err != nil {
		return nil, err
	}
	pages.GoogleEnabled = google.Configured()
	pages.DevSignIn = cfg.DevSignIn()
	gate.Loading = pages.Loading

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}

	return server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: p.Auth,
		Gate:     gate,
		Health:   health.NewService(p.Ready, pinger),
		Users:    users.NewHandler(app.UsersService),
		Resumes:  resumes.NewHandler(app.ResumesService),
		Files:    files.NewHandler(p.Files),
		Wipe:     wipe.NewHandler(app.WipeService),
		Google:   google,
		Forms: &auth.FormHandler{
			Sessions:  sessions,
			DevSignIn: cfg.DevSignIn(),
			OnError:   pages.AuthError,
		},
		Web:     pages,
		Limiter: middleware.NewRateLimiter(nil),
	}), nil
}

var connectDB = buildDB

func closeDB(sqlDB *sql.DB) {
	if sqlDB == nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		telemetry.Warn("bootstrap.database_close_failed", map[string]any{"error": err})
	}
}

func buildDB(ctx context.Context, cfg config.Config, profile db.Profile) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) || cfg.KVStoreType == "memory" {
			telemetry.Info("bootstrap.database_skipped", map[string]any{"reason": "DATABASE_URL empty; using in-memory stores"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, profile)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	version, err := db.RunMigrations(ctx, sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	telemetry.Debug("bootstrap.schema_version", map[string]any{"version": version})
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildAI(ctx context.Context, cfg config.Config, files platform.Files) (platform.AI, error) {
	switch cfg.AIProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return placeholder(cfg, "OPENAI_API_KEY empty")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.AIModel, files)
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return placeholder(cfg, "GEMINI_API_KEY empty")
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.AIModel, files)
	default:
		return ai.Placeholder{}, nil
	}
}

func placeholder(cfg config.Config, reason string) (platform.AI, error) {
	if !isDevLike(cfg.Env) {
		return nil, fmt.Errorf("ai provider %s: %s", cfg.AIProvider, reason)
	}
	telemetry.Warn("bootstrap.ai_placeholder", map[string]any{"provider": cfg.AIProvider, "reason": reason})
	return ai.Placeholder{}, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
