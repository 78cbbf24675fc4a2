package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobfill/autofill"
	"jobfill/controllers"
	"jobfill/middleware"
	"jobfill/services"
)

const (
	maxBodySize    = 5 << 20
	cacheTTL       = 30 * time.Second
	analyzeFormURL = "/api/forms/analyze"
	// extension builds that predate /forms/analyze post here
	legacyAnalyzeFormURL = "/api/ai/analyze-form"
)

// Config carries everything the router wires together. Filler and
// Validator are optional. Without a Filler the fill endpoint answers 503.
// Without a Validator the API is open; with one, /api/fill additionally
// needs a fill-scoped token.
type Config struct {
	Version      string
	Profiles     controllers.ProfileStore
	Settings     controllers.SettingsStore
	Applications controllers.ApplicationStore
	Analyzer     *autofill.Analyzer
	Filler       controllers.Filler
	Screenshots  controllers.ScreenshotStore
	Records      controllers.ScreenshotRecords
	Validator    middleware.TokenValidator
	CORS         middleware.CORSConfig
	Logger       *zap.Logger
}

// Router is the HTTP surface of the dashboard API. Close stops the
// background goroutines of its limiters and cache.
type Router struct {
	*gin.Engine
	limiters map[string]*middleware.RateLimiter
	cache    *middleware.ResponseCache
}

func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Stop()
	}
	r.cache.Stop()
}

func NewRouter(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS = middleware.DefaultCORSConfig()
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = autofill.NewAnalyzer(nil)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(cfg.Logger))
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.SanitizeInput())

	r := &Router{
		Engine:   engine,
		limiters: middleware.CreateRateLimiters(),
		cache:    middleware.NewResponseCache(cacheTTL, analyzeFormURL, legacyAnalyzeFormURL),
	}

	health := &controllers.HealthController{Version: cfg.Version}
	engine.GET("/api/health", health.Health)

	profiles := controllers.NewProfileController(cfg.Profiles)
	settings := controllers.NewSettingsController(cfg.Settings)
	applications := controllers.NewApplicationController(cfg.Applications)
	forms := controllers.NewFormController(cfg.Analyzer, cfg.Profiles)
	fill := controllers.NewFillController(cfg.Filler)

	api := engine.Group("/api")
	api.Use(middleware.MaxRequestSize(maxBodySize))
	api.Use(middleware.ValidateJSON())
	api.Use(r.limiters["general"].Limit())
	if cfg.Validator != nil {
		api.Use(middleware.Auth(cfg.Validator))
	}
	api.Use(r.cache.Invalidate())
	api.Use(r.cache.Cache())
	{
		api.GET("/profile", profiles.GetProfile)
		api.PUT("/profile", profiles.UpdateProfile)
		api.POST("/profile/reset", profiles.ResetProfile)

		api.GET("/settings", settings.GetSettings)
		api.PUT("/settings", settings.UpdateSettings)

		api.GET("/applications", applications.ListApplications)
		api.POST("/applications", applications.CreateApplication)
		api.PUT("/applications/:id", applications.UpdateApplication)
		api.DELETE("/applications/:id", applications.DeleteApplication)
		api.GET("/applications/stats", applications.GetStats)
		api.GET("/applications/export", applications.ExportApplications)

		api.POST("/forms/analyze", forms.AnalyzeForm)
		api.POST("/ai/analyze-form", forms.AnalyzeForm)
	}

	if cfg.Records != nil {
		screenshots := controllers.NewScreenshotController(cfg.Screenshots, cfg.Records)
		api.GET("/screenshots/:id", screenshots.GetScreenshotURL)
		api.DELETE("/screenshots/:id", screenshots.DeleteScreenshot)
	}

	fillHandlers := []gin.HandlerFunc{r.limiters["fill"].Limit()}
	if cfg.Validator != nil {
		fillHandlers = append(fillHandlers, middleware.RequireScope(services.ScopeFill))
	}
	fillHandlers = append(fillHandlers, fill.Fill)
	api.POST("/fill", fillHandlers...)

	return r
}
