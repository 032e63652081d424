package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/wellbot/internal/auth"
	"github.com/geocoder89/wellbot/internal/chat"
	"github.com/geocoder89/wellbot/internal/config"
	"github.com/geocoder89/wellbot/internal/http/handlers"
	"github.com/geocoder89/wellbot/internal/http/middlewares"
	"github.com/geocoder89/wellbot/internal/oauth"
	"github.com/geocoder89/wellbot/internal/observability"
	"github.com/geocoder89/wellbot/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Users     handlers.UserStore
	Tokens    *auth.Manager
	Relay     handlers.Responder
	Extractor report.Extractor

	// OAuth may be nil when google login is not configured.
	OAuth  oauth.Provider
	States oauth.StateStore

	Metrics  *observability.Prom
	Gatherer prometheus.Gatherer

	// Ready is checked by /readyz, keyed by a display name.
	Ready map[string]handlers.Pinger
}

var pagePaths = []string{"/", "/dashboard", "/symptoms", "/analysis", "/report"}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if deps.Metrics == nil {
		reg := prometheus.NewRegistry()
		deps.Metrics = observability.NewProm(reg)
		deps.Gatherer = reg
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.States == nil {
		deps.States = oauth.NewMemoryStateStore(oauth.StateTTL)
	}
	if deps.Relay == nil {
		deps.Relay = chat.NewRelay(nil, chat.WellBot(), chat.WithObserver(deps.Metrics), chat.WithLogger(log))
	}
	if deps.Extractor == nil {
		deps.Extractor = report.NewMockExtractor()
	}

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("wellbot-api"))
	r.Use(deps.Metrics.GinHandleMiddleware())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders(pagePaths...))
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	chatLimiter := middlewares.NewRateLimiter(20, time.Minute)
	authMW := middlewares.NewAuthMiddleware(deps.Tokens)

	// health + metrics
	h := handlers.NewHealthHandler(deps.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// browser pages
	pages := handlers.NewPagesHandler(cfg.PagesDir, log)
	r.GET("/", pages.Page("index"))
	r.GET("/dashboard", pages.Dashboard)
	r.GET("/symptoms", pages.Page("symptoms"))
	r.GET("/analysis", pages.Page("analysis"))
	r.GET("/report", pages.Page("report"))

	// accounts
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, deps.Metrics, log)
	r.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authHandler.Register)
	r.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authHandler.Login)
	r.GET("/user/profile", authMW.RequireAuth(), authHandler.Profile)

	if cfg.MimicLoginEnabled() {
		r.GET("/mimic_login", authHandler.MimicLogin(cfg.MimicUserID))
	}

	oauthHandler := handlers.NewOAuthHandler(deps.OAuth, deps.States, deps.Users, deps.Tokens, deps.Metrics, log)
	r.GET("/login/google", oauthHandler.Start)
	r.GET("/google/callback", oauthHandler.Callback)

	// wellness tools
	chatHandler := handlers.NewChatHandler(deps.Relay)
	r.POST("/api/chat", chatLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP), chatHandler.Chat)
	r.GET("/api/health-data", handlers.GetHealthData)
	r.POST("/analysis", handlers.Analysis)
	r.POST("/report", handlers.NewReportHandler(deps.Extractor, log).Upload)

	return r
}
