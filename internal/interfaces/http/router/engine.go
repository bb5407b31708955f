package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/infrastructure/config"
	"github.com/tileshop/backend/internal/infrastructure/logger"
	"github.com/tileshop/backend/internal/interfaces/http/handler"
	"github.com/tileshop/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted by NewEngine. Auth may be nil
// when admin authentication is disabled.
type Handlers struct {
	System   *handler.SystemHandler
	Auth     *handler.AuthHandler
	Tile     *handler.TileHandler
	Customer *handler.CustomerHandler
	Invoice  *handler.InvoiceHandler
}

// EngineConfig carries everything the engine needs besides handlers
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Swagger config.SwaggerConfig
	Logger  *zap.Logger

	// Authenticator enables JWT on the admin API when non-nil
	Authenticator middleware.TokenAuthenticator
	// LoginLimiter throttles POST /auth/login per client IP; nil disables it
	LoginLimiter *middleware.RateLimiter

	TracingEnabled   bool
	ServiceName      string
	Meter            metric.Meter
	ProfilingEnabled bool
}

// NewEngine builds the gin engine with the middleware chain and all routes
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	// Invoice numbers contain "/"; refs arrive %2F-encoded and must match :ref
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.TracingEnabled
	if cfg.ServiceName != "" {
		tracingCfg.ServiceName = cfg.ServiceName
	}
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = cfg.ProfilingEnabled

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(tracingCfg),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.Profiling(profilingCfg),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	var jwt gin.HandlerFunc
	if cfg.Authenticator != nil {
		jwtCfg := middleware.DefaultJWTConfig(cfg.Authenticator)
		jwtCfg.Logger = log
		jwt = middleware.JWTAuthMiddlewareWithConfig(jwtCfg)
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	var swaggerAuth gin.HandlerFunc
	if cfg.Authenticator != nil {
		swaggerAuth = middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Authenticator: cfg.Authenticator,
			Logger:        log,
		})
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, swaggerAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))
	if jwt != nil {
		r.Use(jwt)
	}
	r.Use(middleware.TracingAttributeInjector())

	for _, group := range domainGroups(h, cfg.LoginLimiter) {
		r.Register(group)
		log.Debug("Routes declared", zap.String("group", group.Name()), zap.Int("routes", len(group.Routes())))
	}
	api := r.Setup()
	if h.System != nil {
		api.GET("/", h.System.Root)
	}

	return engine
}

func domainGroups(h Handlers, loginLimiter *middleware.RateLimiter) []*DomainGroup {
	var groups []*DomainGroup

	if h.Auth != nil {
		authGroup := NewDomainGroup("auth", "/auth")
		if loginLimiter != nil {
			authGroup.POST("/login", middleware.RateLimit(loginLimiter), h.Auth.Login)
		} else {
			authGroup.POST("/login", h.Auth.Login)
		}
		authGroup.POST("/logout", h.Auth.Logout)
		groups = append(groups, authGroup)
	}

	if h.Tile != nil {
		tiles := NewDomainGroup("tiles", "/tiles")
		tiles.POST("", h.Tile.Create)
		tiles.GET("", h.Tile.List)
		tiles.POST("/import", h.Tile.Import)
		tiles.GET("/by-size/:size", h.Tile.GetBySize)
		tiles.GET("/:id", h.Tile.GetByID)
		tiles.PUT("/:id", h.Tile.Update)
		tiles.DELETE("/:id", h.Tile.Delete)
		groups = append(groups, tiles)
	}

	if h.Customer != nil {
		customers := NewDomainGroup("customers", "/customers")
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.GetByID)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		groups = append(groups, customers)
	}

	if h.Invoice != nil {
		invoices := NewDomainGroup("invoices", "/invoices")
		invoices.POST("", h.Invoice.Create)
		invoices.GET("", h.Invoice.List)
		invoices.GET("/export.xlsx", h.Invoice.ExportRegister)
		invoices.GET("/:ref", h.Invoice.Get)
		invoices.PUT("/:ref", h.Invoice.Update)
		invoices.DELETE("/:ref", h.Invoice.Delete)
		invoices.GET("/:ref/pdf", h.Invoice.DownloadPDF)
		groups = append(groups, invoices)

		public := NewDomainGroup("public", "/public")
		public.GET("/invoices/:ref/pdf", h.Invoice.PublicPDF)
		groups = append(groups, public)
	}

	return groups
}
