package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/bookkeeping_engine/cmd/docs"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/config"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteDeps carries the optional cross-cutting pieces of the router.
// Nil fields switch the matching middleware or endpoint off.
type RouteDeps struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Limiter  *limiter.Limiter
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	RegisterValidators()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinMiddleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	setupAPIV1Routes(r, cfg, services, deps.Limiter)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	lim *limiter.Limiter,
) {
	handlers := []gin.HandlerFunc{}
	if lim != nil {
		handlers = append(handlers, middleware.RateLimit(lim))
	}
	handlers = append(handlers, middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	v1 := r.Group("/api/v1", handlers...)

	registerAccountRoutes(v1, service.Account)
	registerLedgerRoutes(v1, service.Reporting)
	registerFiscalYearRoutes(v1, service.FiscalYear)
	registerJournalRoutes(v1, service.Journal)
	registerReportingRoutes(v1, service.Reporting)
	registerAuditRoutes(v1, service.Audit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
