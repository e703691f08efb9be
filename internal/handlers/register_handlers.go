package handlers

import (
	"fmt"

	"github.com/SscSPs/budget_request_app/cmd/docs"
	portssvc "github.com/SscSPs/budget_request_app/internal/core/ports/services"
	"github.com/SscSPs/budget_request_app/internal/middleware"
	"github.com/SscSPs/budget_request_app/internal/platform/config"
	"github.com/SscSPs/budget_request_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
)

// Infrastructure carries the non-service collaborators the routes need.
type Infrastructure struct {
	DB      Pinger
	Metrics *metrics.Metrics
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	infra Infrastructure,
) error {
	r.GET("/health", getHealth(infra.DB))

	if infra.Metrics != nil {
		r.GET("/metrics", gin.WrapH(infra.Metrics.Handler()))
	}

	if err := setupAPIV1Routes(r, cfg, services); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	var exportLimit gin.HandlerFunc
	if cfg.ExportRateLimit != "" {
		lim, err := middleware.NewMemoryLimiter(cfg.ExportRateLimit)
		if err != nil {
			return fmt.Errorf("invalid EXPORT_RATE_LIMIT %q: %w", cfg.ExportRateLimit, err)
		}
		exportLimit = limitergin.NewMiddleware(lim)
	}

	RegisterBudgetRequestRoutes(v1, services.BudgetRequest, exportLimit)
	return nil
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
