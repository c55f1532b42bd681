package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/handler"
	"github.com/noah-isme/dorm-adp-api/internal/middleware"
	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	"github.com/noah-isme/dorm-adp-api/pkg/config"
	"github.com/noah-isme/dorm-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dorm-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dorm-adp-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Buildings       *handler.BuildingHandler
	Rooms           *handler.RoomHandler
	Students        *handler.StudentHandler
	UtilityReadings *handler.UtilityReadingHandler
	Invoices        *handler.InvoiceHandler
	Payments        *handler.PaymentHandler
	Transfers       *handler.TransferHandler
	Vehicles        *handler.VehicleHandler
	Maintenance     *handler.MaintenanceHandler
	Dashboard       *handler.DashboardHandler
	Metrics         *handler.MetricsHandler
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// Options carries the runtime dependencies of the engine.
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *service.MetricsService
	Dashboard dashboardInvalidator
}

// New builds the gin engine with the global middleware chain and every route.
func New(opts Options, h Handlers) *gin.Engine {
	cfg := opts.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(middleware.JWTConfig{
		Secret:  cfg.JWT.Secret,
		Issuer:  cfg.JWT.Issuer,
		Enabled: cfg.JWT.Enabled,
	}))
	api.Use(middleware.ResourceID("id"))
	api.Use(invalidateDashboard(opts.Dashboard))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	admin := middleware.RequireRoles(models.RoleAdmin)

	api.GET("/dashboard/summary", staff, h.Dashboard.Summary)

	buildings := api.Group("/buildings")
	buildings.GET("", staff, h.Buildings.List)
	buildings.GET("/:id", staff, h.Buildings.Get)
	buildings.POST("", staff, h.Buildings.Create)
	buildings.PUT("/:id", staff, h.Buildings.Update)
	buildings.DELETE("/:id", admin, h.Buildings.Delete)

	rooms := api.Group("/rooms")
	rooms.GET("", staff, h.Rooms.List)
	rooms.GET("/:id", staff, h.Rooms.Get)
	rooms.POST("", staff, h.Rooms.Create)
	rooms.PUT("/:id", staff, h.Rooms.Update)
	rooms.DELETE("/:id", admin, h.Rooms.Delete)

	students := api.Group("/students")
	students.GET("", staff, h.Students.List)
	students.GET("/:id", staff, h.Students.Get)
	students.POST("", staff, h.Students.Create)
	students.PUT("/:id", staff, h.Students.Update)
	students.POST("/:id/assign-room", staff, h.Students.AssignRoom)
	students.POST("/:id/checkout", staff, h.Students.Checkout)
	students.DELETE("/:id", admin, h.Students.Delete)

	readings := api.Group("/utility-readings")
	readings.GET("", staff, h.UtilityReadings.List)
	readings.GET("/export", staff, h.UtilityReadings.Export)
	readings.GET("/:id", staff, h.UtilityReadings.Get)
	readings.GET("/:id/consumption", staff, h.UtilityReadings.Consumption)
	readings.POST("", staff, h.UtilityReadings.Create)
	readings.PUT("/:id", staff, h.UtilityReadings.Update)
	readings.DELETE("/:id", admin, h.UtilityReadings.Delete)

	invoices := api.Group("/invoices")
	invoices.GET("", staff, h.Invoices.List)
	invoices.GET("/export", staff, h.Invoices.Export)
	invoices.GET("/:id", staff, h.Invoices.Get)
	invoices.POST("", staff, h.Invoices.Create)
	invoices.PUT("/:id", staff, h.Invoices.Update)
	invoices.PATCH("/:id/status", staff, h.Invoices.UpdateStatus)
	invoices.DELETE("/:id", admin, h.Invoices.Delete)

	payments := api.Group("/payments")
	payments.GET("", staff, h.Payments.List)
	payments.GET("/:id", staff, h.Payments.Get)
	payments.POST("", staff, h.Payments.Create)
	payments.DELETE("/:id", admin, h.Payments.Delete)

	transfers := api.Group("/transfers")
	transfers.GET("", staff, h.Transfers.List)
	transfers.GET("/:id", staff, h.Transfers.Get)
	transfers.POST("", staff, h.Transfers.Create)
	transfers.PATCH("/:id/review", staff, h.Transfers.Review)
	transfers.DELETE("/:id", admin, h.Transfers.Delete)

	vehicles := api.Group("/vehicles")
	vehicles.GET("", staff, h.Vehicles.List)
	vehicles.GET("/parking-cards/:card/validate", staff, h.Vehicles.ValidateCard)
	vehicles.GET("/:id", staff, h.Vehicles.Get)
	vehicles.POST("", staff, h.Vehicles.Create)
	vehicles.PUT("/:id", staff, h.Vehicles.Update)
	vehicles.DELETE("/:id", admin, h.Vehicles.Delete)

	maintenance := api.Group("/maintenance")
	maintenance.GET("", staff, h.Maintenance.List)
	maintenance.GET("/:id", staff, h.Maintenance.Get)
	maintenance.POST("", staff, h.Maintenance.Create)
	maintenance.PUT("/:id", staff, h.Maintenance.Update)
	maintenance.PATCH("/:id/status", staff, h.Maintenance.UpdateStatus)
	maintenance.DELETE("/:id", admin, h.Maintenance.Delete)

	return r
}

// invalidateDashboard drops the cached summary after any successful write.
func invalidateDashboard(dashboard dashboardInvalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if dashboard == nil || c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusOK && status < http.StatusMultipleChoices {
			dashboard.Invalidate(c.Request.Context())
		}
	}
}
