package http

import (
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/http/handlers"
	"github.com/geocoder89/catalogadmin/internal/http/middlewares"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	apiPrefix    = "/api/v1/admin"
	maxBodyBytes = 1 << 20
)

// AuthService serves the auth endpoints and resolves bearer tokens.
type AuthService interface {
	handlers.AuthService
	middlewares.Authenticator
}

type Deps struct {
	Env                string
	ServiceName        string
	CORSAllowedOrigins []string

	// AuthRateLimit caps register and login calls per client IP per minute.
	AuthRateLimit int

	Auth       AuthService
	Gate       middlewares.Authorizer
	Products   handlers.ProductService
	Categories handlers.CategoryService
	Dashboard  handlers.DashboardService
	Users      handlers.UserAdminService
	Jobs       handlers.AdminJobsRepo

	// Ready is checked by /readyz; nil entries are skipped.
	Ready map[string]handlers.Pinger

	// Prom and Gatherer are optional; /metrics is only mounted when both are set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.ServiceName == "" {
		d.ServiceName = "catalog-api"
	}
	if d.AuthRateLimit <= 0 {
		d.AuthRateLimit = 20
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(d.ServiceName))
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	if d.Prom != nil && d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	health := handlers.NewHealthHandler(d.Ready)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	authLimiter := middlewares.NewRateLimiter(d.AuthRateLimit, time.Minute)
	// the low-stock trigger writes a job row per call
	triggerLimiter := middlewares.NewRateLimiter(10, time.Minute)

	am := middlewares.NewAuthMiddleware(d.Auth, d.Gate)

	authH := handlers.NewAuthHandler(d.Auth)
	productsH := handlers.NewProductsHandler(d.Products)
	categoriesH := handlers.NewCategoriesHandler(d.Categories)
	dashboardH := handlers.NewDashboardHandler(d.Dashboard)
	adminH := handlers.NewAdminHandler(d.Users, d.Jobs)

	api := r.Group(apiPrefix)

	api.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authH.Register)
	api.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authH.Login)

	authed := api.Group("")
	authed.Use(am.RequireAuth())
	{
		authed.POST("/logout", authH.Logout)
		authed.GET("/dashboard", dashboardH.Summary)
		authed.GET("/test-low-stock", triggerLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP), dashboardH.TestLowStock)
	}

	catalog := authed.Group("")
	catalog.Use(am.RequireAnyRole(user.CatalogManagers...))
	{
		catalog.GET("/products", productsH.List)
		catalog.POST("/products", productsH.Create)
		catalog.GET("/products/:id", productsH.Show)
		catalog.PUT("/products/:id", productsH.Update)
		catalog.PATCH("/products/:id", productsH.Update)
		catalog.DELETE("/products/:id", productsH.Delete)

		catalog.GET("/categories", categoriesH.List)
		catalog.POST("/categories", categoriesH.Create)
	}

	admin := authed.Group("/admin")
	admin.Use(am.RequireAnyRole(user.RoleSuperAdmin))
	{
		admin.POST("/users/:id/roles", adminH.AssignRole)
		admin.GET("/jobs", adminH.ListJobs)
		admin.POST("/jobs/:id/retry", adminH.RetryJob)
	}

	return r
}
