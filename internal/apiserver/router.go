package apiserver

import (
	"github.com/amoylab/catalog/internal/apiserver/handler"
	"github.com/amoylab/catalog/internal/apiserver/middleware"
	"github.com/amoylab/catalog/internal/auth"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/amoylab/catalog/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Options carries everything the router needs
type Options struct {
	Logger      *zap.Logger
	Service     *catalog.Service
	Tokens      *auth.Tokens
	Metrics     *metrics.Metrics // nil disables the middleware and the endpoint
	MetricsPath string
	Tracing     bool
}

// NewRouter builds the gin engine with every API route registered
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	errorHandler := errorx.NewErrorHandler(logger.Named("http"))

	r := gin.New()
	r.Use(errorHandler.RecoveryMiddleware())
	// metrics and tracing wrap the error middleware so they see the rendered status
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	if opts.Tracing {
		r.Use(otelgin.Middleware(cnst.AppName))
	}
	r.Use(errorHandler.ErrorMiddleware())
	r.Use(middleware.Lang())

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	authHandler := handler.NewAuth(opts.Service, opts.Tokens, logger)
	userHandler := handler.NewUser(opts.Service, opts.Tokens)
	productHandler := handler.NewProduct(opts.Service)
	chatHandler := handler.NewChat(opts.Service)

	api := r.Group("/api")
	api.Use(middleware.Authenticate(opts.Tokens, opts.Service))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.HandleRegister)
		authGroup.POST("/login", authHandler.HandleLogin)
		authGroup.POST("/refresh", authHandler.HandleRefresh)
		authGroup.POST("/logout", authHandler.HandleLogout)
	}

	protected := authGroup.Group("")
	protected.Use(middleware.RequireActor())
	{
		protected.GET("/me", authHandler.HandleMe)
		protected.GET("/roles", authHandler.HandleRoles)
		protected.PUT("/business", userHandler.HandleRenameBusiness)

		protected.GET("/users", userHandler.HandleList)
		protected.POST("/users", userHandler.HandleCreate)
		protected.GET("/users/:id", userHandler.HandleGet)
		protected.PUT("/users/:id", userHandler.HandleUpdate)
		protected.DELETE("/users/:id", userHandler.HandleDelete)
	}

	// Anonymous callers may read the public catalog; everything else
	// requires an actor and is checked again by the service.
	products := api.Group("/products")
	{
		products.GET("", productHandler.HandleListPublic)
		products.GET("/internal", middleware.RequireActor(), productHandler.HandleListInternal)
		products.POST("", middleware.RequireActor(), productHandler.HandleCreate)
		products.GET("/:id", productHandler.HandleRetrieve)
		products.PUT("/:id", middleware.RequireActor(), productHandler.HandleUpdate)
		products.PATCH("/:id", middleware.RequireActor(), productHandler.HandlePatch)
		products.DELETE("/:id", middleware.RequireActor(), productHandler.HandleDelete)
		products.POST("/:id/approve", middleware.RequireActor(), productHandler.HandleApprove)
	}

	chat := api.Group("/chat")
	chat.Use(middleware.RequireActor())
	{
		chat.POST("/history", chatHandler.HandleRecord)
		chat.GET("/history", chatHandler.HandleHistory)
	}

	r.NoRoute(errorHandler.NoRoute())
	return r
}
