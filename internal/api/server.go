package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"catalogsync/internal/api/handlers"
	"catalogsync/internal/api/middleware"
	"catalogsync/internal/config"
	"catalogsync/internal/database"
	"catalogsync/internal/logger"
	"catalogsync/internal/recon"
	"catalogsync/internal/syncer"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, store *database.Store, engine *recon.Engine, s *syncer.Syncer) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(store, logger)
	connectorHandler := handlers.NewConnectorHandler(db.DB, logger, s)
	mappingHandler := handlers.NewMappingHandler(engine, logger)
	webhookHandler := handlers.NewWebhookHandler(s, logger)
	oauthHandler := handlers.NewOAuthHandler(db.DB, logger, cfg)

	// Inbound callbacks authenticate with their own signatures, never with
	// the admin token.
	router.POST("/webhooks/:source/:id", webhookHandler.Receive)

	// Routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTSecret))
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		// Connectors
		connectors := v1.Group("/connectors")
		{
			connectors.GET("", connectorHandler.List)
			connectors.GET("/:id", connectorHandler.Get)
			connectors.POST("", connectorHandler.Create)
			connectors.PUT("/:id", connectorHandler.Update)
			connectors.DELETE("/:id", connectorHandler.Delete)
			connectors.POST("/:id/sync", connectorHandler.Sync)
			connectors.POST("/:id/test", connectorHandler.Test)
		}

		// SKU mappings
		mappings := v1.Group("/mappings")
		{
			mappings.GET("", mappingHandler.List)
			mappings.POST("", mappingHandler.Create)
			mappings.DELETE("/:supplier_sku", mappingHandler.Delete)
			mappings.POST("/bulk", mappingHandler.Bulk)
			mappings.GET("/report", mappingHandler.Report)
		}

		// Shopify OAuth
		shopify := v1.Group("/shopify")
		{
			shopify.POST("/install", oauthHandler.ShopifyInstall)
			shopify.GET("/callback", oauthHandler.ShopifyCallback)
		}

		// Nuvemshop OAuth
		nuvemshop := v1.Group("/nuvemshop")
		{
			nuvemshop.GET("/install", oauthHandler.NuvemshopInstall)
			nuvemshop.GET("/callback", oauthHandler.NuvemshopCallback)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin router for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
