package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/medicineapp/pkg/config"
	"github.com/example/medicineapp/pkg/repository"
	"github.com/example/medicineapp/pkg/service"
	"github.com/example/medicineapp/pkg/stock"
)

// Server is the HTTP surface: order lifecycle endpoints, the herb-stock
// endpoints and a health probe.
type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	orders *service.OrderService
	stock  *stock.Store
	dbPing func(ctx context.Context) error
}

func NewServer(cfg *config.Config, logger *zap.Logger, orders *service.OrderService, stockStore *stock.Store, dbPing func(ctx context.Context) error) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	s := &Server{
		config: cfg,
		logger: logger,
		router: router,
		orders: orders,
		stock:  stockStore,
		dbPing: dbPing,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.health)

		orders := api.Group("/orders")
		{
			orders.POST("/draft", s.createDraft)
			orders.GET("/:id", s.getOrder)
			orders.POST("/:id/confirm", s.confirmOrder)
			orders.GET("", s.listOrders)
		}

		stockGroup := api.Group("/stock")
		{
			stockGroup.GET("", s.getStock)
			stockGroup.PUT("", s.saveStock)
			stockGroup.POST("/seed", s.seedStock)
		}
	}
}

// Addr is the listen address from config.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

func (s *Server) health(c *gin.Context) {
	if err := s.dbPing(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "db": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "db": true})
}

// mapErrorToStatus turns domain errors into HTTP statuses. Anything
// unrecognized is an internal error.
func mapErrorToStatus(err error) int {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrNotDraft):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
