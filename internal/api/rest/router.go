package rest

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hive-vision/internal/infrastructure/metrics"
)

// NewRouter собирает маршруты API
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.metrics, logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))
	router.MaxMultipartMemory = maxPhotoSize

	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/hives/classify", h.Classify)
		api.GET("/experiments", h.ListExperiments)
		api.GET("/experiments/:id", h.GetExperiment)
		api.GET("/health", h.Health)
	}

	return router
}

// requestLogger пишет каждый запрос в структурированный лог и метрики
func requestLogger(m *metrics.Metrics, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), elapsed)
		logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", elapsed,
		)
	}
}
