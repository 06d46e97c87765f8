package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/fieldmap/internal/metrics"
	"go.ngs.io/fieldmap/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(plotUC *usecase.PlotUseCase, log logrus.FieldLogger, rec *metrics.Recorder) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(log))

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Default to allow all origins if CORS_ALLOWED_ORIGINS is not set.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddExposeHeaders(RequestIDHeader)

	router.Use(cors.New(corsConfig))

	handler := NewHandler(plotUC, log)

	v1 := router.Group("/v1")

	// Dataset description.
	v1.GET("/variables", handler.ListVariables)
	v1.GET("/variables/:name/dimensions", handler.GetDimensions)

	// Frames and figures.
	v1.POST("/frames", handler.BuildFrame)
	v1.POST("/renders", handler.Render)
	v1.POST("/probes", handler.Probe)

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(rec.Handler()))

	return router
}
