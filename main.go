package main

import (
	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cotlabs/cot-proxy/common/client"
	"github.com/cotlabs/cot-proxy/common/config"
	"github.com/cotlabs/cot-proxy/common/logger"
	"github.com/cotlabs/cot-proxy/middleware"
	"github.com/cotlabs/cot-proxy/router"
)

func main() {
	logger.Logger.Info("cot-proxy started",
		zap.String("target_base_url", config.TargetBaseURL),
		zap.Int("relay_timeout", config.RelayTimeout))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	client.Init()

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	// This will cause SSE not to work!!!
	//server.Use(gzip.Gzip(gzip.DefaultCompression))
	server.Use(middleware.RequestId())
	server.Use(middleware.CORS())

	if config.EnablePrometheusMetrics {
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Logger.Info("Prometheus metrics endpoint available at /metrics")
	}

	router.SetRouter(server)

	port := config.ServerPort
	if port == "" {
		port = "3000"
	}
	logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
	if err := server.Run(":" + port); err != nil {
		logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
