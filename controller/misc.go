package controller

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/cotlabs/cot-proxy/common/client"
	"github.com/cotlabs/cot-proxy/common/config"
)

// Health probes the upstream base URL and reports whether it is reachable.
func Health(c *gin.Context) {
	lg := gmw.GetLogger(c)

	req, err := http.NewRequestWithContext(gmw.Ctx(c), http.MethodGet, config.TargetBaseURL, nil)
	if err != nil {
		lg.Error("health check failed to build probe", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	resp, err := client.ImpatientHTTPClient.Do(req)
	if err != nil {
		lg.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	lg.Debug("health check succeeded",
		zap.String("target_url", config.TargetBaseURL),
		zap.Int("status_code", resp.StatusCode))
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"target_url": config.TargetBaseURL,
	})
}
