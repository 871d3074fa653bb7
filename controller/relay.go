package controller

import (
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/cotlabs/cot-proxy/common/ctxkey"
	"github.com/cotlabs/cot-proxy/common/helper"
	"github.com/cotlabs/cot-proxy/monitor"
	rcontroller "github.com/cotlabs/cot-proxy/relay/controller"
	"github.com/cotlabs/cot-proxy/relay/meta"
)

// Relay proxies any request to the upstream API, rewriting chat completion
// bodies from the per-model override configuration and filtering reasoning
// spans out of the response.
func Relay(c *gin.Context) {
	lg := gmw.GetLogger(c)
	startTime := time.Now()

	lg.Debug("incoming relay request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("content_type", c.GetHeader("Content-Type")),
		zap.Int64("content_length", c.Request.ContentLength),
		zap.String("request_id", c.GetString(ctxkey.RequestId)))

	bizErr := rcontroller.RelayProxyHelper(c)

	relayMeta := meta.GetByContext(c)
	isStream := relayMeta != nil && relayMeta.IsStream
	statusCode := c.Writer.Status()
	if bizErr != nil {
		statusCode = bizErr.StatusCode
	}
	monitor.RecordRelayRequest(c.Request.Method, statusCode, isStream, time.Since(startTime).Seconds())

	if bizErr == nil {
		lg.Debug("relay request completed",
			zap.Int("status_code", statusCode),
			zap.Int64("elapsed_ms", helper.CalcElapsedTime(startTime)))
		return
	}

	// raw error is for logs only, never for the wire
	bizErr.Error.RawError = nil
	c.JSON(bizErr.StatusCode, gin.H{
		"error": bizErr.Error,
	})
}
