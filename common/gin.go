package common

import (
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/cotlabs/cot-proxy/common/ctxkey"
)

// GetRequestBody reads the inbound request body once and caches it on the gin
// context so later stages (model lookup, rewriting, logging) can re-read it.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	if cached, ok := c.Get(ctxkey.RequestBody); ok {
		return cached.([]byte), nil
	}
	requestBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body failed")
	}
	_ = c.Request.Body.Close()
	c.Set(ctxkey.RequestBody, requestBody)
	return requestBody, nil
}
