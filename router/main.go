package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cotlabs/cot-proxy/controller"
	"github.com/cotlabs/cot-proxy/middleware"
)

// SetRouter wires the health probe and the catch-all relay route. Everything
// that is not a local endpoint is forwarded to the upstream API verbatim,
// whatever the method or path.
func SetRouter(server *gin.Engine) {
	server.GET("/health", controller.Health)

	server.NoRoute(middleware.RelayPanicRecover(), controller.Relay)
}
