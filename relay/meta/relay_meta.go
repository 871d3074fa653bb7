package meta

import (
	"github.com/gin-gonic/gin"

	"github.com/cotlabs/cot-proxy/common/ctxkey"
)

// Meta is the immutable per-request rendering context derived from the
// override configuration. It is built once, after override resolution, and
// threaded through the response pipeline by parameter instead of being read
// from mutable globals.
type Meta struct {
	// OriginModelName is the model name from the raw user request; used for
	// override lookup and logging only.
	OriginModelName string
	// ActualModelName is the model name sent upstream, after any
	// upstream_model_name renaming.
	ActualModelName string
	IsStream        bool

	// FilterEnabled reports whether reasoning spans are removed from the
	// upstream response for this request.
	FilterEnabled bool
	// ThinkStartTag / ThinkEndTag delimit the spans to remove. Resolution
	// order: model directive, global env tag, hardcoded default.
	ThinkStartTag string
	ThinkEndTag   string
}

// Set2Context stores the meta on the gin context for later stages.
func (m *Meta) Set2Context(c *gin.Context) {
	c.Set(ctxkey.Meta, m)
}

// GetByContext returns the meta stored on the gin context, or nil if the
// request never went through override resolution.
func GetByContext(c *gin.Context) *Meta {
	if v, ok := c.Get(ctxkey.Meta); ok {
		if m, ok := v.(*Meta); ok {
			return m
		}
	}
	return nil
}
