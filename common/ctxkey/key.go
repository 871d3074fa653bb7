package ctxkey

const (
	// RequestId is a per-request unique identifier, also echoed as a header.
	// Set in: middleware.RequestId. Read in: error responses and logs.
	RequestId = "X-Request-Id"

	// RequestBody caches the raw inbound body so it can be read more than
	// once (model lookup, rewriting, logging).
	// Set/read in: common.GetRequestBody.
	RequestBody = "request_body"

	// Meta holds the per-request *meta.Meta rendering context.
	// Set in: relay/controller after override resolution. Read in: response
	// filtering and metrics labeling.
	Meta = "meta"
)
