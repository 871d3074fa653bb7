package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/cotlabs/cot-proxy/common"
	"github.com/cotlabs/cot-proxy/common/client"
	"github.com/cotlabs/cot-proxy/common/config"
	"github.com/cotlabs/cot-proxy/relay/meta"
	relaymodel "github.com/cotlabs/cot-proxy/relay/model"
	"github.com/cotlabs/cot-proxy/relay/overrides"
	"github.com/cotlabs/cot-proxy/relay/streaming"
)

// streamReadChunkSize is the upstream read granularity while streaming.
const streamReadChunkSize = 8192

// hop-by-hop headers that must not be forwarded in either direction.
var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// RelayProxyHelper forwards the inbound request to the configured upstream,
// applying per-model overrides on the way out and reasoning-tag filtering on
// the way back. The override table is rebuilt from a fresh configuration
// snapshot for every request.
func RelayProxyHelper(c *gin.Context) *relaymodel.ErrorWithStatusCode {
	lg := gmw.GetLogger(c)

	snap := config.SnapshotOverrides()
	table := overrides.ParseModelOverrides(snap.LLMParams)

	rawBody, err := common.GetRequestBody(c)
	if err != nil {
		return ErrorWrapper(err, "read_request_body_failed", http.StatusBadRequest)
	}

	var payload map[string]any
	if len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			// non-JSON bodies pass through unrewritten
			payload = nil
		}
	}

	modelName, _ := payload["model"].(string)
	directives := overrides.Resolve(table, modelName)
	payload, m := overrides.RewriteRequest(payload, directives, snap)
	m.Set2Context(c)

	outBody := rawBody
	if payload != nil {
		if outBody, err = json.Marshal(payload); err != nil {
			return ErrorWrapper(err, "marshal_rewritten_body_failed", http.StatusInternalServerError)
		}
	}

	req, err := http.NewRequestWithContext(gmw.Ctx(c), c.Request.Method, buildTargetURL(c), bytes.NewReader(outBody))
	if err != nil {
		return ErrorWrapper(err, "build_upstream_request_failed", http.StatusInternalServerError)
	}
	copyRequestHeaders(c.Request.Header, req.Header)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	lg.Debug("forwarding request to upstream",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("origin_model", m.OriginModelName),
		zap.String("actual_model", m.ActualModelName),
		zap.Bool("stream", m.IsStream))

	resp, err := client.HTTPClient.Do(req)
	if err != nil {
		return wrapUpstreamError(lg, err)
	}
	// released on every exit path: completion, error, and cancellation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return relayErrorResponse(c, lg, resp)
	}

	if !m.IsStream && isModelListRequest(c.Request) {
		return relayModelList(c, lg, resp, table)
	}

	if m.IsStream {
		relayStreamed(c, lg, resp, m)
		return nil
	}
	return relayBuffered(c, lg, resp, m)
}

// relayErrorResponse returns an upstream error body to the client verbatim.
// Error payloads are never filtered so they stay machine-readable.
func relayErrorResponse(c *gin.Context, lg glog.Logger, resp *http.Response) *relaymodel.ErrorWithStatusCode {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorWrapper(err, "read_upstream_error_failed", http.StatusBadGateway)
	}
	lg.Error("upstream returned error response",
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("response_body", body))
	copyResponseHeaders(resp.Header, c.Writer.Header())
	c.Data(resp.StatusCode, contentType(resp), body)
	return nil
}

// relayModelList augments a non-streamed model-listing response with one
// pseudo model per name declared in the override configuration.
func relayModelList(c *gin.Context, lg glog.Logger, resp *http.Response, table map[string]map[string]any) *relaymodel.ErrorWithStatusCode {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorWrapper(err, "read_upstream_body_failed", http.StatusInternalServerError)
	}
	body = AugmentModelList(lg, body, sortedModelNames(table))
	copyResponseHeaders(resp.Header, c.Writer.Header())
	c.Data(resp.StatusCode, contentType(resp), body)
	return nil
}

// relayBuffered reads the whole upstream body and removes reasoning spans in
// a single pass when filtering is enabled for the active model.
func relayBuffered(c *gin.Context, lg glog.Logger, resp *http.Response, m *meta.Meta) *relaymodel.ErrorWithStatusCode {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorWrapper(err, "read_upstream_body_failed", http.StatusInternalServerError)
	}
	if m.FilterEnabled {
		body = []byte(StripTagSpans(string(body), m.ThinkStartTag, m.ThinkEndTag))
		lg.Debug("filtered buffered response",
			zap.Int("filtered_len", len(body)))
	}
	copyResponseHeaders(resp.Header, c.Writer.Header())
	c.Data(resp.StatusCode, contentType(resp), body)
	return nil
}

// relayStreamed forwards the upstream stream chunk by chunk through a fresh
// tag filter. Once headers are written, failures terminate the stream and are
// logged; a client disconnect is logged once at info level and is not an
// application error. The deferred body close in the caller guarantees the
// upstream connection is released on every path.
func relayStreamed(c *gin.Context, lg glog.Logger, resp *http.Response, m *meta.Meta) {
	copyResponseHeaders(resp.Header, c.Writer.Header())
	c.Status(resp.StatusCode)

	var filter *streaming.TagFilter
	if m.FilterEnabled {
		filter = streaming.NewTagFilter(m.ThinkStartTag, m.ThinkEndTag)
	}

	buf := make([]byte, streamReadChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			out := buf[:n]
			if filter != nil {
				out = filter.Feed(buf[:n])
			}
			if len(out) > 0 {
				if _, writeErr := c.Writer.Write(out); writeErr != nil {
					lg.Info("client disconnected during streaming", zap.Error(writeErr))
					return
				}
				c.Writer.Flush()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if c.Request.Context().Err() != nil {
				// cancellation, not an application error
				lg.Info("client disconnected during streaming", zap.Error(readErr))
			} else {
				lg.Error("reading upstream stream failed", zap.Error(readErr))
			}
			return
		}
	}

	if filter != nil {
		if tail := filter.Flush(); len(tail) > 0 {
			if _, writeErr := c.Writer.Write(tail); writeErr != nil {
				lg.Info("client disconnected during streaming", zap.Error(writeErr))
				return
			}
		}
	}
	c.Writer.Flush()
}

// buildTargetURL resolves the client's path and query under TargetBaseURL.
func buildTargetURL(c *gin.Context) string {
	target := config.TargetBaseURL + strings.TrimPrefix(c.Request.URL.Path, "/")
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	return target
}

func copyRequestHeaders(src, dst http.Header) {
	for key, values := range src {
		switch {
		case hopByHopHeaders[http.CanonicalHeaderKey(key)]:
		case http.CanonicalHeaderKey(key) == "Host":
		case http.CanonicalHeaderKey(key) == "Content-Length":
			// recomputed from the rewritten body
		case http.CanonicalHeaderKey(key) == "Accept-Encoding":
			// let the transport negotiate so filtered bodies arrive decoded
		default:
			dst[http.CanonicalHeaderKey(key)] = values
		}
	}
}

func copyResponseHeaders(src, dst http.Header) {
	for key, values := range src {
		canonical := http.CanonicalHeaderKey(key)
		if hopByHopHeaders[canonical] || canonical == "Content-Length" {
			// body length changes after filtering; transport recomputes
			continue
		}
		dst[canonical] = values
	}
}

func contentType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	return ct
}

// isModelListRequest reports whether the request targets a model-listing
// endpoint such as /v1/models.
func isModelListRequest(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/models")
}

func sortedModelNames(table map[string]map[string]any) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
