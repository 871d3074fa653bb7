package config

import (
	"strings"

	"github.com/cotlabs/cot-proxy/common/env"
)

const (
	// DefaultThinkStartTag and DefaultThinkEndTag are the hardcoded tag pair
	// used when neither LLM_PARAMS nor the global env tags specify one.
	DefaultThinkStartTag = "<think>"
	DefaultThinkEndTag   = "</think>"
)

var (
	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// TargetBaseURL is the upstream OpenAI-compatible API base the proxy forwards to.
	// A trailing slash is enforced so client request paths resolve under it.
	TargetBaseURL = func() string {
		u := env.String("TARGET_BASE_URL", "https://api.openai.com/v1/")
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		return u
	}()

	// RelayTimeout bounds upstream HTTP requests (seconds) before aborting them.
	RelayTimeout = env.Int("API_REQUEST_TIMEOUT", 120)
	// HealthCheckTimeout bounds the upstream probe issued by /health (seconds).
	HealthCheckTimeout = env.Int("HEALTH_CHECK_TIMEOUT", 5)

	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)
)

// OverrideSnapshot is the per-request view of the mutable proxy configuration.
// It is re-read from the environment on every request so LLM_PARAMS and the
// global think tags can change without a restart, and so tests can inject
// configuration without touching the process environment.
type OverrideSnapshot struct {
	// LLMParams is the raw model override configuration string:
	// "model=NAME,key=value,...;model=NAME2,...".
	LLMParams string
	// ThinkStartTag and ThinkEndTag are the global tag defaults from
	// THINK_TAG / THINK_END_TAG. Empty when unset; per-model directives take
	// precedence over them, and the hardcoded defaults apply when both layers
	// are empty.
	ThinkStartTag string
	ThinkEndTag   string
}

// SnapshotOverrides captures the mutable configuration for a single request.
func SnapshotOverrides() OverrideSnapshot {
	return OverrideSnapshot{
		LLMParams:     env.String("LLM_PARAMS", ""),
		ThinkStartTag: env.String("THINK_TAG", ""),
		ThinkEndTag:   env.String("THINK_END_TAG", ""),
	}
}
