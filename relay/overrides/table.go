package overrides

import (
	"strings"
)

// Control keys are consumed by the proxy itself and never forwarded upstream.
const (
	KeyThinkTagStart           = "think_tag_start"
	KeyThinkTagEnd             = "think_tag_end"
	KeyEnableThinkTagFiltering = "enable_think_tag_filtering"
	KeyUpstreamModelName       = "upstream_model_name"
	KeyAppendToLastUserMessage = "append_to_last_user_message"

	// DefaultModelName is the reserved table entry applied when the request
	// names no model.
	DefaultModelName = "default"
)

const modelFieldPrefix = "model="

// ParseModelOverrides parses the LLM_PARAMS configuration string into a table
// of model name -> typed override directives. Format:
//
//	model=NAME,key=value,key=value;model=NAME2,...
//
// Entries whose first field is not model= are discarded without aborting the
// rest of the string. The last entry for a duplicate model name wins.
// Re-parsing the same string always yields the same table; the table is
// rebuilt per request so configuration changes apply without a restart.
func ParseModelOverrides(cfg string) map[string]map[string]any {
	table := make(map[string]map[string]any)
	for _, entry := range strings.Split(cfg, ";") {
		entry = strings.TrimSpace(entry)
		if !strings.HasPrefix(entry, modelFieldPrefix) {
			continue
		}

		fields := strings.Split(entry, ",")
		modelName := strings.TrimSpace(fields[0][len(modelFieldPrefix):])
		directives := make(map[string]any)
		for _, field := range fields[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(field), "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)

			switch key {
			case KeyThinkTagStart, KeyThinkTagEnd, KeyUpstreamModelName, KeyAppendToLastUserMessage:
				// control strings stay raw, never type-converted
				directives[key] = value
			case KeyEnableThinkTagFiltering:
				directives[key] = strings.EqualFold(value, "true")
			default:
				directives[key] = ConvertParamValue(key, value)
			}
		}
		table[modelName] = directives
	}
	return table
}

// Resolve returns the directive set for a request. A model named in the
// request must match exactly; only a request without a model falls back to
// the reserved default entry. Nil means no overrides apply.
func Resolve(table map[string]map[string]any, modelName string) map[string]any {
	if modelName != "" {
		return table[modelName]
	}
	return table[DefaultModelName]
}
