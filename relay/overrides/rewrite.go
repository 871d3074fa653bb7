package overrides

import (
	"github.com/Laisky/zap"

	"github.com/cotlabs/cot-proxy/common/config"
	"github.com/cotlabs/cot-proxy/common/logger"
	"github.com/cotlabs/cot-proxy/relay/meta"
)

// RewriteRequest applies a resolved directive set to a decoded request body
// and derives the per-request rendering context. Generation parameters and
// unrecognized directives are merged into the body verbatim, overwriting
// existing fields; control directives populate the context and are never
// forwarded. The body may be nil when the request carried no JSON payload;
// the context is still resolved so response filtering behaves consistently.
// Pure data transformation, no I/O.
func RewriteRequest(body map[string]any, directives map[string]any, snap config.OverrideSnapshot) (map[string]any, *meta.Meta) {
	m := &meta.Meta{
		ThinkStartTag: config.DefaultThinkStartTag,
		ThinkEndTag:   config.DefaultThinkEndTag,
	}
	if snap.ThinkStartTag != "" {
		m.ThinkStartTag = snap.ThinkStartTag
	}
	if snap.ThinkEndTag != "" {
		m.ThinkEndTag = snap.ThinkEndTag
	}

	if body != nil {
		if name, ok := body["model"].(string); ok {
			m.OriginModelName = name
			m.ActualModelName = name
		}
	}

	for key, value := range directives {
		switch key {
		case KeyUpstreamModelName:
			if name, ok := value.(string); ok && name != "" {
				m.ActualModelName = name
				if body != nil {
					body["model"] = name
				}
			}
		case KeyThinkTagStart:
			if tag, ok := value.(string); ok && tag != "" {
				m.ThinkStartTag = tag
			}
		case KeyThinkTagEnd:
			if tag, ok := value.(string); ok && tag != "" {
				m.ThinkEndTag = tag
			}
		case KeyEnableThinkTagFiltering:
			if enabled, ok := value.(bool); ok {
				m.FilterEnabled = enabled
			}
		case KeyAppendToLastUserMessage:
			if text, ok := value.(string); ok && text != "" && body != nil {
				appendToLastUserMessage(body, text)
			}
		default:
			if body != nil {
				body[key] = value
			}
		}
	}

	if body != nil {
		if stream, ok := body["stream"].(bool); ok {
			m.IsStream = stream
		}
	}

	modelLabel := m.OriginModelName
	if modelLabel == "" {
		modelLabel = DefaultModelName
	}
	logger.Logger.Debug("resolved think tags",
		zap.String("model", modelLabel),
		zap.String("start_tag", m.ThinkStartTag),
		zap.String("end_tag", m.ThinkEndTag),
		zap.Bool("filtering_enabled", m.FilterEnabled))

	return body, m
}

// appendToLastUserMessage concatenates text onto the conversation's trailing
// user message, creating one when the list is empty or ends with another
// role. Structured content appends to the last text-typed part.
func appendToLastUserMessage(body map[string]any, text string) {
	messages, _ := body["messages"].([]any)
	if len(messages) == 0 {
		body["messages"] = []any{newUserMessage(text)}
		return
	}

	last, ok := messages[len(messages)-1].(map[string]any)
	if !ok || last["role"] != "user" {
		body["messages"] = append(messages, newUserMessage(text))
		return
	}

	switch content := last["content"].(type) {
	case string:
		last["content"] = content + text
	case []any:
		for i := len(content) - 1; i >= 0; i-- {
			part, ok := content[i].(map[string]any)
			if !ok || part["type"] != "text" {
				continue
			}
			if existing, ok := part["text"].(string); ok {
				part["text"] = existing + text
			} else {
				part["text"] = text
			}
			return
		}
		last["content"] = append(content, map[string]any{"type": "text", "text": text})
	default:
		// null or unexpected content shape: replace outright
		last["content"] = text
	}
}

func newUserMessage(text string) map[string]any {
	return map[string]any{"role": "user", "content": text}
}
