package overrides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cotlabs/cot-proxy/common/config"
)

func TestRewriteRequestMergesGenerationParams(t *testing.T) {
	body := map[string]any{
		"model":       "gpt-4",
		"temperature": 1.0,
		"messages":    []any{},
	}
	directives := map[string]any{
		"temperature": 0.5,
		"max_tokens":  100,
		"stop":        "###",
	}

	body, m := RewriteRequest(body, directives, config.OverrideSnapshot{})

	assert.Equal(t, 0.5, body["temperature"])
	assert.Equal(t, 100, body["max_tokens"])
	assert.Equal(t, "###", body["stop"])
	assert.Equal(t, "gpt-4", m.OriginModelName)
	assert.Equal(t, "gpt-4", m.ActualModelName)
}

func TestRewriteRequestUpstreamModelName(t *testing.T) {
	body := map[string]any{"model": "thinker"}
	directives := map[string]any{KeyUpstreamModelName: "qwq-32b"}

	body, m := RewriteRequest(body, directives, config.OverrideSnapshot{})

	assert.Equal(t, "qwq-32b", body["model"])
	assert.Equal(t, "thinker", m.OriginModelName)
	assert.Equal(t, "qwq-32b", m.ActualModelName)
	assert.NotContains(t, body, KeyUpstreamModelName)
}

func TestRewriteRequestControlKeysNeverForwarded(t *testing.T) {
	body := map[string]any{"model": "thinker"}
	directives := map[string]any{
		KeyThinkTagStart:           "<r>",
		KeyThinkTagEnd:             "</r>",
		KeyEnableThinkTagFiltering: true,
		KeyAppendToLastUserMessage: "suffix",
	}

	body, m := RewriteRequest(body, directives, config.OverrideSnapshot{})

	for _, key := range []string{KeyThinkTagStart, KeyThinkTagEnd, KeyEnableThinkTagFiltering, KeyAppendToLastUserMessage} {
		assert.NotContains(t, body, key)
	}
	assert.True(t, m.FilterEnabled)
	assert.Equal(t, "<r>", m.ThinkStartTag)
	assert.Equal(t, "</r>", m.ThinkEndTag)
}

func TestRewriteRequestTagPrecedence(t *testing.T) {
	t.Run("hardcoded defaults", func(t *testing.T) {
		_, m := RewriteRequest(map[string]any{}, nil, config.OverrideSnapshot{})
		assert.Equal(t, config.DefaultThinkStartTag, m.ThinkStartTag)
		assert.Equal(t, config.DefaultThinkEndTag, m.ThinkEndTag)
	})
	t.Run("environment tags beat hardcoded defaults", func(t *testing.T) {
		snap := config.OverrideSnapshot{ThinkStartTag: "<env>", ThinkEndTag: "</env>"}
		_, m := RewriteRequest(map[string]any{}, nil, snap)
		assert.Equal(t, "<env>", m.ThinkStartTag)
		assert.Equal(t, "</env>", m.ThinkEndTag)
	})
	t.Run("model directives beat environment tags", func(t *testing.T) {
		snap := config.OverrideSnapshot{ThinkStartTag: "<env>", ThinkEndTag: "</env>"}
		directives := map[string]any{KeyThinkTagStart: "<model>", KeyThinkTagEnd: "</model>"}
		_, m := RewriteRequest(map[string]any{}, directives, snap)
		assert.Equal(t, "<model>", m.ThinkStartTag)
		assert.Equal(t, "</model>", m.ThinkEndTag)
	})
}

func TestRewriteRequestStreamFlag(t *testing.T) {
	t.Run("from request body", func(t *testing.T) {
		_, m := RewriteRequest(map[string]any{"stream": true}, nil, config.OverrideSnapshot{})
		assert.True(t, m.IsStream)
	})
	t.Run("override forces streaming off", func(t *testing.T) {
		body := map[string]any{"stream": true}
		body, m := RewriteRequest(body, map[string]any{"stream": false}, config.OverrideSnapshot{})
		assert.False(t, m.IsStream)
		assert.Equal(t, false, body["stream"])
	})
}

func TestRewriteRequestNilBody(t *testing.T) {
	directives := map[string]any{KeyEnableThinkTagFiltering: true, "temperature": 0.5}
	body, m := RewriteRequest(nil, directives, config.OverrideSnapshot{})

	assert.Nil(t, body)
	assert.True(t, m.FilterEnabled)
	assert.Empty(t, m.OriginModelName)
}

func TestAppendToLastUserMessage(t *testing.T) {
	directives := map[string]any{KeyAppendToLastUserMessage: " /no_think"}

	t.Run("string content is concatenated", func(t *testing.T) {
		body := map[string]any{
			"messages": []any{
				map[string]any{"role": "user", "content": "hello"},
			},
		}
		body, _ = RewriteRequest(body, directives, config.OverrideSnapshot{})
		messages := body["messages"].([]any)
		last := messages[len(messages)-1].(map[string]any)
		assert.Equal(t, "hello /no_think", last["content"])
	})

	t.Run("empty conversation gains a user message", func(t *testing.T) {
		body := map[string]any{"messages": []any{}}
		body, _ = RewriteRequest(body, directives, config.OverrideSnapshot{})
		messages := body["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, map[string]any{"role": "user", "content": " /no_think"}, messages[0])
	})

	t.Run("assistant tail gains a new user message", func(t *testing.T) {
		body := map[string]any{
			"messages": []any{
				map[string]any{"role": "user", "content": "hello"},
				map[string]any{"role": "assistant", "content": "hi"},
			},
		}
		body, _ = RewriteRequest(body, directives, config.OverrideSnapshot{})
		messages := body["messages"].([]any)
		require.Len(t, messages, 3)
		last := messages[2].(map[string]any)
		assert.Equal(t, "user", last["role"])
		assert.Equal(t, " /no_think", last["content"])
	})

	t.Run("structured content appends to last text part", func(t *testing.T) {
		body := map[string]any{
			"messages": []any{
				map[string]any{"role": "user", "content": []any{
					map[string]any{"type": "text", "text": "describe this"},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": "https://example.com/a.png"}},
				}},
			},
		}
		body, _ = RewriteRequest(body, directives, config.OverrideSnapshot{})
		messages := body["messages"].([]any)
		content := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, content, 2)
		assert.Equal(t, "describe this /no_think", content[0].(map[string]any)["text"])
	})

	t.Run("structured content without text part gains one", func(t *testing.T) {
		body := map[string]any{
			"messages": []any{
				map[string]any{"role": "user", "content": []any{
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": "https://example.com/a.png"}},
				}},
			},
		}
		body, _ = RewriteRequest(body, directives, config.OverrideSnapshot{})
		messages := body["messages"].([]any)
		content := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, content, 2)
		assert.Equal(t, map[string]any{"type": "text", "text": " /no_think"}, content[1])
	})
}
