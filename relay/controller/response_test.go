package controller

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cotlabs/cot-proxy/common/logger"
)

func TestStripTagSpans(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		startTag string
		endTag   string
		want     string
	}{
		{"single span", "A<think>x</think>B", "<think>", "</think>", "AB"},
		{"multiple spans", "A<think>1</think>B<think>2</think>C", "<think>", "</think>", "ABC"},
		{"span across newlines", "A<think>line1\nline2\n</think>B", "<think>", "</think>", "AB"},
		{"unterminated span kept", "A<think>never closed", "<think>", "</think>", "A<think>never closed"},
		{"no spans", "plain text", "<think>", "</think>", "plain text"},
		{"custom tags", "A[[R]]x[[/R]]B", "[[R]]", "[[/R]]", "AB"},
		{"regex metacharacters in tags", "A(r?)x(/r?)B", "(r?)", "(/r?)", "AB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTagSpans(tt.text, tt.startTag, tt.endTag))
		})
	}
}

func TestAugmentModelList(t *testing.T) {
	upstream := `{"object":"list","data":[{"id":"gpt-4","object":"model","created":1,"owned_by":"openai"}]}`

	out := AugmentModelList(logger.Logger, []byte(upstream), []string{"default", "thinker"})

	var listing struct {
		Object string `json:"object"`
		Data   []struct {
			Id      string `json:"id"`
			Object  string `json:"object"`
			OwnedBy string `json:"owned_by"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &listing))
	require.Len(t, listing.Data, 3)
	assert.Equal(t, "gpt-4", listing.Data[0].Id)
	assert.Equal(t, "default", listing.Data[1].Id)
	assert.Equal(t, "thinker", listing.Data[2].Id)
	for _, m := range listing.Data[1:] {
		assert.Equal(t, "model", m.Object)
		assert.Equal(t, PseudoModelOwner, m.OwnedBy)
	}
}

func TestAugmentModelListNoConfiguredModels(t *testing.T) {
	body := []byte(`{"object":"list","data":[]}`)
	assert.Equal(t, body, AugmentModelList(logger.Logger, body, nil))
}

func TestAugmentModelListMalformedUpstream(t *testing.T) {
	body := []byte(`not json at all`)
	assert.Equal(t, body, AugmentModelList(logger.Logger, body, []string{"a"}))
}
