package overrides

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertParamValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{"float param", "temperature", "0.7", 0.7},
		{"float param integral value", "top_p", "1", 1.0},
		{"int param", "max_tokens", "2048", 2048},
		{"int param negative", "seed", "-1", -1},
		{"bool param true", "echo", "true", true},
		{"bool param true mixed case", "stream", "True", true},
		{"bool param false", "mirostat", "false", false},
		{"bool param rejects yes", "echo", "yes", false},
		{"bool param rejects 1", "stream", "1", false},
		{"empty value", "temperature", "", nil},
		{"null value", "max_tokens", "null", nil},
		{"null value mixed case", "top_k", "NULL", nil},
		{"unknown key stays string", "stop", "###", "###"},
		{"unknown key numeric stays string", "custom_level", "3", "3"},
		{"bad int keeps raw string", "max_tokens", "lots", "lots"},
		{"bad float keeps raw string", "temperature", "warm", "warm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertParamValue(tt.key, tt.value))
		})
	}
}
