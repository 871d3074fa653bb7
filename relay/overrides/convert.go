// Package overrides resolves per-model override directives from the
// LLM_PARAMS configuration string and applies them to outbound chat
// completion requests.
package overrides

import (
	"strconv"
	"strings"

	"github.com/Laisky/zap"

	"github.com/cotlabs/cot-proxy/common/logger"
)

type paramType int

const (
	paramTypeFloat paramType = iota
	paramTypeInt
	paramTypeBool
)

// paramTypes declares the semantic type of every known generation parameter.
// Values for keys outside this table are forwarded upstream as raw strings.
var paramTypes = map[string]paramType{
	// float parameters (0.0 to 1.0 typically)
	"temperature":        paramTypeFloat,
	"top_p":              paramTypeFloat,
	"presence_penalty":   paramTypeFloat,
	"frequency_penalty":  paramTypeFloat,
	"repetition_penalty": paramTypeFloat,

	// integer parameters
	"top_k":         paramTypeInt,
	"max_tokens":    paramTypeInt,
	"n":             paramTypeInt,
	"seed":          paramTypeInt,
	"num_ctx":       paramTypeInt,
	"num_predict":   paramTypeInt,
	"repeat_last_n": paramTypeInt,
	"batch_size":    paramTypeInt,

	// boolean parameters
	"echo":     paramTypeBool,
	"stream":   paramTypeBool,
	"mirostat": paramTypeBool,
}

// ConvertParamValue converts a raw override value to the declared type of its
// key. Empty values and the literal "null" (case-insensitive) become nil
// regardless of key, and unknown keys keep the raw string. Booleans are true
// only for "true" (case-insensitive); "1"/"yes" deliberately yield false.
// Numeric parse failures log a warning and keep the raw string so a bad
// override never fails a request.
func ConvertParamValue(key, value string) any {
	if value == "" || strings.EqualFold(value, "null") {
		return nil
	}

	pt, known := paramTypes[key]
	if !known {
		return value
	}

	switch pt {
	case paramTypeBool:
		return strings.EqualFold(value, "true")
	case paramTypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			logger.Logger.Warn("failed to convert override parameter to integer, keeping raw string",
				zap.String("key", key),
				zap.String("value", value))
			return value
		}
		return n
	default:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			logger.Logger.Warn("failed to convert override parameter to float, keeping raw string",
				zap.String("key", key),
				zap.String("value", value))
			return value
		}
		return f
	}
}
