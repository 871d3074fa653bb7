package controller

import (
	"encoding/json"
	"regexp"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/cotlabs/cot-proxy/common/helper"
	relaymodel "github.com/cotlabs/cot-proxy/relay/model"
)

// PseudoModelOwner labels synthetic model descriptors injected into listing
// responses.
const PseudoModelOwner = "cot-proxy"

// StripTagSpans removes every startTag..endTag span from text in a single
// non-greedy, multi-line pass. Used for buffered (non-streamed) responses
// where the whole body is available at once.
func StripTagSpans(text, startTag, endTag string) string {
	pattern := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(startTag) + `.*?` + regexp.QuoteMeta(endTag))
	return pattern.ReplaceAllString(text, "")
}

// AugmentModelList appends one synthetic model descriptor per configured
// model name to a model-listing response body. Malformed upstream JSON is
// logged and passed through unmodified rather than failing the request.
func AugmentModelList(lg glog.Logger, body []byte, modelNames []string) []byte {
	if len(modelNames) == 0 {
		return body
	}

	var listing map[string]any
	if err := json.Unmarshal(body, &listing); err != nil {
		lg.Warn("failed to parse upstream model listing, passing through unmodified",
			zap.Error(err))
		return body
	}

	data, _ := listing["data"].([]any)
	created := helper.GetTimestamp()
	for _, name := range modelNames {
		data = append(data, relaymodel.OpenAIModel{
			Id:      name,
			Object:  "model",
			Created: created,
			OwnedBy: PseudoModelOwner,
		})
	}
	listing["data"] = data

	augmented, err := json.Marshal(listing)
	if err != nil {
		lg.Warn("failed to serialize augmented model listing, passing through unmodified",
			zap.Error(err))
		return body
	}
	return augmented
}
