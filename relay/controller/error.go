// Package controller implements the relay pipeline between the inbound
// request and the upstream OpenAI-compatible API.
package controller

import (
	"context"
	"crypto/tls"
	"net/url"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/cotlabs/cot-proxy/monitor"
	relaymodel "github.com/cotlabs/cot-proxy/relay/model"
)

// ErrorWrapper creates an OpenAI-compatible error response body
func ErrorWrapper(err error, code string, statusCode int) *relaymodel.ErrorWithStatusCode {
	return &relaymodel.ErrorWithStatusCode{
		Error: relaymodel.Error{
			Message:  err.Error(),
			Type:     "cot_proxy_error",
			Code:     code,
			RawError: err,
		},
		StatusCode: statusCode,
	}
}

// wrapUpstreamError classifies a failed upstream round trip into the error
// taxonomy surfaced to clients: timeouts map to 504, TLS verification and
// connection failures to 502.
func wrapUpstreamError(lg glog.Logger, err error) *relaymodel.ErrorWithStatusCode {
	var cause string
	var code string
	statusCode := 502

	var urlErr *url.Error
	var certErr *tls.CertificateVerificationError
	switch {
	case errors.As(err, &certErr):
		cause = "tls"
		code = "upstream_tls_verification_failed"
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &urlErr) && urlErr.Timeout():
		cause = "timeout"
		code = "upstream_timeout"
		statusCode = 504
	default:
		cause = "connect"
		code = "upstream_unreachable"
	}

	lg.Error("upstream request failed",
		zap.String("cause", cause),
		zap.Error(err))
	monitor.RecordUpstreamFailure(cause)

	return ErrorWrapper(errors.Wrap(err, "forward request to upstream"), code, statusCode)
}
