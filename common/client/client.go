package client

import (
	"net/http"
	"time"

	"github.com/cotlabs/cot-proxy/common/config"
)

// HTTPClient is the shared client for relayed upstream requests.
var HTTPClient *http.Client

// ImpatientHTTPClient is used for health probes that must fail fast.
var ImpatientHTTPClient *http.Client

func Init() {
	if config.RelayTimeout == 0 {
		HTTPClient = &http.Client{}
	} else {
		HTTPClient = &http.Client{
			Timeout: time.Duration(config.RelayTimeout) * time.Second,
		}
	}

	ImpatientHTTPClient = &http.Client{
		Timeout: time.Duration(config.HealthCheckTimeout) * time.Second,
	}
}
