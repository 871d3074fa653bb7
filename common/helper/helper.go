package helper

import (
	"math/rand"
	"strconv"

	"github.com/cotlabs/cot-proxy/common/ctxkey"
)

const (
	// RequestIdKey doubles as the response header name and the gin context
	// key; aliased so writers and readers cannot drift apart.
	RequestIdKey = ctxkey.RequestId
)

// GenRequestID generates a unique id for each inbound request, time-prefixed
// so ids sort roughly by arrival.
func GenRequestID() string {
	return GetTimeString() + strconv.Itoa(rand.Intn(1000000000))
}
