package anthropic

import (
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrorKind partitions upstream failures by how callers should react.
type ErrorKind int

const (
	// KindFatal: malformed request, auth failure, or any error not known
	// to clear on its own. Do not retry.
	KindFatal ErrorKind = iota
	// KindTransient: network-level or 5xx-class failure.
	KindTransient
	// KindRateLimited: the upstream asked us to slow down.
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// Error carries the upstream error together with its classification.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// WrapError classifies err and wraps it with a message prefix.
func WrapError(err error, msg string) error {
	return &Error{Kind: Classify(err), Err: eris.Wrap(err, msg)}
}

// KindOf returns the classification of err, or KindFatal when err carries
// no *Error in its chain.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindFatal
}

// Rate-limit responses surface as message text, not structured codes: the
// upstream contract is a status-429 body whose wording has varied across
// API versions. Matched once, here.
var rateLimitPatterns = []string{
	"429",
	"too many requests",
	"rate limit",
	"resource exhausted",
	"overloaded",
}

var transientPatterns = []string{
	"500",
	"502",
	"503",
	"504",
	"connection reset by peer",
	"broken pipe",
	"i/o timeout",
	"tls handshake timeout",
	"temporary failure in name resolution",
	"no such host",
}

// Classify maps an upstream error onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindFatal
	}

	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return KindRateLimited
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return KindTransient
		}
	}

	return KindFatal
}
