package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"joke-cli/internal/apperr"
)

// classifyTransport handles failures every SDK surfaces the same way:
// deadlines, cancellation and network errors. ok is false when err is none of these.
func classifyTransport(op string, err error) (*apperr.Error, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, op, err), true
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindUnknown, op, err), true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return apperr.Wrap(apperr.KindTimeout, op, err), true
		}
		return apperr.Wrap(apperr.KindNetwork, op, err), true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return apperr.Wrap(apperr.KindNetwork, op, err), true
	}
	return nil, false
}

// kindForStatus maps an HTTP status from a provider API to an error kind.
func kindForStatus(status int) apperr.Kind {
	switch {
	case status == http.StatusUnauthorized:
		return apperr.KindCredentials
	case status == http.StatusForbidden:
		return apperr.KindAccessDenied
	case status == http.StatusTooManyRequests:
		return apperr.KindThrottled
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return apperr.KindTimeout
	case status >= 500:
		return apperr.KindUnavailable
	}
	return apperr.KindService
}

// rejectsShape reports whether a provider message says the model does not
// support the call shape that was used.
func rejectsShape(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range []string{"doesn't support", "does not support", "not supported", "unsupported", "not a chat model"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
