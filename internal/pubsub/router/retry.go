package router

import (
	"net"
	"net/http"

	"github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/httpclient"
	"github.com/mailbeam/billing/internal/logger"
)

// retryableStatusCodes are the upstream responses worth another attempt.
var retryableStatusCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// shouldRetry decides whether a failed delivery goes back on the queue.
// Rejections and client errors are permanent; throttling, upstream
// outages and timeouts are transient. Anything unclassified is retried
// so a deploy-time bug cannot silently drop messages.
func shouldRetry(log *logger.Logger, err error) bool {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		retry := retryableStatusCodes[httpErr.StatusCode]
		log.Debugw("classified HTTP delivery failure",
			"status_code", httpErr.StatusCode,
			"retry", retry,
			"error", httpErr,
		)
		return retry
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debugw("retrying after network timeout", "error", netErr)
		return true
	}

	if errors.IsValidation(err) ||
		errors.IsNotFound(err) ||
		errors.IsPermissionDenied(err) {
		return false
	}

	return true
}
