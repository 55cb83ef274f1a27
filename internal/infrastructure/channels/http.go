package channels

import (
	"fmt"
	"io"
	"net/http"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// maxResponseSize is the maximum allowed response size from a channel API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// readBody drains a response body with a size cap
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", channel.ErrTransient, err)
	}
	return body, nil
}

// classifyStatus maps an HTTP status to the channel error taxonomy.
// 401/403 mean the bearer token was rejected and a re-auth is needed; 429 and
// 5xx are transient; every other 4xx is a validation failure that retrying
// cannot fix.
func classifyStatus(status int, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", channel.ErrAuthenticationRequired, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP 429 rate limited", channel.ErrTransient)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: HTTP 404", channel.ErrNotFound)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d", channel.ErrTransient, status)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", channel.ErrValidation, status, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
