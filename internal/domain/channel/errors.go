package channel

import "errors"

// Error taxonomy for channel operations. The reconciliation pass classifies
// every failure into exactly one of these families before deciding whether to
// retry, alert, or swallow it.
var (
	// ErrAuthenticationRequired indicates the stored refresh token was rejected
	// and a human must re-run the authorization handshake. Never retried.
	ErrAuthenticationRequired = errors.New("channel: authentication required")

	// ErrTransient indicates a network failure, timeout, 5xx or 429 response.
	// Safe to retry with backoff.
	ErrTransient = errors.New("channel: transient failure")

	// ErrValidation indicates the channel rejected the request as malformed
	// (4xx other than 429). Never retried.
	ErrValidation = errors.New("channel: request rejected")

	// ErrNotFound indicates the SKU or order does not exist on the channel.
	// Treated as a no-op by callers, never surfaced as a pass failure.
	ErrNotFound = errors.New("channel: not found")

	// ErrNotRegistered indicates no client is registered for a channel code.
	ErrNotRegistered = errors.New("channel: not registered")
)

// IsRetryable reports whether an operation that failed with err may be
// attempted again. Authentication and validation failures are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthenticationRequired) || errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return false
	}
	return errors.Is(err, ErrTransient)
}
