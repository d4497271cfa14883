package relay

import (
	"context"
	"time"
)

// TransientError is a channel failure that may heal on retry, typically the
// service worker being asleep.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "channel disconnected: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// InvalidatedError means the extension runtime is gone (the extension was
// reloaded or updated). Retrying cannot help; the page must be reloaded.
type InvalidatedError struct {
	Err error
}

func (e *InvalidatedError) Error() string { return "extension context invalidated: " + e.Err.Error() }
func (e *InvalidatedError) Unwrap() error { return e.Err }

// Transport carries requests from the content script to the background
// worker.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

const (
	maxRetries = 2
	retryDelay = 500 * time.Millisecond
)

// Channel wraps a Transport with the retry policy: transient disconnects are
// retried up to two times with a short delay; an invalidated runtime is
// surfaced immediately as a distinct code so the UI can prompt a reload.
type Channel struct {
	transport Transport
	delay     time.Duration
}

// NewChannel builds a Channel over the given transport.
func NewChannel(transport Transport) *Channel {
	return &Channel{transport: transport, delay: retryDelay}
}

// SetRetryDelay overrides the delay between retries. Tests shorten it.
func (c *Channel) SetRetryDelay(d time.Duration) {
	c.delay = d
}

// Send delivers the request, applying the retry policy. The returned
// Response is always populated; channel failures are folded into it.
func (c *Channel) Send(ctx context.Context, req Request) Response {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return Response{OK: false, Error: ctx.Err().Error()}
			}
		}

		resp, err := c.transport.Send(ctx, req)
		if err == nil {
			return resp
		}
		lastErr = err

		if _, invalidated := err.(*InvalidatedError); invalidated {
			return Response{OK: false, Error: CodeExtensionReloaded}
		}
		if _, transient := err.(*TransientError); !transient {
			break
		}
	}
	return Response{OK: false, Error: lastErr.Error()}
}
