package fetch

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// backoffTransport re-issues metadata lookups that fail transiently.
// Only the idempotent metadata client uses it; the initiation call goes
// through a plain transport so a 429 is never absorbed by a retry.
type backoffTransport struct {
	base      http.RoundTripper
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

func (t *backoffTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 1; attempt <= t.attempts; attempt++ {
		attemptReq := req
		if attempt > 1 {
			if resp != nil {
				resp.Body.Close()
			}
			if waitErr := waitBackoff(req.Context(), t.delay(attempt-1)); waitErr != nil {
				return nil, waitErr
			}
			attemptReq, err = replayableRequest(req)
			if err != nil {
				return nil, err
			}
		}

		resp, err = t.base.RoundTrip(attemptReq)
		if err != nil {
			if !retryableError(err) {
				return nil, err
			}
			resp = nil
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
	}

	// Out of attempts: hand back whatever the last try produced.
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

// delay doubles per retry up to maxDelay, with 25% jitter either way.
func (t *backoffTransport) delay(retry int) time.Duration {
	d := t.baseDelay << (retry - 1)
	if d > t.maxDelay || d <= 0 {
		d = t.maxDelay
	}
	jitter := float64(d) * 0.25 * (rand.Float64()*2 - 1) //nolint:gosec
	return d + time.Duration(jitter)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// replayableRequest clones req with a fresh body for the next attempt.
func replayableRequest(req *http.Request) (*http.Request, error) {
	cloned := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return cloned, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	cloned.Body = body
	return cloned, nil
}

func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
