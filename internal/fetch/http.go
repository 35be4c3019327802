package fetch

import (
	"net"
	"net/http"
	"time"
)

const defaultUserAgent = "songreel/1.0 (+https://github.com/songreel/songreel)"

var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 15 * time.Second,
	IdleConnTimeout:       90 * time.Second,
}

func CloseIdleConnections() {
	sharedTransport.CloseIdleConnections()
}

type consistentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *consistentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if cloned.Header.Get("User-Agent") == "" {
		cloned.Header.Set("User-Agent", t.userAgent)
	}
	if cloned.Header.Get("Accept-Language") == "" {
		cloned.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}
	if cloned.Header.Get("Accept") == "" {
		cloned.Header.Set("Accept", "*/*")
	}
	return t.base.RoundTrip(cloned)
}

// NewMetadataClient builds the client used for oEmbed/search/thumbnail
// lookups. Transient failures get up to three extra attempts with
// doubling, jittered backoff.
func NewMetadataClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &backoffTransport{
			base: &consistentTransport{
				base:      sharedTransport,
				userAgent: defaultUserAgent,
			},
			attempts:  4,
			baseDelay: 500 * time.Millisecond,
			maxDelay:  8 * time.Second,
		},
	}
}

// NewAPIClient builds the client used for the download service itself.
// It never retries: a 429 from the initiation endpoint must surface as
// the rate-limit failure, not be absorbed by backoff.
func NewAPIClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &consistentTransport{
			base:      sharedTransport,
			userAgent: defaultUserAgent,
		},
	}
}
