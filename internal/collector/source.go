package collector

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

var (
	// ErrUnavailable marks transient upstream failures: network errors,
	// timeouts, rate limits and 5xx responses.
	ErrUnavailable = errors.New("source temporarily unavailable")
	// ErrNoData marks a response without any usable bar or price.
	ErrNoData = errors.New("no data")
)

// Source is one market data backend.
type Source interface {
	Name() string
	FetchOHLCV(ctx context.Context, asset model.Asset, tf model.Timeframe, limit int) (model.Series, error)
	FetchTicker(ctx context.Context, asset model.Asset) (model.Ticker, error)
}

// newHTTPClient builds a client with a finite timeout and optional proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// getBody performs a GET and classifies failures into ErrUnavailable or a
// permanent error.
func getBody(ctx context.Context, client *http.Client, endpoint string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		if transientStatus(resp.StatusCode) {
			return nil, errors.Wrapf(ErrUnavailable, "status %d", resp.StatusCode)
		}
		return nil, errors.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func transientStatus(code int) bool {
	// 418 is Binance's IP ban after ignoring 429s
	return code == http.StatusTooManyRequests || code == http.StatusTeapot || code >= 500
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
