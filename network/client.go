// Package network holds the HTTP client katalog uses for its own requests.
package network

import (
	"net/http"
	"time"

	"github.com/katalog-cli/katalog/constant"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is shared by every request katalog makes itself. Requests are traced
// and carry the katalog user agent.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: otelhttp.NewTransport(&userAgent{next: newTransport()}),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 20
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", constant.UserAgent)
	return u.next.RoundTrip(req)
}
