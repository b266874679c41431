package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/intelhub/schema"
)

// Prober checks whether a tab's target URL is reachable.
type Prober interface {
	Probe(ctx context.Context, target string) (schema.ProbeResult, error)
}

const (
	defaultProbeTimeout = 10 * time.Second
	probeUserAgent      = "intelhub-prober/1"
)

// httpProber probes targets with a plain GET. Target failures are carried in
// the result envelope; the error return is reserved for malformed targets and
// canceled contexts.
type httpProber struct {
	client *http.Client
}

// NewProber returns a Prober backed by an HTTP client with a bounded timeout.
func NewProber() Prober {
	return NewProberWithClient(&http.Client{Timeout: defaultProbeTimeout})
}

// NewProberWithClient returns a Prober using the provided client.
func NewProberWithClient(client *http.Client) Prober {
	if client == nil {
		client = &http.Client{Timeout: defaultProbeTimeout}
	}
	return &httpProber{client: client}
}

func (p *httpProber) Probe(ctx context.Context, target string) (schema.ProbeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(target) == "" {
		return schema.ProbeResult{}, schema.ErrMissingURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return schema.ProbeResult{OK: false, Error: normalizeProbeError(err)}, nil
	}
	req.Header.Set("User-Agent", probeUserAgent)
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return schema.ProbeResult{}, ctx.Err()
		}
		return schema.ProbeResult{OK: false, Error: normalizeProbeError(err)}, nil
	}
	defer resp.Body.Close()
	// Drain a little so keep-alive connections can be reused.
	_, _ = io.CopyN(io.Discard, resp.Body, 4096)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	return schema.ProbeResult{OK: ok, Status: resp.StatusCode}, nil
}

// normalizeProbeError reduces transport errors to short, stable messages that
// are safe to surface to clients.
func normalizeProbeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "fetch failed"
	}
	return msg
}
