package probe

import (
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// DefaultProbeTimeout bounds a single health request.
const DefaultProbeTimeout = 2 * time.Second

// HealthProbe performs a bounded-timeout liveness check against one fixed
// endpoint. Every failure mode (connection refused, timeout, non-2xx,
// unreadable or non-matching body) collapses to false; nothing escapes this
// boundary.
type HealthProbe struct {
	URL     string
	Timeout time.Duration

	client *http.Client
}

func NewHealthProbe(url string, timeout time.Duration) *HealthProbe {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HealthProbe{
		URL:     url,
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Healthy issues a single GET and classifies the result.
func (p *HealthProbe) Healthy() bool {
	resp, err := p.client.Get(p.URL)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return false
	}
	return bodyLooksOK(body)
}

// bodyLooksOK strips whitespace and accepts any body containing "ok". This
// is deliberately loose: it matches {"status":"ok"} in any spacing as well
// as bare OK replies from older backend builds, and it will also accept
// unrelated bodies that merely mention "ok" (e.g. a "token" field). Kept
// for compatibility rather than tightened to JSON parsing.
func bodyLooksOK(body []byte) bool {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(body))
	return strings.Contains(strings.ToLower(compact), "ok")
}
