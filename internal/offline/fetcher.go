package offline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultFetchTimeout = 10 * time.Second

type Fetcher interface {
	// Resolve turns a request target (relative path or absolute URL) into
	// the absolute URL used as the cache key.
	Resolve(target string) string
	Fetch(ctx context.Context, target string) (*CachedResponse, error)
}

// HTTPFetcher fetches from the static-asset origin with the fiber client.
type HTTPFetcher struct {
	origin  *url.URL
	timeout time.Duration
}

func NewHTTPFetcher(originURL string, timeout time.Duration) (*HTTPFetcher, error) {
	origin, err := url.Parse(strings.TrimRight(originURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse origin %q: %w", originURL, err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute URL", originURL)
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPFetcher{origin: origin, timeout: timeout}, nil
}

func (f *HTTPFetcher) Resolve(target string) string {
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return f.origin.ResolveReference(ref).String()
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*CachedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absolute := f.Resolve(target)
	resolved, err := url.Parse(absolute)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", absolute, err)
	}

	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)

	agent := fiber.Get(absolute).Timeout(timeout).SetResponse(resp)
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("prepare request %s: %w", absolute, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetch %s: %w", absolute, errors.Join(errs...))
	}

	res := &CachedResponse{
		Status: code,
		Header: make(map[string]string),
		Body:   append([]byte(nil), body...),
		Type:   ResponseCORS,
	}
	if strings.EqualFold(resolved.Host, f.origin.Host) && resolved.Scheme == f.origin.Scheme {
		res.Type = ResponseBasic
	}
	resp.Header.VisitAll(func(key, value []byte) {
		if name := string(key); keepHeader(name) {
			res.Header[name] = string(value)
		}
	})
	return res, nil
}
