package offline

import (
	"strings"
)

// ResponseType mirrors the fetch response types the cache cares about.
type ResponseType string

const (
	ResponseBasic ResponseType = "basic" // same origin
	ResponseCORS  ResponseType = "cors"  // another origin, e.g. remote fonts
)

type CachedResponse struct {
	Status int
	Header map[string]string
	Body   []byte
	Type   ResponseType
}

// Cacheable reports whether a network response may be written to the cache
// at runtime: only 200s from our own origin.
func (r *CachedResponse) Cacheable() bool {
	return r != nil && r.Status == 200 && r.Type == ResponseBasic
}

func (r *CachedResponse) Clone() *CachedResponse {
	if r == nil {
		return nil
	}
	c := &CachedResponse{
		Status: r.Status,
		Header: make(map[string]string, len(r.Header)),
		Body:   append([]byte(nil), r.Body...),
		Type:   r.Type,
	}
	for k, v := range r.Header {
		c.Header[k] = v
	}
	return c
}

var skippedHeaders = map[string]bool{
	"connection":        true,
	"content-length":    true,
	"date":              true,
	"keep-alive":        true,
	"server":            true,
	"transfer-encoding": true,
}

func keepHeader(name string) bool {
	return !skippedHeaders[strings.ToLower(name)]
}
