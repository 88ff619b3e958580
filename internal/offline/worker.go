package offline

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"notesheet/internal/pkg/logger"
)

type State string

const (
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActive     State = "active"
	StateSuperseded State = "superseded"
	StateRedundant  State = "redundant" // install failed
)

// Manifest is everything that must be cached for a version to install.
type Manifest struct {
	Assets   []string // paths relative to the origin
	FontURLs []string // absolute remote URLs
}

func (m Manifest) Targets() []string {
	out := make([]string, 0, len(m.Assets)+len(m.FontURLs))
	out = append(out, m.Assets...)
	return append(out, m.FontURLs...)
}

// shellPaths are tried in order when a navigation request cannot reach the network.
var shellPaths = []string{"/index.html", "/"}

const unavailableOffline = "unavailable offline"

type Request struct {
	Target string // path with query, or absolute URL
	Accept string
}

// Worker serves one cache version.
type Worker struct {
	version  string
	storage  *CacheStorage
	fetcher  Fetcher
	manifest Manifest
	logger   logger.ILogger

	mu    sync.RWMutex
	state State

	pending sync.WaitGroup
}

func NewWorker(version string, storage *CacheStorage, fetcher Fetcher, manifest Manifest, log logger.ILogger) *Worker {
	return &Worker{
		version:  version,
		storage:  storage,
		fetcher:  fetcher,
		manifest: manifest,
		logger:   log,
		state:    StateInstalling,
	}
}

func (w *Worker) Version() string {
	return w.version
}

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Install fetches the whole manifest. Nothing is written unless every
// entry arrives with a 2xx status.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)

	entries := make(map[string]*CachedResponse, len(w.manifest.Assets)+len(w.manifest.FontURLs))
	for _, target := range w.manifest.Targets() {
		res, err := w.fetcher.Fetch(ctx, target)
		if err == nil && (res.Status < 200 || res.Status > 299) {
			err = fmt.Errorf("status %d", res.Status)
		}
		if err != nil {
			w.setState(StateRedundant)
			w.logger.Error("OfflineWorker", "Install failed", map[string]interface{}{
				"version": w.version,
				"target":  target,
				"error":   err.Error(),
			})
			return fmt.Errorf("install %s: %s: %w", w.version, target, err)
		}
		entries[w.fetcher.Resolve(target)] = res
	}

	w.storage.Open(w.version).PutAll(entries)
	w.setState(StateInstalled)
	w.logger.Info("OfflineWorker", "Installed", map[string]interface{}{"version": w.version, "entries": len(entries)})
	return nil
}

// Activate deletes every cache namespace except this version's and returns
// the names it removed.
func (w *Worker) Activate(ctx context.Context) []string {
	var evicted []string
	for _, name := range w.storage.Keys() {
		if name == w.version {
			continue
		}
		if w.storage.Delete(name) {
			evicted = append(evicted, name)
		}
	}

	w.setState(StateActive)
	w.logger.Info("OfflineWorker", "Activated", map[string]interface{}{"version": w.version, "evicted": evicted})
	return evicted
}

func (w *Worker) supersede() {
	w.setState(StateSuperseded)
}

// Fetch answers a GET cache-first. It always produces a response; network
// failures end in the offline fallbacks.
func (w *Worker) Fetch(ctx context.Context, req Request) *CachedResponse {
	key := w.fetcher.Resolve(req.Target)

	if c, ok := w.storage.Lookup(w.version); ok {
		if res, hit := c.Match(key); hit {
			return res
		}
	}

	res, err := w.fetcher.Fetch(ctx, req.Target)
	if err != nil {
		w.logger.Debug("OfflineWorker", "Network fetch failed", map[string]interface{}{"target": req.Target, "error": err.Error()})
		return w.fallback(req)
	}

	if res.Cacheable() {
		w.putAsync(key, res.Clone())
	}
	return res
}

func (w *Worker) putAsync(key string, res *CachedResponse) {
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()

		c, ok := w.storage.Lookup(w.version)
		if !ok {
			w.logger.Debug("OfflineWorker", "Cache gone, skipping put", map[string]interface{}{"version": w.version, "key": key})
			return
		}
		c.Put(key, res)
	}()
}

// Wait blocks until background cache writes have finished.
func (w *Worker) Wait() {
	w.pending.Wait()
}

func (w *Worker) fallback(req Request) *CachedResponse {
	if strings.Contains(req.Accept, "text/html") {
		if c, ok := w.storage.Lookup(w.version); ok {
			for _, p := range shellPaths {
				if shell, hit := c.Match(w.fetcher.Resolve(p)); hit {
					return shell
				}
			}
		}
	}

	if isFaviconLike(req.Target) {
		return &CachedResponse{Status: 404, Header: map[string]string{}, Type: ResponseBasic}
	}

	return &CachedResponse{
		Status: 503,
		Header: map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:   []byte(unavailableOffline),
		Type:   ResponseBasic,
	}
}

func isFaviconLike(target string) bool {
	p := target
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.HasPrefix(strings.ToLower(path.Base(p)), "favicon")
}
