package offline

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"notesheet/internal/pkg/logger"
)

type Status struct {
	ActiveVersion string
	State         State
	Caches        []string
	CachedEntries int
}

// Lifecycle owns the active worker and rolls versions forward.
type Lifecycle struct {
	storage  *CacheStorage
	fetcher  Fetcher
	manifest Manifest
	exclude  *regexp.Regexp
	logger   logger.ILogger

	deployMu sync.Mutex // one install+activate at a time

	mu     sync.RWMutex
	active *Worker
	last   *Worker // most recent deploy attempt, failed ones included
}

func NewLifecycle(storage *CacheStorage, fetcher Fetcher, manifest Manifest, excludePattern string, log logger.ILogger) (*Lifecycle, error) {
	var exclude *regexp.Regexp
	if excludePattern != "" {
		re, err := regexp.Compile(excludePattern)
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern: %w", err)
		}
		exclude = re
	}
	return &Lifecycle{
		storage:  storage,
		fetcher:  fetcher,
		manifest: manifest,
		exclude:  exclude,
		logger:   log,
	}, nil
}

// Deploy installs version and, on success, activates it right away. A
// failed install leaves the previous worker and its cache serving.
func (l *Lifecycle) Deploy(ctx context.Context, version string) (*Worker, error) {
	l.deployMu.Lock()
	defer l.deployMu.Unlock()

	w := NewWorker(version, l.storage, l.fetcher, l.manifest, l.logger)

	l.mu.Lock()
	l.last = w
	l.mu.Unlock()

	if err := w.Install(ctx); err != nil {
		return w, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.active
	w.Activate(ctx)
	if prev != nil && prev != w {
		prev.supersede()
	}
	l.active = w
	return w, nil
}

func (l *Lifecycle) Active() *Worker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Intercepts reports whether a request is answered by the worker at all.
func (l *Lifecycle) Intercepts(method, target string) bool {
	if method != "GET" {
		return false
	}
	if l.exclude != nil && l.exclude.MatchString(target) {
		return false
	}
	return l.Active() != nil
}

func (l *Lifecycle) Status() Status {
	l.mu.RLock()
	active, last := l.active, l.last
	l.mu.RUnlock()

	st := Status{Caches: l.storage.Keys(), State: StateRedundant}
	switch {
	case last != nil && last != active && last.State() == StateInstalling:
		st.State = StateInstalling
	case active != nil:
		st.State = active.State()
	case last != nil:
		st.State = last.State()
	}
	if active != nil {
		st.ActiveVersion = active.Version()
		if c, ok := l.storage.Lookup(active.Version()); ok {
			st.CachedEntries = c.Len()
		}
	}
	return st
}

// Sync is the background-sync hook. It performs no synchronization.
func (l *Lifecycle) Sync(ctx context.Context, tag string) error {
	l.logger.Info("OfflineLifecycle", "Background sync requested", map[string]interface{}{"tag": tag})
	return nil
}
