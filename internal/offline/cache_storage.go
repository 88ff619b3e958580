package offline

import (
	"sort"
	"sync"

	"github.com/patrickmn/go-cache"
)

// CacheStorage holds named caches. Entries never expire; a namespace goes
// away only when activation deletes it.
type CacheStorage struct {
	mu         sync.Mutex
	namespaces *cache.Cache
}

type Cache struct {
	name    string
	entries *cache.Cache
}

func NewCacheStorage() *CacheStorage {
	return &CacheStorage{namespaces: cache.New(cache.NoExpiration, 0)}
}

// Open returns the named cache, creating it when missing.
func (s *CacheStorage) Open(name string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.lookup(name); ok {
		return c
	}
	c := &Cache{name: name, entries: cache.New(cache.NoExpiration, 0)}
	s.namespaces.Set(name, c, cache.NoExpiration)
	return c
}

// Lookup returns the named cache without creating it.
func (s *CacheStorage) Lookup(name string) (*Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(name)
}

func (s *CacheStorage) lookup(name string) (*Cache, bool) {
	v, ok := s.namespaces.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Cache), true
}

func (s *CacheStorage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces.Get(name); !ok {
		return false
	}
	s.namespaces.Delete(name)
	return true
}

// Keys lists namespace names in sorted order.
func (s *CacheStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.namespaces.Items()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Match(key string) (*CachedResponse, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*CachedResponse).Clone(), true
}

func (c *Cache) Put(key string, res *CachedResponse) {
	c.entries.Set(key, res.Clone(), cache.NoExpiration)
}

func (c *Cache) PutAll(entries map[string]*CachedResponse) {
	for key, res := range entries {
		c.Put(key, res)
	}
}

func (c *Cache) Len() int {
	return c.entries.ItemCount()
}
