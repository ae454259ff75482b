package scheduler

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const nameCacheSize = 8192

// NameCache memoizes (project, trigger name) to trigger id lookups so
// hot read paths skip the database. Entries are evicted on delete and
// bounded by an LRU so a busy tenant cannot grow it without limit.
type NameCache struct {
	cache *lru.Cache[string, string]
}

// NewNameCache creates a name cache holding up to size entries.
func NewNameCache(size int) (*NameCache, error) {
	if size <= 0 {
		size = nameCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create name cache: %w", err)
	}
	return &NameCache{cache: cache}, nil
}

// Get returns the cached trigger id for a project-scoped name.
func (n *NameCache) Get(projectID, name string) (string, bool) {
	return n.cache.Get(nameCacheKey(projectID, name))
}

// Put records a resolved name.
func (n *NameCache) Put(projectID, name, triggerID string) {
	n.cache.Add(nameCacheKey(projectID, name), triggerID)
}

// Evict drops one name, typically after a delete.
func (n *NameCache) Evict(projectID, name string) {
	n.cache.Remove(nameCacheKey(projectID, name))
}

// EvictProject drops every cached name belonging to a project.
func (n *NameCache) EvictProject(projectID string) {
	prefix := projectID + "/"
	for _, key := range n.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			n.cache.Remove(key)
		}
	}
}

func nameCacheKey(projectID, name string) string {
	return projectID + "/" + name
}
