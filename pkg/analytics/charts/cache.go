package charts

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

type cacheKey struct {
	ds   *trials.Dataset
	kind Kind
}

// Cache memoizes series per dataset snapshot. Datasets are never mutated after
// they are published, so the pointer identifies the content.
type Cache struct {
	entries *lru.Cache[cacheKey, Series]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 64
	}
	entries, err := lru.New[cacheKey, Series](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

func (c *Cache) Build(kind Kind, ds *trials.Dataset) (Series, error) {
	key := cacheKey{ds: ds, kind: kind}
	if s, ok := c.entries.Get(key); ok {
		return s, nil
	}
	s, err := Build(kind, ds)
	if err != nil {
		return Series{}, err
	}
	c.entries.Add(key, s)
	return s, nil
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}
