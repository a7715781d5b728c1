package filter

import (
	"container/list"
	"sync"
)

// programCache keeps the most recently compiled filters by expression
type programCache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	mu        sync.Mutex
}

type cacheEntry struct {
	expression string
	filter     CompiledFilter
}

func newProgramCache(size int) *programCache {
	return &programCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element, size),
	}
}

// Get returns the filter compiled for expression and marks it recently used
func (c *programCache) Get(expression string) (CompiledFilter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[expression]
	if !ok {
		return nil, false
	}
	c.evictList.MoveToFront(node)
	return node.Value.(*cacheEntry).filter, true
}

// Put stores f, evicting the least recently used entry when full
func (c *programCache) Put(expression string, f CompiledFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[expression]; ok {
		c.evictList.MoveToFront(node)
		node.Value.(*cacheEntry).filter = f
		return
	}

	c.items[expression] = c.evictList.PushFront(&cacheEntry{expression: expression, filter: f})
	if c.evictList.Len() > c.size {
		oldest := c.evictList.Back()
		c.evictList.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).expression)
	}
}

func (c *programCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.size)
	c.evictList.Init()
}

func (c *programCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}
