package registry

import (
	"container/list"
	"sync"
)

// LRUCache is a thread-safe LRU cache of patients keyed by patient ID.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key     string
	patient *Patient
}

// NewLRUCache creates a new LRU cache with the given capacity.
func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func clonePatient(p *Patient) *Patient {
	c := *p
	c.Devices = append([]Device(nil), p.Devices...)
	return &c
}

// Get retrieves a patient copy from cache. Returns nil if not found.
func (c *LRUCache) Get(patientID string) *Patient {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[patientID]
	if !exists {
		return nil
	}

	c.order.MoveToFront(elem)
	return clonePatient(elem.Value.(*cacheEntry).patient)
}

// Put adds a patient to the cache, evicting the least recently used if full.
func (c *LRUCache) Put(p *Patient) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[p.ID]; exists {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).patient = clonePatient(p)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.cache, oldest.Value.(*cacheEntry).key)
			c.order.Remove(oldest)
		}
	}

	elem := c.order.PushFront(&cacheEntry{key: p.ID, patient: clonePatient(p)})
	c.cache[p.ID] = elem
}

// Invalidate removes a patient from the cache.
func (c *LRUCache) Invalidate(patientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[patientID]
	if !exists {
		return
	}

	delete(c.cache, patientID)
	c.order.Remove(elem)
}

// Len returns the number of cached patients.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
