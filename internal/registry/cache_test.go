package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2)
	c.Put(&Patient{ID: "a"})
	c.Put(&Patient{ID: "b"})

	require.NotNil(t, c.Get("a")) // a becomes most recent
	c.Put(&Patient{ID: "c"})

	assert.NotNil(t, c.Get("a"))
	assert.Nil(t, c.Get("b"))
	assert.NotNil(t, c.Get("c"))
	assert.Equal(t, 2, c.Len())
}

func TestLRUCache_ReturnsCopies(t *testing.T) {
	c := NewLRUCache(1)
	original := &Patient{ID: "a", Devices: []Device{{ID: "watch-1"}}}
	c.Put(original)

	original.Devices[0].ID = "mutated"
	got := c.Get("a")
	require.NotNil(t, got)
	assert.Equal(t, "watch-1", got.Devices[0].ID)

	got.Devices[0].ID = "mutated-again"
	assert.Equal(t, "watch-1", c.Get("a").Devices[0].ID)
}

func TestLRUCache_Invalidate(t *testing.T) {
	c := NewLRUCache(2)
	c.Put(&Patient{ID: "a"})
	c.Invalidate("a")
	c.Invalidate("missing")

	assert.Nil(t, c.Get("a"))
	assert.Equal(t, 0, c.Len())
}
