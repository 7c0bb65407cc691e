package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New[string, int]()
	require.NotNil(t, c)
	assert.NotNil(t, c.entries)
	assert.Equal(t, 0, c.Size())
}

func TestSetGetDelete(t *testing.T) {
	c := New[string, int]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key1", 100)
	c.Set("key2", 200)
	c.Set("key1", 150)
	assert.Equal(t, 2, c.Size())

	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, 150, val)

	c.Delete("key1")
	_, ok = c.Get("key1")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"key2"}, c.Keys())
}

func TestSetIfAbsent(t *testing.T) {
	c := New[int64, string]()

	assert.True(t, c.SetIfAbsent(1, "first"))
	assert.False(t, c.SetIfAbsent(1, "second"))

	val, _ := c.Get(1)
	assert.Equal(t, "first", val)
}

func TestGetOrSet(t *testing.T) {
	c := New[int64, *sync.Mutex]()

	var created atomic.Int32
	var wg sync.WaitGroup
	results := make([]*sync.Mutex, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrSet(7, func() *sync.Mutex {
				created.Add(1)
				return &sync.Mutex{}
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(i, i*2)
			c.Get(i)
			c.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Size())
}
