package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New[int]("mesh")
	assert.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "mesh", r.Category())
}

func TestInsertAndGet(t *testing.T) {
	r := New[int]("mesh")

	require.NoError(t, r.Insert("one", 1))
	require.NoError(t, r.Insert("two", 2))

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Get("two")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = r.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestInsertDuplicateRejected(t *testing.T) {
	r := New[string]("texture")

	require.NoError(t, r.Insert("key", "old"))
	err := r.Insert("key", "new")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Contains(t, err.Error(), `texture "key"`)

	v, ok := r.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "old", v, "duplicate insert must not replace the stored value")
}

func TestTagsAreCaseSensitive(t *testing.T) {
	r := New[int]("shader")
	require.NoError(t, r.Insert("Basic", 1))
	require.NoError(t, r.Insert("basic", 2))
	assert.Equal(t, 2, r.Len())
}

func TestMustGet(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("key", 42))
	assert.Equal(t, 42, r.MustGet("key"))
}

func TestMustGetPanic(t *testing.T) {
	r := New[int]("mesh")
	assert.PanicsWithValue(t, `registry: mesh "nonexistent" not found`, func() {
		r.MustGet("nonexistent")
	})
}

func TestHas(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("key", 42))

	assert.True(t, r.Has("key"))
	assert.False(t, r.Has("nonexistent"))
}

func TestRemove(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("key", 42))

	v, ok := r.Remove("key")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.False(t, r.Has("key"))

	_, ok = r.Remove("key")
	assert.False(t, ok)

	// Tag is free again after removal.
	require.NoError(t, r.Insert("key", 7))
}

func TestTagsSorted(t *testing.T) {
	r := New[int]("mesh")
	for _, tag := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Insert(tag, 0))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Tags())
}

func TestTagsEmpty(t *testing.T) {
	assert.Empty(t, New[int]("mesh").Tags())
}

func TestRangeInTagOrder(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("b", 2))
	require.NoError(t, r.Insert("a", 1))
	require.NoError(t, r.Insert("c", 3))

	var order []string
	r.Range(func(tag string, v int) bool {
		order = append(order, tag)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRangeEarlyStop(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("a", 1))
	require.NoError(t, r.Insert("b", 2))

	count := 0
	r.Range(func(string, int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestRangeAllowsMutation(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("one", 1))
	require.NoError(t, r.Insert("two", 2))

	r.Range(func(tag string, v int) bool {
		_ = r.Insert("new-"+tag, v*10)
		return true
	})

	assert.True(t, r.Has("new-one"))
	assert.True(t, r.Has("new-two"))
	assert.Equal(t, 4, r.Len())
}

func TestDrain(t *testing.T) {
	r := New[int]("mesh")
	require.NoError(t, r.Insert("b", 2))
	require.NoError(t, r.Insert("a", 1))

	drained := r.Drain()
	assert.Equal(t, []Entry[int]{{Tag: "a", Value: 1}, {Tag: "b", Value: 2}}, drained)
	assert.Equal(t, 0, r.Len())

	// Registry stays usable after draining.
	require.NoError(t, r.Insert("a", 3))
}

func TestConcurrentInsertSingleWinner(t *testing.T) {
	r := New[int]("mesh")

	const goroutines = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			if err := r.Insert("contended", id); err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, r.Len())
}

func TestConcurrentReadWrite(t *testing.T) {
	r := New[int]("mesh")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Insert(fmt.Sprintf("w%d-%d", id, j), j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Tags()
				_, _ = r.Get("w0-0")
				r.Range(func(string, int) bool { return true })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20*50, r.Len())
}
