package cache_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/physio_ive_go/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LoadOrCompute(t *testing.T) {
	c := cache.New()
	k := cache.NewKey("Mean{}")

	count := 0
	compute := func() (any, error) {
		count++
		return 4.2, nil
	}

	v, err := c.LoadOrCompute(k, compute)
	require.NoError(t, err)
	assert.Equal(t, 4.2, v)

	v, err = c.LoadOrCompute(k, compute) // cached
	require.NoError(t, err)
	assert.Equal(t, 4.2, v)

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, cache.Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestCache_ErrorsAreNotStored(t *testing.T) {
	c := cache.New()
	k := cache.NewKey("Broken{}")
	boom := errors.New("boom")

	_, err := c.LoadOrCompute(k, func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.LoadOrCompute(k, func() (any, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestCache_DigestCollisionKeepsEntriesApart(t *testing.T) {
	c := cache.New()
	a := cache.Key{Digest: 7, Canonical: "A{}"}
	b := cache.Key{Digest: 7, Canonical: "B{}"}

	c.Store(a, "a")
	c.Store(b, "b")

	va, ok := c.Load(a)
	assert.True(t, ok)
	assert.Equal(t, "a", va)
	vb, ok := c.Load(b)
	assert.True(t, ok)
	assert.Equal(t, "b", vb)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Delete(a))
	_, ok = c.Load(a)
	assert.False(t, ok)
	_, ok = c.Load(b)
	assert.True(t, ok)
	assert.False(t, c.Delete(a))
	assert.Equal(t, 1, c.Len())
}

func TestCache_NestedComputation(t *testing.T) {
	c := cache.New()
	inner := cache.NewKey("Diff{degree:1}")
	outer := cache.NewKey("RMSSD{}")

	v, err := c.LoadOrCompute(outer, func() (any, error) {
		d, err := c.LoadOrCompute(inner, func() (any, error) { return 2.0, nil })
		if err != nil {
			return nil, err
		}
		return d.(float64) * 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, 2, c.Len())
}

func TestCache_CycleIsReported(t *testing.T) {
	c := cache.New()
	k := cache.NewKey("Loop{}")

	var compute func() (any, error)
	compute = func() (any, error) {
		return c.LoadOrCompute(k, compute)
	}
	_, err := c.LoadOrCompute(k, compute)
	assert.ErrorIs(t, err, cache.ErrCycle)
	assert.Equal(t, 0, c.Len())

	// the key is usable again once the failed computation unwound
	v, err := c.LoadOrCompute(k, func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCache_Clear(t *testing.T) {
	c := cache.New()
	c.Store(cache.NewKey("A{}"), 1)
	c.Store(cache.NewKey("B{}"), 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Load(cache.NewKey("A{}"))
	assert.False(t, ok)
}

func TestNewKey_Deterministic(t *testing.T) {
	assert.Equal(t, cache.NewKey("X{a:1}"), cache.NewKey("X{a:1}"))
	assert.NotEqual(t, cache.NewKey("X{a:1}").Digest, cache.NewKey("X{a:2}").Digest)
	assert.Len(t, cache.NewKey("X{}").String(), 16)
}
