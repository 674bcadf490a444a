package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_InsertGetRemove(t *testing.T) {
	a := NewArena[string]()
	h1 := a.Insert("one")
	h2 := a.Insert("two")
	assert.Equal(t, 2, a.Len())

	v, err := a.Get(h2)
	require.NoError(t, err)
	assert.Equal(t, "two", *v)

	removed, err := a.Remove(h1)
	require.NoError(t, err)
	assert.Equal(t, "one", removed)
	assert.Equal(t, 1, a.Len())
	assert.False(t, a.Contains(h1))

	_, err = a.Remove(h1)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestArena_ReusedSlotRejectsStaleHandle(t *testing.T) {
	a := NewArena[int]()
	old := a.Insert(1)
	_, err := a.Remove(old)
	require.NoError(t, err)

	fresh := a.Insert(2)
	assert.Equal(t, old.Index, fresh.Index)
	assert.NotEqual(t, old.Generation, fresh.Generation)

	_, err = a.Get(old)
	assert.ErrorIs(t, err, ErrStaleHandle)
	v, err := a.Get(fresh)
	require.NoError(t, err)
	assert.Equal(t, 2, *v)
}

func TestArena_ZeroHandleIsNeverLive(t *testing.T) {
	a := NewArena[int]()
	a.Insert(7)
	_, err := a.Get(Handle{})
	assert.ErrorIs(t, err, ErrStaleHandle)
	_, err = a.Get(Handle{Index: 40, Generation: 1})
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestArena_EachVisitsLiveSlotsInOrder(t *testing.T) {
	a := NewArena[int]()
	hs := []Handle{a.Insert(10), a.Insert(20), a.Insert(30)}
	_, err := a.Remove(hs[1])
	require.NoError(t, err)

	var seen []int
	a.Each(func(_ Handle, v *int) { seen = append(seen, *v) })
	assert.Equal(t, []int{10, 30}, seen)
}
