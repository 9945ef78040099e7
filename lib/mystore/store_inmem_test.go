package mystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type visitor struct {
	UID      string
	Name     string
	Returned bool
}

func TestStore(t *testing.T) {
	c := context.TODO()
	vs, cleanup, err := newInMemoryStore[visitor](c)
	assert.NoError(t, err)
	defer cleanup()

	first := visitor{UID: "123", Name: "Anand", Returned: false}
	second := visitor{UID: "456", Name: "Priya", Returned: true}

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := vs.Get(c, first.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		assert.NoError(t, vs.Put(c, first.UID, first))
		assert.NoError(t, vs.Put(c, second.UID, second))
	})

	t.Run("Get found", func(t *testing.T) {
		v, found, err := vs.Get(c, first.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, first, v)
	})

	t.Run("List preserves insertion order", func(t *testing.T) {
		all, err := vs.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []visitor{first, second}, all)
	})

	t.Run("Query filters on equality", func(t *testing.T) {
		got, err := vs.Query(c, []Filter{{Field: "Returned", Compare: "=", Value: true}}, "UID")
		assert.NoError(t, err)
		assert.Equal(t, []visitor{second}, got)
	})

	t.Run("Remove", func(t *testing.T) {
		assert.NoError(t, vs.Remove(c, first.UID))
		_, found, err := vs.Get(c, first.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Remove absent is no error", func(t *testing.T) {
		assert.NoError(t, vs.Remove(c, "nonexistent"))
	})
}
