package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	c := context.TODO()
	svc := NewService()

	t.Run("default sorts by popularity", func(t *testing.T) {
		got, err := svc.Search(c, Query{})
		assert.NoError(t, err)
		assert.Len(t, got, 15)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Reviews, got[i].Reviews)
		}
		assert.Equal(t, "Gaming Console", got[0].Name.EN)
	})

	t.Run("price low to high", func(t *testing.T) {
		got, err := svc.Search(c, Query{SortBy: SortByPriceLowToHigh})
		assert.NoError(t, err)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Price, got[i].Price)
		}
		assert.Equal(t, "Wireless Mouse", got[0].Name.EN)
	})

	t.Run("price high to low", func(t *testing.T) {
		got, err := svc.Search(c, Query{SortBy: SortByPriceHighToLow})
		assert.NoError(t, err)
		assert.Equal(t, "Laptop Pro", got[0].Name.EN)
	})

	t.Run("rating", func(t *testing.T) {
		got, err := svc.Search(c, Query{SortBy: SortByRating})
		assert.NoError(t, err)
		assert.Equal(t, "Laptop Pro", got[0].Name.EN)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Rating, got[i].Rating)
		}
	})

	t.Run("search matches english name case-insensitively", func(t *testing.T) {
		got, err := svc.Search(c, Query{Search: "wireless"})
		assert.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("search matches tamil name", func(t *testing.T) {
		got, err := svc.Search(c, Query{Search: "டேப்லெட்", Lang: "ta"})
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "Tablet", got[0].Name.EN)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		got, err := svc.Search(c, Query{Limit: 12})
		assert.NoError(t, err)
		assert.Len(t, got, 12)
	})

	t.Run("unknown sort order rejected", func(t *testing.T) {
		_, err := svc.Search(c, Query{SortBy: "cheapest"})
		assert.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	c := context.TODO()
	svc := NewService()

	t.Run("found", func(t *testing.T) {
		p, found, err := svc.Get(c, "product-2")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Laptop Pro", p.Name.EN)
	})

	t.Run("not found", func(t *testing.T) {
		_, found, err := svc.Get(c, "product-99")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("must-get maps absence to not-found", func(t *testing.T) {
		_, err := svc.MustGet(c, "product-99")
		assert.Error(t, err)
	})
}
