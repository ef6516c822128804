package bind_test

import (
	"testing"

	"github.com/quintans/tvshelf/internal/lib/bind"
	"github.com/stretchr/testify/assert"
)

func TestSetSkipsEqualValues(t *testing.T) {
	b := bind.NewSlice([]int{1, 2})

	var calls [][]int
	unlisten := b.Listen(func(v []int) {
		calls = append(calls, v)
	})

	b.Set([]int{1, 2})
	b.Set([]int{3})
	unlisten()
	b.Set([]int{4})

	assert.Equal(t, [][]int{{3}}, calls)
	assert.Equal(t, []int{4}, b.Get())
}

func TestNewComparesByValue(t *testing.T) {
	s := "a"
	b := bind.New[*string](nil)

	count := 0
	b.Listen(func(*string) { count++ })

	b.Set(nil)
	b.Set(&s)
	b.Set(&s)
	b.Set(nil)
	assert.Equal(t, 2, count)
	assert.Nil(t, b.Get())
}
