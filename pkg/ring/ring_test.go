package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendBelowCapacity(t *testing.T) {
	r := New[int](5)
	r.Append(1)
	r.Append(2)
	r.Append(3)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 5, r.Cap())
	assert.Equal(t, []int{1, 2, 3}, r.Items())
}

func TestOverflowDropsOldest(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Items())
}

func TestMinimumCapacity(t *testing.T) {
	r := New[string](0)
	r.Append("a")
	r.Append("b")
	assert.Equal(t, []string{"b"}, r.Items())
}

func TestItemsIsACopy(t *testing.T) {
	r := New[int](3)
	r.Append(1)

	items := r.Items()
	items[0] = 99
	assert.Equal(t, []int{1}, r.Items())
}

func TestConcurrentAppend(t *testing.T) {
	r := New[int](64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Append(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 64, r.Len())
	assert.Len(t, r.Items(), 64)
}
