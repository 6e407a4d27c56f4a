package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_DiscardsOutOfOrder(t *testing.T) {
	tr := NewTracker()
	first := tr.Next("today")
	second := tr.Next("today")

	applied := ""
	assert.True(t, tr.Apply("today", second, func() { applied = "second" }))
	assert.False(t, tr.Apply("today", first, func() { applied = "first" }))
	assert.Equal(t, "second", applied)
}

func TestTracker_ResourcesAreIndependent(t *testing.T) {
	tr := NewTracker()
	today := tr.Next("today")
	tr.Next("leave")

	assert.True(t, tr.Current("today", today))
}

func TestTracker_Invalidate(t *testing.T) {
	tr := NewTracker()
	seq := tr.Next("today")
	tr.Invalidate("today")
	assert.False(t, tr.Current("today", seq))
}

func TestTracker_ConcurrentNext(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- tr.Next("today")
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]bool)
	for s := range seen {
		unique[s] = true
	}
	assert.Len(t, unique, 100)
	assert.True(t, tr.Current("today", 100))
}
