package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLockReturnsSameMutexForKey(t *testing.T) {
	lm := NewLockManager()

	a := lm.GetLock(LotKey("LOT-1"))
	b := lm.GetLock(LotKey("LOT-1"))
	other := lm.GetLock(LotKey("LOT-2"))

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestLockSerializesCriticalSection(t *testing.T) {
	lm := NewLockManager()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := lm.GetLock(BatchKey("batch-1"))
			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}
