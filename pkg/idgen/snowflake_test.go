package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := &Snowflake{workerID: 1}

	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id := gen.Generate()
		require.False(t, seen[id], "ID 重复: %d", id)
		seen[id] = true
	}
}

func TestGenerateConcurrent(t *testing.T) {
	gen := &Snowflake{workerID: 1}

	const goroutines = 8
	const perGoroutine = 1000

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, gen.Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				assert.False(t, seen[id], "ID 重复: %d", id)
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestGenerateMonotonic(t *testing.T) {
	gen := &Snowflake{workerID: 1}

	prev := gen.Generate()
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateTransactionNo(t *testing.T) {
	no := GenerateTransactionNo()

	assert.True(t, strings.HasPrefix(no, "TXN"))
	// TXN + 14位时间 + 8位序号
	assert.Len(t, no, 25)

	other := GenerateTransactionNo()
	assert.NotEqual(t, no, other)
}
