package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, minGrain - 1, 2 * minGrain, 10*minGrain + 3} {
		var total int64
		For(n, func(start, end int) {
			atomic.AddInt64(&total, int64(end-start))
		})
		if total != int64(n) {
			t.Fatalf("n=%d: covered %d elements", n, total)
		}
	}
}

func TestForChunksAreDisjoint(t *testing.T) {
	n := 4*minGrain + 5
	seen := make([]int64, n)
	For(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&seen[i], 1)
		}
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}
