package parallel

import (
	"runtime"
	"sync"
)

// minGrain is the smallest slice worth handing to its own goroutine.
// Below this the scheduling overhead dominates the arithmetic.
const minGrain = 1024

// For splits [0, n) into contiguous chunks and runs fn on each chunk,
// using at most GOMAXPROCS goroutines. Small ranges run inline.
func For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n < 2*minGrain || workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	if chunk < minGrain {
		chunk = minGrain
	}
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
