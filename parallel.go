package vantage

import "sync"

// runBatch invokes fn(row) for every row in [0, n) and stores each result at
// its row's slot, optionally fanning out across workers workers. Because
// every row writes to its own pre-sized slot, the result is independent of
// completion order: output stays byte-identical to a serial run regardless
// of how goroutines are scheduled, satisfying spec.md §5's determinism
// requirement for optional internal parallelism.
func runBatch(n, workers int, fn func(row int)) {
	if workers <= 1 || n <= 1 {
		for row := 0; row < n; row++ {
			fn(row)
		}
		return
	}
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	rows := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rows {
				fn(row)
			}
		}()
	}
	for row := 0; row < n; row++ {
		rows <- row
	}
	close(rows)
	wg.Wait()
}
