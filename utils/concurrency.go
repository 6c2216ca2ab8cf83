package utils

import "sync"

// Gather runs every task in its own goroutine and waits for all of them.
// Result i belongs to task i regardless of completion order.
func Gather[T any](tasks []func() T) []T {
	results := make([]T, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func() T) {
			defer wg.Done()
			results[i] = task()
		}(i, task)
	}
	wg.Wait()

	return results
}
