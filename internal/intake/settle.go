package intake

import "sync"

// settleAll runs every fn concurrently and returns once all have finished.
// A failing fn never cancels or short-circuits its siblings; each fn records
// its own result.
func settleAll(fns ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(fn)
	}
	wg.Wait()
}
