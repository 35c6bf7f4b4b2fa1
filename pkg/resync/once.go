package resync

import "sync"

// Once behaves like sync.Once but can be reset.
// Useful to recreate lazy-loaded singletons between unit tests.
type Once struct {
	mu   sync.Mutex
	done bool
}

// Do calls the function f only once until Reset is called.
func (o *Once) Do(f func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return
	}
	f()
	o.done = true
}

// Reset forces the next call to Do to execute its function again.
func (o *Once) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = false
}
