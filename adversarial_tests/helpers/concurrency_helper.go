package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// GoroutineSnapshot captures the state of goroutines at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// DetectGoroutineLeak compares two snapshots and returns an error if goroutines leaked
func DetectGoroutineLeak(before, after *GoroutineSnapshot, tolerance int) error {
	leaked := after.Count - before.Count
	if leaked > tolerance {
		return fmt.Errorf("goroutine leak detected: started with %d, ended with %d (leaked %d, tolerance %d)",
			before.Count, after.Count, leaked, tolerance)
	}
	return nil
}

// WaitForGoroutineCleanup waits for goroutines to clean up, retrying with GC
func WaitForGoroutineCleanup(maxWait time.Duration, targetCount int, tolerance int) (int, error) {
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		current := runtime.NumGoroutine()
		if current-targetCount <= tolerance {
			return current, nil
		}

		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}

	final := runtime.NumGoroutine()
	return final, fmt.Errorf("goroutines did not clean up within %v: expected %d±%d, got %d",
		maxWait, targetCount, tolerance, final)
}

// startGate releases every waiting goroutine once the last one arrives
type startGate struct {
	signal  chan struct{}
	waiting atomic.Int32
	target  int32
	once    sync.Once
}

func newStartGate(n int) *startGate {
	return &startGate{signal: make(chan struct{}), target: int32(n)}
}

func (g *startGate) wait() {
	if g.waiting.Add(1) >= g.target {
		g.once.Do(func() { close(g.signal) })
	}
	<-g.signal
}

// CoordinatedStart runs numOps operations that all begin at the same moment
// and returns the errors they produced.
func CoordinatedStart(numOps int, opFunc func(id int) error) []error {
	gate := newStartGate(numOps)
	errs := make(chan error, numOps)
	var wg sync.WaitGroup

	wg.Add(numOps)
	for i := 0; i < numOps; i++ {
		go func(id int) {
			defer wg.Done()
			gate.wait()
			if err := opFunc(id); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var errList []error
	for err := range errs {
		errList = append(errList, err)
	}
	return errList
}
