package util

import (
	"fmt"
	"sync"
	"time"
)

// StampLayout is the timestamp embedded in artifact and archive names
const StampLayout = "2006-01-02_15-04-05"

// Clock abstracts time.Now (injectable for tests)
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current local time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Stamper issues second-granularity stamps that never repeat within a process.
// A second stamp in the same second gets a _1, _2, ... suffix.
type Stamper struct {
	clock Clock
	mu    sync.Mutex
	last  string
	seq   int
}

// NewStamper creates a stamper; a nil clock means the system clock
func NewStamper(clock Clock) *Stamper {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stamper{clock: clock}
}

// Next returns the next unique stamp
func (s *Stamper) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.clock.Now().Format(StampLayout)
	if base != s.last {
		s.last = base
		s.seq = 0
		return base
	}

	s.seq++
	return fmt.Sprintf("%s_%d", base, s.seq)
}
