package scheduler

import "sync"

// seedSignal is a notify-on-reseed broadcast primitive: waiters read
// the current channel, block on it, and are all released together
// when broadcast closes it and swaps in a fresh one.
type seedSignal struct {
	mu sync.Mutex
	ch chan struct{}
}

// wait returns the channel to block on; it closes the next time
// broadcast is called. The channel is created lazily so the zero
// value of seedSignal is usable.
func (s *seedSignal) wait() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// broadcast wakes every current waiter and arms a fresh channel for
// the next generation of waiters.
func (s *seedSignal) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		s.ch = make(chan struct{})
		return
	}
	close(s.ch)
	s.ch = make(chan struct{})
}
