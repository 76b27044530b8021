// Package loop provides the data loop: a single goroutine on which all
// real-time work runs, and through which the control side hands over state.
package loop

import (
	"sync"
	"sync/atomic"

	"github.com/lanikai/alohaspa/internal/logging"
)

var log = logging.DefaultLogger.WithTag("loop")

type invocation struct {
	fn   func()
	done chan struct{}
}

// A DataLoop runs queued functions one at a time on its own goroutine. Each
// call to Start() counts as a "vote" in favor of running the loop (and Stop()
// removes a vote). The goroutine is started when the vote count goes from 0
// to 1, and terminated when the count goes from 1 to 0. Callers must ensure
// that each Start() call is matched by a corresponding Stop().
//
// Functions run on the loop may call Running but must not call Invoke.
type DataLoop struct {
	pending chan invocation

	// Votes in favor of running the loop. Written under the lock, read
	// atomically by Running.
	votes int32

	// Invocations between the vote check and the queue send.
	sending sync.WaitGroup

	// Closed when Stop() is requested, to trigger run loop exit.
	quit chan struct{}

	// Closed when run loop actually terminates.
	terminated chan struct{}

	sync.Mutex
}

// New returns a stopped loop that can queue up to depth invocations.
func New(depth int) *DataLoop {
	return &DataLoop{
		pending: make(chan invocation, depth),
	}
}

func (l *DataLoop) Start() {
	l.Lock()
	defer l.Unlock()

	if atomic.AddInt32(&l.votes, 1) > 1 {
		return
	}

	l.quit = make(chan struct{})
	l.terminated = make(chan struct{})
	go func(quit <-chan struct{}, terminated chan<- struct{}) {
		log.Debug("Starting data loop")
		l.run(quit)
		// Close terminated channel to unblock Stop().
		close(terminated)
	}(l.quit, l.terminated)
}

func (l *DataLoop) Stop() {
	l.Lock()
	defer l.Unlock()

	if atomic.LoadInt32(&l.votes) == 0 {
		panic("loop: Stop without Start")
	}
	if atomic.AddInt32(&l.votes, -1) == 0 {
		log.Debug("Stopping data loop")
		l.sending.Wait()
		close(l.quit)
		<-l.terminated

		l.quit = nil
		l.terminated = nil
	}
}

// Running reports whether the loop goroutine is active.
func (l *DataLoop) Running() bool {
	return atomic.LoadInt32(&l.votes) > 0
}

// Invoke implements plugin.Loop.
func (l *DataLoop) Invoke(fn func(), block bool) error {
	l.Lock()
	if atomic.LoadInt32(&l.votes) == 0 {
		l.Unlock()
		fn()
		return nil
	}
	inv := invocation{fn: fn}
	if block {
		inv.done = make(chan struct{})
	}
	// Stop() waits for the send, and the run loop drains the queue before
	// exiting.
	l.sending.Add(1)
	l.Unlock()
	l.pending <- inv
	l.sending.Done()

	if block {
		<-inv.done
	}
	return nil
}

func (l *DataLoop) run(quit <-chan struct{}) {
	for {
		select {
		case inv := <-l.pending:
			l.call(inv)
		case <-quit:
			for {
				select {
				case inv := <-l.pending:
					l.call(inv)
				default:
					return
				}
			}
		}
	}
}

func (l *DataLoop) call(inv invocation) {
	inv.fn()
	if inv.done != nil {
		close(inv.done)
	}
}
