package loop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvokeWhenStoppedRunsDirectly(t *testing.T) {
	l := New(4)
	ran := false
	assert.NoError(t, l.Invoke(func() { ran = true }, false))
	assert.True(t, ran)
}

func TestInvokeRunsInOrder(t *testing.T) {
	l := New(4)
	l.Start()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		l.Invoke(func() { order = append(order, i) }, false)
	}
	l.Invoke(func() {}, true)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	l.Stop()
	assert.False(t, l.Running())
}

func TestStopDrainsQueue(t *testing.T) {
	l := New(16)
	l.Start()
	var n int32
	for i := 0; i < 16; i++ {
		l.Invoke(func() { atomic.AddInt32(&n, 1) }, false)
	}
	l.Stop()
	assert.Equal(t, int32(16), atomic.LoadInt32(&n))
}

func TestVotes(t *testing.T) {
	l := New(1)
	l.Start()
	l.Start()
	l.Stop()
	assert.True(t, l.Running())
	l.Stop()
	assert.False(t, l.Running())
	assert.Panics(t, func() { l.Stop() })
}

func TestRunningWhileQueueFull(t *testing.T) {
	l := New(1)
	l.Start()
	defer l.Stop()

	started := make(chan struct{})
	gate := make(chan struct{})
	running := make(chan bool, 1)
	l.Invoke(func() {
		close(started)
		<-gate
		running <- l.Running()
	}, false)
	<-started

	// Fill the queue, then block one more caller on it.
	l.Invoke(func() {}, false)
	go l.Invoke(func() {}, false)
	time.Sleep(10 * time.Millisecond)
	close(gate)

	select {
	case r := <-running:
		assert.True(t, r)
	case <-time.After(2 * time.Second):
		t.Fatal("loop stuck")
	}
	l.Invoke(func() {}, true)
}
