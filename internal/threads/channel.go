// Package threads implements the thread subsystem of spec.md §4.F/§5:
// spawn/wait/send/recv/try_recv over typed, unbounded FIFO channels.
// It is generalized from the teacher's internal/concurrency package
// (WorkerPool, Job, JobResult, Channel) — the vocabulary and the
// worker-pool fallback are kept, the payload is narrowed from an
// arbitrary Job to "run a captured stack to a final stack or error".
package threads

import "sync"

// Channel is an unbounded, multi-producer/multi-consumer, FIFO queue of
// values. Go's built-in channels are fixed-capacity, so a genuinely
// unbounded, never-blocking Send (per spec.md §5) needs its own queue
// rather than a buffered chan.
type Channel struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []any
	closed bool
}

// NewChannel returns an empty, open Channel.
func NewChannel() *Channel {
	c := &Channel{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Send enqueues v without blocking.
func (c *Channel) Send(v any) {
	c.mu.Lock()
	c.queue = append(c.queue, v)
	c.mu.Unlock()
	c.cond.Signal()
}

// Recv blocks until a value is available or the channel is closed with
// nothing left to deliver, in which case ok is false.
func (c *Channel) Recv() (v any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.queue) == 0 {
		return nil, false
	}
	v = c.queue[0]
	c.queue = c.queue[1:]
	return v, true
}

// TryRecv never blocks: it reports (value, true) if one was queued,
// (nil, false) with wouldBlock=true if the channel is open but empty,
// or (nil, false) with wouldBlock=false if the channel is closed and
// drained.
func (c *Channel) TryRecv() (v any, ok bool, wouldBlock bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) > 0 {
		v = c.queue[0]
		c.queue = c.queue[1:]
		return v, true, false
	}
	if c.closed {
		return nil, false, false
	}
	return nil, false, true
}

// Close marks the channel closed; pending Recv/TryRecv callers are
// woken so they can observe the remaining queue draining to empty.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cond.Broadcast()
}
