// SPDX-License-Identifier: MIT
package waveform

import "sync"

// call is one outstanding envelope request. The out channel is
// buffered so resolution never blocks, and done guards against a
// second resolution racing the first.
type call struct {
	out  chan Result
	done bool
}

func (c *call) resolve(res Result) {
	if c.done {
		return
	}
	c.done = true
	c.out <- res
}

// Client fronts a Worker with last-request-wins semantics: at most one
// request is outstanding, and submitting a new one rejects the previous
// waiter with ErrSuperseded. A track seek always wants the newest
// envelope, never a stale one.
//
// When the worker dies the pending waiter gets the error and the next
// request transparently starts a fresh worker.
type Client struct {
	mu      sync.Mutex
	worker  *Worker
	pending *call
}

func NewClient() *Client {
	return &Client{}
}

// Generate submits a request and returns a channel that receives
// exactly one Result. Ownership of req.ChannelData passes to the
// worker; the caller must not reuse the slice.
func (c *Client) Generate(req Request) <-chan Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.pending.resolve(Result{Err: ErrSuperseded})
	}
	if c.worker == nil {
		c.worker = NewWorker()
	}

	cl := &call{out: make(chan Result, 1)}
	c.pending = cl
	worker := c.worker
	reply := make(chan Result, 1)

	go func() {
		if err := worker.Submit(req, reply); err != nil {
			c.finish(cl, worker, Result{Err: err})
			return
		}
		c.finish(cl, worker, <-reply)
	}()

	return cl.out
}

func (c *Client) finish(cl *call, worker *Worker, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl.resolve(res)
	if c.pending == cl {
		c.pending = nil
	}
	if res.Err == ErrWorkerClosed && c.worker == worker {
		// Drop the dead worker; the next Generate starts a new one.
		c.worker = nil
	}
}

// Recycle hands a rendered peak buffer back to the worker's pool so
// the next envelope of the same width reuses it.
func (c *Client) Recycle(peaks []float64) {
	c.mu.Lock()
	worker := c.worker
	c.mu.Unlock()
	if worker != nil {
		worker.Recycle(peaks)
	}
}

// Close shuts down the current worker and rejects any pending waiter.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.resolve(Result{Err: ErrWorkerClosed})
		c.pending = nil
	}
	if c.worker != nil {
		c.worker.Close()
		c.worker = nil
	}
}
