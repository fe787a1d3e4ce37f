// SPDX-License-Identifier: MIT

// Package waveform computes peak envelopes for rendering a track's
// shape. The reduction runs on a worker goroutine so multi-minute
// tracks never stall the frame loop.
package waveform

import (
	"errors"
	"math"

	"beatviz/pkg/pool"
)

var (
	// ErrSuperseded is returned to a waiter whose request was replaced
	// by a newer one before it completed.
	ErrSuperseded = errors.New("waveform: request superseded")

	// ErrWorkerClosed is returned when the worker has shut down.
	ErrWorkerClosed = errors.New("waveform: worker closed")

	errEmptyRequest = errors.New("waveform: empty channel data")
	errBadWidth     = errors.New("waveform: target width must be positive")
)

// Request asks for a peak envelope. ChannelData ownership transfers to
// the worker with the send; the caller must not touch the slice again.
type Request struct {
	ChannelData []float32
	TargetWidth int
	Normalize   bool
}

// Result carries the reduced envelope. Peaks has exactly TargetWidth
// entries, each the max absolute sample of its bucket. When Normalize
// is set the peaks are rescaled so the loudest bucket is 1.0.
type Result struct {
	Peaks   []float64
	MaxPeak float64
	Err     error
}

// Worker owns a goroutine that serializes envelope reductions. Create
// with NewWorker, feed through a Client. Peak buffers come from a
// length-bucketed pool owned by the worker goroutine; callers hand
// them back through Recycle once rendered.
type Worker struct {
	requests chan request
	recycle  chan []float64
	done     chan struct{}

	// Owned by the run goroutine.
	buffers *pool.BufferPool
}

type request struct {
	Request
	reply chan Result
}

func NewWorker() *Worker {
	w := &Worker{
		requests: make(chan request),
		recycle:  make(chan []float64, 8),
		done:     make(chan struct{}),
		buffers:  pool.NewBufferPool(),
	}
	go w.run()
	return w
}

// Submit hands a request to the worker. The reply channel receives
// exactly one Result. Submit fails once the worker is closed.
func (w *Worker) Submit(req Request, reply chan Result) error {
	select {
	case <-w.done:
		return ErrWorkerClosed
	case w.requests <- request{Request: req, reply: reply}:
		return nil
	}
}

// Recycle transfers a finished peak buffer back to the worker's pool.
// The caller must not touch the slice afterwards. Recycling is best
// effort; when the worker is gone or saturated the buffer is simply
// dropped to the garbage collector.
func (w *Worker) Recycle(peaks []float64) {
	select {
	case w.recycle <- peaks:
	default:
	}
}

// Close stops the worker. In-flight work finishes; queued waiters get
// ErrWorkerClosed.
func (w *Worker) Close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *Worker) run() {
	for {
		select {
		case <-w.done:
			return
		case buf := <-w.recycle:
			w.buffers.Put(buf)
		case req := <-w.requests:
			req.reply <- w.reduce(req.Request)
		}
	}
}

// reduce computes the per-bucket max-abs envelope. The output always
// has exactly TargetWidth entries: bucket boundaries are proportional,
// so no tail sample is dropped, and when the width exceeds the sample
// count each empty bucket repeats its nearest sample.
func (w *Worker) reduce(req Request) Result {
	if len(req.ChannelData) == 0 {
		return Result{Err: errEmptyRequest}
	}
	if req.TargetWidth <= 0 {
		return Result{Err: errBadWidth}
	}

	width := req.TargetWidth
	n := len(req.ChannelData)

	peaks := w.buffers.Get(width)
	maxPeak := 0.0
	for b := 0; b < width; b++ {
		start := b * n / width
		end := (b + 1) * n / width
		if end == start {
			end = start + 1
		}
		peak := 0.0
		for _, s := range req.ChannelData[start:end] {
			if a := math.Abs(float64(s)); a > peak {
				peak = a
			}
		}
		peaks[b] = peak
		if peak > maxPeak {
			maxPeak = peak
		}
	}

	if req.Normalize && maxPeak > 0 {
		inv := 1 / maxPeak
		for i := range peaks {
			peaks[i] *= inv
		}
	}
	return Result{Peaks: peaks, MaxPeak: maxPeak}
}
