// SPDX-License-Identifier: MIT

// Package transport publishes per-frame analysis snapshots to external
// consumers (overlay UIs, lighting rigs, debug tooling).
package transport

// Snapshot is the wire-facing view of one analysis frame.
type Snapshot struct {
	Time          float64 `json:"time"`
	Effect        string  `json:"effect"`
	IsBeat        bool    `json:"isBeat"`
	BeatIntensity float64 `json:"beatIntensity"`
	BPM           float64 `json:"bpm"`
	BeatPhase     float64 `json:"beatPhase"`
	Energy        float64 `json:"energy"`
	Bass          float64 `json:"bass"`
	Mid           float64 `json:"mid"`
	Treble        float64 `json:"treble"`
	Average       float64 `json:"average"`
}

// Transport delivers snapshots to one kind of consumer. Send must be
// safe for concurrent use and must never block the frame loop; slow
// consumers drop frames instead of stalling the engine.
type Transport interface {
	Send(snap Snapshot) error
	Close() error
}

// Fanout forwards every snapshot to a set of transports. Errors from
// individual transports are swallowed so one bad consumer cannot stop
// the rest.
type Fanout struct {
	transports []Transport
}

func NewFanout(ts ...Transport) *Fanout {
	return &Fanout{transports: ts}
}

func (f *Fanout) Send(snap Snapshot) error {
	for _, t := range f.transports {
		_ = t.Send(snap)
	}
	return nil
}

func (f *Fanout) Close() error {
	var first error
	for _, t := range f.transports {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Transport = (*Fanout)(nil)
