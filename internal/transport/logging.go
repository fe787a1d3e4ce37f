// SPDX-License-Identifier: MIT
package transport

import (
	applog "beatviz/internal/log"
)

// LoggingTransport writes beat events to the application log. Full
// frame snapshots only appear at debug level; at 60 fps they would
// drown everything else.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

func (lt *LoggingTransport) Send(snap Snapshot) error {
	if snap.IsBeat {
		applog.Infof("beat t=%.3f bpm=%.1f intensity=%.2f bass=%.0f",
			snap.Time, snap.BPM, snap.BeatIntensity, snap.Bass)
	} else {
		applog.Debugf("frame t=%.3f energy=%.3f avg=%.0f", snap.Time, snap.Energy, snap.Average)
	}
	return nil
}

func (lt *LoggingTransport) Close() error { return nil }

var _ Transport = (*LoggingTransport)(nil)
