// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"beatviz/pkg/vmath"
)

// BeatData is the per-frame output of the detector. It is owned by the
// detector and mutated once per analysis frame; Process hands out value
// snapshots, so consumers can never corrupt detector state.
type BeatData struct {
	IsBeat           bool
	BeatIntensity    float64 // how far energy cleared the adaptive bar, [0,1]
	BPM              float64 // 0 until enough inter-beat intervals are seen
	BeatPhase        float64 // fractional progress to the next predicted beat, [0,1)
	Energy           float64 // normalized instantaneous energy, [0,1]
	EnergyDelta      float64 // energy change since the previous frame
	SpectralCentroid float64 // Hz
	SpectralFlux     float64 // normalized positive spectral change, [0,1]
	TimeSinceBeat    float64 // seconds; +Inf until the first beat is observed
}

// DetectorConfig tunes the beat detector. The defaults are empirically
// validated against representative tracks, not protocol constants.
type DetectorConfig struct {
	SampleRate      float64 // Hz, for centroid frequency conversion
	EnergyWindow    int     // rolling energy history length (frames)
	BaseThreshold   float64 // energy ratio floor for an onset
	VarianceSlope   float64 // raises the bar in loud, bursty passages
	MinBPM          float64 // interval outlier rejection, low side
	MaxBPM          float64 // interval outlier rejection, high side
	IntervalHistory int     // inter-beat interval ring buffer length
}

// withDefaults fills zero fields so a partially specified config works.
func (c DetectorConfig) withDefaults() DetectorConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.EnergyWindow < 2 {
		c.EnergyWindow = 43
	}
	if c.BaseThreshold <= 0 {
		c.BaseThreshold = 1.4
	}
	if c.VarianceSlope < 0 {
		c.VarianceSlope = 0
	}
	if c.MinBPM <= 0 {
		c.MinBPM = 40
	}
	if c.MaxBPM <= c.MinBPM {
		c.MaxBPM = 220
	}
	if c.IntervalHistory < 3 {
		c.IntervalHistory = 8
	}
	return c
}

// minEnergyFloor gates detection in near-silence so noise-floor wobble never
// registers as a beat.
const minEnergyFloor = 0.01

// BeatDetector is a streaming energy-based onset detector. It is a stateful
// filter: frames must arrive in playback order, one call per analysis frame.
// Not safe for concurrent use.
type BeatDetector struct {
	cfg DetectorConfig

	// Rolling energy history (ring).
	history   []float64
	histPos   int
	histCount int
	histSort  []float64 // scratch for mean/variance over the filled window

	// Inter-beat intervals (ring).
	intervals []float64
	intPos    int
	intCount  int
	intSort   []float64 // scratch for median

	prevBins   [NumBins]float64
	hasPrev    bool
	prevEnergy float64

	lastBeatTime float64
	beatSeen     bool
	bpm          float64

	data BeatData
}

// NewBeatDetector creates a detector in its cold-start state: no beats, no
// BPM, infinite TimeSinceBeat.
func NewBeatDetector(cfg DetectorConfig) *BeatDetector {
	cfg = cfg.withDefaults()
	return &BeatDetector{
		cfg:       cfg,
		history:   make([]float64, cfg.EnergyWindow),
		histSort:  make([]float64, 0, cfg.EnergyWindow),
		intervals: make([]float64, cfg.IntervalHistory),
		intSort:   make([]float64, 0, cfg.IntervalHistory),
	}
}

// Reset drops all streaming state back to cold start.
func (d *BeatDetector) Reset() {
	d.histPos, d.histCount = 0, 0
	d.intPos, d.intCount = 0, 0
	d.hasPrev = false
	d.prevEnergy = 0
	d.lastBeatTime = 0
	d.beatSeen = false
	d.bpm = 0
	d.data = BeatData{}
}

// Process consumes one spectrum snapshot taken at time now (seconds on the
// precise playback clock) and returns the frame's beat state. Frames must be
// processed strictly in arrival order.
func (d *BeatDetector) Process(bins []byte, now float64) BeatData {
	energy := d.instantEnergy(bins)
	flux, centroid := d.spectralShape(bins)

	d.data.Energy = energy
	d.data.EnergyDelta = energy - d.prevEnergy
	d.data.SpectralFlux = flux
	d.data.SpectralCentroid = centroid
	d.data.IsBeat = false
	d.data.BeatIntensity = 0
	d.prevEnergy = energy

	if d.histCount >= d.cfg.EnergyWindow {
		d.detect(energy, now)
	}
	// Cold start: history too short, keep IsBeat=false and BPM=0. Not an
	// error, the track just started.

	d.pushEnergy(energy)

	d.data.BPM = d.bpm
	if d.beatSeen {
		d.data.TimeSinceBeat = now - d.lastBeatTime
	} else {
		d.data.TimeSinceBeat = math.Inf(1)
	}
	d.data.BeatPhase = d.phase(now)

	return d.data
}

// detect runs the adaptive threshold test against the rolling window.
func (d *BeatDetector) detect(energy, now float64) {
	localAvg, variance := d.windowStats()

	// Loud, bursty passages (high variance) raise the bar to avoid
	// flooding; quiet, steady passages lower it toward the base.
	threshold := d.cfg.BaseThreshold + d.cfg.VarianceSlope*variance
	threshold = vmath.Clamp(threshold, 1.05, 3.0)

	bar := localAvg * threshold
	if energy <= bar || energy < minEnergyFloor {
		return
	}

	// Refractory period: nothing faster than MaxBPM counts as a new beat.
	minInterval := 60.0 / d.cfg.MaxBPM
	if d.beatSeen && now-d.lastBeatTime < minInterval {
		return
	}

	d.data.IsBeat = true
	if bar > 0 {
		d.data.BeatIntensity = vmath.Clamp01(energy/bar - 1)
	} else {
		d.data.BeatIntensity = 1
	}

	if d.beatSeen {
		d.pushInterval(now - d.lastBeatTime)
	}
	d.lastBeatTime = now
	d.beatSeen = true
	d.bpm = d.estimateBPM()
}

// instantEnergy returns the mean bin intensity normalized to [0,1].
func (d *BeatDetector) instantEnergy(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bins {
		sum += float64(b)
	}
	return sum / float64(len(bins)) / 255.0
}

// spectralShape computes normalized positive flux against the previous frame
// and the spectral centroid in Hz.
func (d *BeatDetector) spectralShape(bins []byte) (flux, centroid float64) {
	n := len(bins)
	if n > NumBins {
		n = NumBins
	}

	binWidth := d.cfg.SampleRate / 2 / float64(NumBins)
	var fluxSum, magSum, weighted float64
	for i := 0; i < n; i++ {
		v := float64(bins[i])
		if d.hasPrev {
			if diff := v - d.prevBins[i]; diff > 0 {
				fluxSum += diff
			}
		}
		magSum += v
		weighted += v * (float64(i) + 0.5) * binWidth
		d.prevBins[i] = v
	}
	for i := n; i < NumBins; i++ {
		d.prevBins[i] = 0
	}

	if d.hasPrev && n > 0 {
		flux = fluxSum / float64(n) / 255.0
	}
	d.hasPrev = true

	if magSum > 0 {
		centroid = weighted / magSum
	}
	return flux, centroid
}

// windowStats returns mean and variance of the filled energy history.
func (d *BeatDetector) windowStats() (avg, variance float64) {
	d.histSort = d.histSort[:0]
	d.histSort = append(d.histSort, d.history[:d.histCount]...)
	return stat.MeanVariance(d.histSort, nil)
}

func (d *BeatDetector) pushEnergy(e float64) {
	d.history[d.histPos] = e
	d.histPos = (d.histPos + 1) % len(d.history)
	if d.histCount < len(d.history) {
		d.histCount++
	}
}

// pushInterval records an inter-beat interval, rejecting tempi outside the
// plausible range before they can skew the median.
func (d *BeatDetector) pushInterval(interval float64) {
	if interval <= 0 {
		return
	}
	bpm := 60.0 / interval
	if bpm < d.cfg.MinBPM || bpm > d.cfg.MaxBPM {
		return
	}
	d.intervals[d.intPos] = interval
	d.intPos = (d.intPos + 1) % len(d.intervals)
	if d.intCount < len(d.intervals) {
		d.intCount++
	}
}

// estimateBPM returns 60 over the median retained interval, or 0 when fewer
// than three intervals have been observed.
func (d *BeatDetector) estimateBPM() float64 {
	if d.intCount < 3 {
		return 0
	}
	d.intSort = d.intSort[:0]
	d.intSort = append(d.intSort, d.intervals[:d.intCount]...)
	sort.Float64s(d.intSort)
	median := stat.Quantile(0.5, stat.Empirical, d.intSort, nil)
	if median <= 0 {
		return 0
	}
	return 60.0 / median
}

// phase returns fractional progress toward the next predicted beat, letting
// effects animate on-beat without re-running detection.
func (d *BeatDetector) phase(now float64) float64 {
	if d.bpm <= 0 || !d.beatSeen {
		return 0
	}
	period := 60.0 / d.bpm
	return vmath.Frac((now - d.lastBeatTime) / period)
}
