// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"beatviz/pkg/sigtest"
)

const testDT = 1.0 / 50 // analysis cadence for synthetic feeds

func testDetector() *BeatDetector {
	return NewBeatDetector(DetectorConfig{
		SampleRate:      44100,
		EnergyWindow:    43,
		BaseThreshold:   1.4,
		VarianceSlope:   15,
		MinBPM:          40,
		MaxBPM:          220,
		IntervalHistory: 8,
	})
}

// feedPulseTrain feeds frames frames with a one-frame spike every period
// frames, returning the final BeatData and the count of flagged beats.
func feedPulseTrain(d *BeatDetector, frames, period int) (BeatData, int) {
	quiet := sigtest.FlatBins(10)
	loud := sigtest.FlatBins(200)

	var last BeatData
	beats := 0
	for i := 0; i < frames; i++ {
		bins := quiet
		if i%period == 0 {
			bins = loud
		}
		last = d.Process(bins, float64(i)*testDT)
		if last.IsBeat {
			beats++
		}
	}
	return last, beats
}

func TestSilenceNeverBeats(t *testing.T) {
	d := testDetector()
	silence := sigtest.FlatBins(0)

	for i := 0; i < 500; i++ {
		data := d.Process(silence, float64(i)*testDT)
		if data.IsBeat {
			t.Fatalf("beat flagged on silence at frame %d", i)
		}
	}

	data := d.Process(silence, 500*testDT)
	if data.BPM != 0 {
		t.Errorf("BPM = %v on silence, want 0", data.BPM)
	}
	if !math.IsInf(data.TimeSinceBeat, 1) {
		t.Errorf("TimeSinceBeat = %v on silence, want +Inf", data.TimeSinceBeat)
	}
}

func TestColdStartSuppressesDetection(t *testing.T) {
	d := testDetector()
	quiet := sigtest.FlatBins(10)
	loud := sigtest.FlatBins(220)

	// The spike lands inside the warm-up window; too little history to judge.
	for i := 0; i < 42; i++ {
		bins := quiet
		if i == 20 {
			bins = loud
		}
		data := d.Process(bins, float64(i)*testDT)
		if data.IsBeat {
			t.Fatalf("beat flagged during cold start at frame %d", i)
		}
		if data.BPM != 0 {
			t.Fatalf("BPM guessed during cold start at frame %d: %v", i, data.BPM)
		}
	}
}

func TestPulseTrainEstimatesBPM(t *testing.T) {
	// Spike every 25 frames at 50 fps = 0.5s period = 120 BPM.
	d := testDetector()
	last, beats := feedPulseTrain(d, 600, 25)

	if beats < 4 {
		t.Fatalf("only %d beats detected in pulse train", beats)
	}
	if math.Abs(last.BPM-120) > 3 {
		t.Errorf("BPM = %v, want 120 +/- 3", last.BPM)
	}
	if last.TimeSinceBeat < 0 || math.IsInf(last.TimeSinceBeat, 1) {
		t.Errorf("TimeSinceBeat = %v after beats observed", last.TimeSinceBeat)
	}
}

func TestRefractoryPeriodBlocksImplausibleTempo(t *testing.T) {
	// Spikes every 5 frames = 0.1s = 600 BPM, far above MaxBPM. The
	// refractory window must space accepted beats at least 60/MaxBPM apart,
	// so the estimate can never exceed the plausible ceiling.
	d := testDetector()
	quiet := sigtest.FlatBins(10)
	loud := sigtest.FlatBins(200)

	var beatTimes []float64
	var last BeatData
	for i := 0; i < 400; i++ {
		bins := quiet
		if i%5 == 0 {
			bins = loud
		}
		now := float64(i) * testDT
		last = d.Process(bins, now)
		if last.IsBeat {
			beatTimes = append(beatTimes, now)
		}
	}

	if len(beatTimes) < 2 {
		t.Fatal("too few beats; threshold too high for test signal")
	}
	minSpacing := 60.0 / 220
	for i := 1; i < len(beatTimes); i++ {
		if gap := beatTimes[i] - beatTimes[i-1]; gap < minSpacing-1e-9 {
			t.Fatalf("beats %v apart, refractory floor is %v", gap, minSpacing)
		}
	}
	if last.BPM > 220 {
		t.Errorf("BPM = %v exceeds plausible ceiling", last.BPM)
	}
}

func TestBeatPhaseAdvances(t *testing.T) {
	d := testDetector()
	last, _ := feedPulseTrain(d, 600, 25)

	if last.BPM == 0 {
		t.Fatal("no BPM estimate; cannot check phase")
	}
	if last.BeatPhase < 0 || last.BeatPhase >= 1 {
		t.Errorf("BeatPhase = %v outside [0,1)", last.BeatPhase)
	}

	// Phase must agree with elapsed time since the last beat.
	period := 60.0 / last.BPM
	want := last.TimeSinceBeat/period - math.Floor(last.TimeSinceBeat/period)
	if math.Abs(last.BeatPhase-want) > 1e-9 {
		t.Errorf("BeatPhase = %v, want %v from TimeSinceBeat", last.BeatPhase, want)
	}

	// A later quiet frame advances the phase by dt/period.
	quiet := sigtest.FlatBins(10)
	data := d.Process(quiet, 600*testDT)
	advance := data.BeatPhase - last.BeatPhase
	if advance < 0 {
		advance += 1
	}
	step := (600*testDT - 599*testDT) / period
	if math.Abs(advance-step) > 0.05 {
		t.Errorf("phase advanced by %v, want ~%v", advance, step)
	}
}

func TestSpectralFluxRespondsToOnsets(t *testing.T) {
	d := testDetector()
	quiet := sigtest.FlatBins(10)
	loud := sigtest.FlatBins(200)

	d.Process(quiet, 0)
	rising := d.Process(loud, testDT)
	falling := d.Process(quiet, 2*testDT)

	if rising.SpectralFlux <= 0 {
		t.Errorf("flux = %v on rising edge, want > 0", rising.SpectralFlux)
	}
	// Flux only counts positive change.
	if falling.SpectralFlux != 0 {
		t.Errorf("flux = %v on falling edge, want 0", falling.SpectralFlux)
	}
}

func TestSpectralCentroidTracksBrightness(t *testing.T) {
	d := testDetector()

	bassHeavy := sigtest.BandBins(200, 10, 0)
	trebleHeavy := sigtest.BandBins(0, 10, 200)

	low := d.Process(bassHeavy, 0)
	d.Reset()
	high := d.Process(trebleHeavy, 0)

	if low.SpectralCentroid >= high.SpectralCentroid {
		t.Errorf("centroid bass=%v >= treble=%v, want lower for bass-heavy frame",
			low.SpectralCentroid, high.SpectralCentroid)
	}
}

func TestResetReturnsToColdStart(t *testing.T) {
	d := testDetector()
	feedPulseTrain(d, 600, 25)

	d.Reset()

	data := d.Process(sigtest.FlatBins(10), 0)
	if data.IsBeat || data.BPM != 0 {
		t.Errorf("state leaked across Reset: %+v", data)
	}
	if !math.IsInf(data.TimeSinceBeat, 1) {
		t.Errorf("TimeSinceBeat = %v after Reset, want +Inf", data.TimeSinceBeat)
	}
}

func BenchmarkProcessHotPath(b *testing.B) {
	d := testDetector()
	bins := sigtest.BandBins(180, 90, 45)
	now := 0.0
	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		now += testDT
		_ = d.Process(bins, now)
	}
}
