// Package transport owns the engine's single musical-time playhead
// (spec §4.7): tempo, time signature, sample rate, current musical
// time, current frame index, and the performing flag. Every render tick
// begins with a call to Advance.
package transport

import (
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
)

// Transport is the fixed singleton entity at coretypes.TransportUid. It
// implements entity.Entity and entity.Controllable (one automatable
// parameter: tempo, index 0).
type Transport struct {
	mu sync.Mutex

	sampleRate    coretypes.SampleRate
	tempo         coretypes.Tempo
	timeSignature coretypes.TimeSignature

	currentTime  coretypes.MusicalTime
	currentFrame uint64
	performing   bool
}

// New returns a stopped transport at the zero musical-time position,
// default tempo/time-signature/sample-rate.
func New() *Transport {
	return &Transport{
		sampleRate:    coretypes.DefaultSampleRate,
		tempo:         coretypes.DefaultTempo,
		timeSignature: coretypes.CommonTime,
	}
}

func (t *Transport) Uid() coretypes.Uid     { return coretypes.TransportUid }
func (t *Transport) SetUid(coretypes.Uid)   {} // fixed identity, ignore
func (t *Transport) Name() string           { return "transport" }
func (t *Transport) KindKey() string        { return "transport" }

// UpdateSampleRate, UpdateTempo, UpdateTimeSignature implement
// entity.Configurable, letting the transport itself be the single
// source of truth these values are broadcast from, as well as a
// receiver of externally-driven changes (e.g. a UI tempo knob).
func (t *Transport) UpdateSampleRate(sr coretypes.SampleRate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sampleRate = sr
}

func (t *Transport) UpdateTempo(tempo coretypes.Tempo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tempo = tempo
}

func (t *Transport) UpdateTimeSignature(ts coretypes.TimeSignature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeSignature = ts
}

func (t *Transport) SampleRate() coretypes.SampleRate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sampleRate
}

func (t *Transport) Tempo() coretypes.Tempo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tempo
}

func (t *Transport) TimeSignature() coretypes.TimeSignature {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeSignature
}

func (t *Transport) CurrentTime() coretypes.MusicalTime {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentTime
}

func (t *Transport) CurrentFrame() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentFrame
}

func (t *Transport) IsPerforming() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.performing
}

func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.performing = true
}

func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.performing = false
}

// SkipToStart resets the playhead to musical-time zero without
// affecting the performing flag.
func (t *Transport) SkipToStart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentTime = coretypes.Zero
	t.currentFrame = 0
}

// Seek moves the playhead directly to a musical time.
func (t *Transport) Seek(to coretypes.MusicalTime) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentTime = to
	t.currentFrame = to.AsFrames(t.tempo, t.sampleRate)
}

// Advance moves the playhead forward by frames and returns the
// musical-time range [current, current+delta) it just crossed. If the
// transport isn't performing, the range still reflects where playback
// would be (so a UI preview can respond to input while stopped), but
// the stored position does not move.
func (t *Transport) Advance(frames uint64) coretypes.Range {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.currentTime
	delta := coretypes.NewWithFrames(t.tempo, t.sampleRate, frames)
	end := start.Add(delta)

	if t.performing {
		t.currentTime = end
		t.currentFrame += frames
	}

	return coretypes.NewRange(start, end)
}

// Controllable: tempo is the transport's only automatable parameter.

const ControlTempo = coretypes.ControlIndex(0)

func (t *Transport) ControlIndexCount() int { return 1 }

func (t *Transport) ControlNameForIndex(i coretypes.ControlIndex) string {
	if i == ControlTempo {
		return "tempo"
	}
	return ""
}

func (t *Transport) ControlSetParamByIndex(i coretypes.ControlIndex, value coretypes.ControlValue) {
	if i != ControlTempo {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tempo = coretypes.TempoFromControlValue(value)
}

var (
	_ entity.Entity       = (*Transport)(nil)
	_ entity.Configurable = (*Transport)(nil)
	_ entity.Controllable = (*Transport)(nil)
)
