package coretypes

import (
	"fmt"
	"math"

	"github.com/schollz/collidertracker/internal/engineerr"
)

// UnitsPerBeat is the resolution of MusicalTime: one beat is 65,536 units.
const UnitsPerBeat = 65536

// PartsPerBeat is the number of parts making up one beat.
const PartsPerBeat = 16

// UnitsPerPart is derived: 65536 / 16 = 4096 units per part.
const UnitsPerPart = UnitsPerBeat / PartsPerBeat

// MusicalTime is a non-negative integer count of units. One beat equals
// 16 parts equals 65,536 units. Wall-clock interpretation requires a
// Tempo and a SampleRate.
type MusicalTime uint64

// Zero is the start-of-timeline instant.
const Zero MusicalTime = 0

// NewFromUnits constructs a MusicalTime directly from a unit count.
func NewFromUnits(units uint64) MusicalTime { return MusicalTime(units) }

// NewFromBeats constructs a MusicalTime from a whole beat count.
func NewFromBeats(beats uint64) MusicalTime { return MusicalTime(beats * UnitsPerBeat) }

// NewWithBarBeatPart builds a MusicalTime from a bar/beat/part position
// in a given time signature, plus a leftover unit count within the part.
func NewWithBarBeatPart(ts TimeSignature, bar, beat, part uint64, units uint64) MusicalTime {
	beatsPerBar := uint64(ts.Top)
	totalBeats := bar*beatsPerBar + beat
	return MusicalTime(totalBeats*UnitsPerBeat + part*UnitsPerPart + units)
}

// NewWithFrames converts a frame count to MusicalTime at the given tempo
// and sample rate: elapsed_beats = frames/sampleRate * tempo_bps;
// units = round(elapsed_beats * UnitsPerBeat).
func NewWithFrames(tempo Tempo, sampleRate SampleRate, frames uint64) MusicalTime {
	tempoBps := tempo.Value() / 60.0
	sr := float64(sampleRate.Value())
	elapsedBeats := float64(frames) / sr * tempoBps
	units := math.Round(elapsedBeats * UnitsPerBeat)
	if units < 0 {
		units = 0
	}
	return MusicalTime(uint64(units))
}

// AsFrames is the inverse of NewWithFrames: frames_per_beat = sampleRate /
// tempo_bps; frames = units/UnitsPerBeat * frames_per_beat, rounded.
func (t MusicalTime) AsFrames(tempo Tempo, sampleRate SampleRate) uint64 {
	tempoBps := tempo.Value() / 60.0
	if tempoBps == 0 {
		return 0
	}
	framesPerBeat := float64(sampleRate.Value()) / tempoBps
	beats := float64(t) / UnitsPerBeat
	frames := math.Round(beats * framesPerBeat)
	if frames < 0 {
		frames = 0
	}
	return uint64(frames)
}

func (t MusicalTime) Units() uint64 { return uint64(t) }

func (t MusicalTime) TotalBeats() uint64 { return uint64(t) / UnitsPerBeat }

func (t MusicalTime) TotalParts() uint64 { return uint64(t) / UnitsPerPart }

// Bar returns the zero-indexed bar this instant falls in, given a time
// signature (ts.Top beats per bar).
func (t MusicalTime) Bar(ts TimeSignature) uint64 {
	if ts.Top == 0 {
		return 0
	}
	return t.TotalBeats() / uint64(ts.Top)
}

// BeatWithinBar returns the zero-indexed beat within the current bar.
func (t MusicalTime) BeatWithinBar(ts TimeSignature) uint64 {
	if ts.Top == 0 {
		return 0
	}
	return t.TotalBeats() % uint64(ts.Top)
}

// PartWithinBeat returns the zero-indexed part (0..16) within the
// current beat.
func (t MusicalTime) PartWithinBeat() uint64 {
	return (uint64(t) % UnitsPerBeat) / UnitsPerPart
}

// UnitWithinPart returns the leftover unit count within the current part.
func (t MusicalTime) UnitWithinPart() uint64 {
	return uint64(t) % UnitsPerPart
}

// Add saturates at MusicalTime's max value; it never wraps negative.
func (t MusicalTime) Add(other MusicalTime) MusicalTime {
	sum := uint64(t) + uint64(other)
	if sum < uint64(t) {
		return MusicalTime(math.MaxUint64)
	}
	return MusicalTime(sum)
}

// Sub saturates at zero rather than going negative, matching the
// invariant that MusicalTime is never negative.
func (t MusicalTime) Sub(other MusicalTime) MusicalTime {
	if other > t {
		return 0
	}
	return t - other
}

func (t MusicalTime) Mul(factor uint64) MusicalTime {
	product := uint64(t) * factor
	return MusicalTime(product)
}

// Div floors; dividing by zero returns zero rather than panicking, since
// a render-tick caller must never be able to crash the engine on bad
// input (spec §7 isolates tick failures).
func (t MusicalTime) Div(divisor uint64) MusicalTime {
	if divisor == 0 {
		return 0
	}
	return t / MusicalTime(divisor)
}

func (t MusicalTime) Less(other MusicalTime) bool  { return t < other }
func (t MusicalTime) Equal(other MusicalTime) bool { return t == other }

// Range is a half-open [Start, End) span of MusicalTime, used as the
// render-tick's event window.
type Range struct {
	Start MusicalTime
	End   MusicalTime
}

func NewRange(start, end MusicalTime) Range { return Range{Start: start, End: end} }

// Contains reports whether t falls within [Start, End).
func (r Range) Contains(t MusicalTime) bool { return t >= r.Start && t < r.End }

// Intersects reports whether r and other overlap as half-open intervals.
func (r Range) Intersects(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

func (r Range) Duration() MusicalTime { return r.End.Sub(r.Start) }

// TimeSignature is (Top, Bottom) where Top is a positive beat count and
// Bottom is a power of two in [1, 512].
type TimeSignature struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// CommonTime is 4/4.
var CommonTime = TimeSignature{Top: 4, Bottom: 4}

// CutTime is 2/2.
var CutTime = TimeSignature{Top: 2, Bottom: 2}

// NewTimeSignature validates top > 0 and bottom is a power of two in
// [1, 512], returning engineerr.InvalidArgument otherwise.
func NewTimeSignature(top, bottom int) (TimeSignature, error) {
	if top < 1 {
		return TimeSignature{}, fmt.Errorf("time signature top must be positive, got %d: %w", top, engineerr.InvalidArgument)
	}
	if !isPowerOfTwoInRange(bottom, 1, 512) {
		return TimeSignature{}, fmt.Errorf("time signature bottom must be a power of two in [1,512], got %d: %w", bottom, engineerr.InvalidArgument)
	}
	return TimeSignature{Top: top, Bottom: bottom}, nil
}

func isPowerOfTwoInRange(n, lo, hi int) bool {
	if n < lo || n > hi {
		return false
	}
	return n&(n-1) == 0
}

// Tempo is a positive float in [0, 1024] BPM. Default 128.
type Tempo struct {
	bpm float64
}

const (
	MinTempo = 0.0
	MaxTempo = 1024.0
)

// DefaultTempo is 128 BPM.
var DefaultTempo = NewTempo(128.0)

// NewTempo clamps bpm into [MinTempo, MaxTempo].
func NewTempo(bpm float64) Tempo {
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}
	return Tempo{bpm: bpm}
}

func (t Tempo) Value() float64 { return t.bpm }

func (t Tempo) String() string { return fmt.Sprintf("%0.2f BPM", t.bpm) }

// TempoFromControlValue maps a ControlValue in [0,1] to [MinTempo, MaxTempo].
func TempoFromControlValue(v ControlValue) Tempo {
	return NewTempo(MinTempo + float64(v)*(MaxTempo-MinTempo))
}

// ControlValueFromTempo is the inverse mapping, used when reporting the
// current tempo as an automatable parameter's value.
func ControlValueFromTempo(t Tempo) ControlValue {
	if MaxTempo == MinTempo {
		return 0
	}
	return ControlValue((t.Value() - MinTempo) / (MaxTempo - MinTempo))
}

// SampleRate is a positive integer frames-per-second. Zero coerces to
// the default of 44,100.
type SampleRate struct {
	hz int
}

const DefaultSampleRateHz = 44100

func NewSampleRate(hz int) SampleRate {
	if hz <= 0 {
		hz = DefaultSampleRateHz
	}
	return SampleRate{hz: hz}
}

// DefaultSampleRate is 44,100 Hz.
var DefaultSampleRate = NewSampleRate(DefaultSampleRateHz)

func (s SampleRate) Value() int { return s.hz }
