package signal

import "github.com/schollz/collidertracker/internal/coretypes"

// Stage is the ADSR state machine's current phase.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
	StageShutdown
)

// MaxStageSeconds is the fixed ceiling a normalized [0,1] stage duration
// maps onto.
const MaxStageSeconds = 30.0

// ShutdownSeconds is the fixed duration of the fast linear ramp used by
// TriggerShutdown, about 1ms.
const ShutdownSeconds = 0.001

// Envelope is an ADSR generator with curve-shaped attack/decay/release
// segments (spec §4.4): Idle -> Attack -> Decay -> Sustain -> Release ->
// Idle, with a Shutdown override ramping to zero quickly from any stage.
type Envelope struct {
	sampleRate coretypes.SampleRate

	attackNorm  coretypes.Normal
	decayNorm   coretypes.Normal
	sustain     coretypes.Normal
	releaseNorm coretypes.Normal

	stage     Stage
	amplitude float64

	stageElapsed    float64
	stageDuration   float64
	stageStartValue float64
	stageEndValue   float64
	curveA          float64
	curveB          float64
	curveC          float64
}

// NewEnvelope returns an idle envelope with amplitude 0 and default
// stage parameters (instant attack/decay, full sustain, instant release).
func NewEnvelope(sampleRate coretypes.SampleRate) *Envelope {
	return &Envelope{
		sampleRate: sampleRate,
		sustain:    coretypes.NewNormal(1.0),
	}
}

func (e *Envelope) UpdateSampleRate(sr coretypes.SampleRate) { e.sampleRate = sr }

func (e *Envelope) SetAttack(n coretypes.Normal)  { e.attackNorm = n }
func (e *Envelope) SetDecay(n coretypes.Normal)   { e.decayNorm = n }
func (e *Envelope) SetSustain(n coretypes.Normal) { e.sustain = n }
func (e *Envelope) SetRelease(n coretypes.Normal) { e.releaseNorm = n }

// Amplitude reads the current output level without advancing state,
// e.g. for envelope-visualization metering (original_source's
// GeneratesEnvelope accessor).
func (e *Envelope) Amplitude() float64 { return e.amplitude }

func (e *Envelope) Stage() Stage { return e.stage }

func (e *Envelope) IsIdle() bool { return e.stage == StageIdle }

// TriggerAttack starts (or restarts) the attack segment from the
// envelope's current amplitude, so retriggering mid-release produces no
// click (spec §4.4).
func (e *Envelope) TriggerAttack() {
	e.beginSegment(StageAttack, e.amplitude, 1.0, e.attackNorm.Value()*MaxStageSeconds, curveConvex)
	if e.stageDuration <= 0 {
		e.amplitude = 1.0
		e.beginDecay()
	}
}

// TriggerRelease starts the release segment from whatever amplitude the
// envelope currently holds, with duration scaled by that starting level
// (Pirkle convention: as if the segment always traverses the full
// [0,1] range, even when only a fraction of it is actually covered).
func (e *Envelope) TriggerRelease() {
	start := e.amplitude
	duration := e.releaseNorm.Value() * start * MaxStageSeconds
	e.beginSegment(StageRelease, start, 0.0, duration, curveConcave)
	if e.stageDuration <= 0 {
		e.amplitude = 0
		e.stage = StageIdle
	}
}

// TriggerShutdown forces a fast linear ramp to zero from the current
// amplitude, used to kill a voice without an audible click.
func (e *Envelope) TriggerShutdown() {
	e.beginSegment(StageShutdown, e.amplitude, 0.0, ShutdownSeconds, curveLinear)
}

func (e *Envelope) beginDecay() {
	duration := e.decayNorm.Value() * (1 - e.sustain.Value()) * MaxStageSeconds
	e.beginSegment(StageDecay, 1.0, e.sustain.Value(), duration, curveConcave)
	if e.stageDuration <= 0 {
		e.amplitude = e.sustain.Value()
		e.stage = StageSustain
	}
}

func (e *Envelope) beginSegment(stage Stage, start, end, durationSeconds float64, shape curveShape) {
	e.stage = stage
	e.stageStartValue = start
	e.stageEndValue = end
	e.stageDuration = durationSeconds
	e.stageElapsed = 0
	e.curveA, e.curveB, e.curveC = shape.coefficients()
}

// Tick advances the envelope by one sample period and returns the new
// amplitude.
func (e *Envelope) Tick() float64 {
	sr := float64(e.sampleRate.Value())
	if sr <= 0 || e.stage == StageIdle || e.stage == StageSustain {
		if e.stage == StageSustain {
			e.amplitude = e.sustain.Value()
		}
		return e.amplitude
	}

	e.stageElapsed += 1.0 / sr
	t := e.stageElapsed / e.stageDuration
	if t >= 1.0 {
		e.amplitude = e.stageEndValue
		e.advanceStageAtEnd()
		return e.amplitude
	}

	shaped := clamp01(e.curveA*t*t + e.curveB*t + e.curveC)
	e.amplitude = e.stageStartValue + (e.stageEndValue-e.stageStartValue)*shaped
	return e.amplitude
}

func (e *Envelope) advanceStageAtEnd() {
	switch e.stage {
	case StageAttack:
		e.beginDecay()
	case StageDecay:
		e.stage = StageSustain
		e.amplitude = e.sustain.Value()
	case StageRelease, StageShutdown:
		e.stage = StageIdle
		e.amplitude = 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
