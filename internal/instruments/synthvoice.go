// Package instruments provides the reference entities that exercise
// internal/signal through the entity capability set: a monophonic
// oscillator+envelope synth voice, plus small instruments and effects
// used as test fixtures for the mixer and router scenarios spec §8
// names (a constant-output source, a MIDI-counting instrument, a
// negating effect, and a gain/pan effect).
package instruments

import (
	"encoding/json"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/midiwire"
	"github.com/schollz/collidertracker/internal/signal"
)

// SynthVoice is a monophonic oscillator-driven instrument: NoteOn
// retunes the oscillator and triggers the envelope's attack, NoteOff on
// the held key triggers release. It implements Configurable, Instrument,
// HandlesMidi, Controllable, DisplaysInTimeline, and Serializable.
type SynthVoice struct {
	entity.Base

	osc *signal.Oscillator
	env *signal.Envelope

	gain coretypes.Normal

	heldKey  uint8
	noteHeld bool
}

// NewSynthVoice constructs a sine-wave voice at unity gain, full
// sustain, and instant attack/decay/release.
func NewSynthVoice(name string, sampleRate coretypes.SampleRate) *SynthVoice {
	env := signal.NewEnvelope(sampleRate)
	env.SetSustain(coretypes.NewNormal(1.0))
	return &SynthVoice{
		Base: entity.NewBase(name, "synth_voice"),
		osc:  signal.NewOscillator(signal.WaveformSine, sampleRate),
		env:  env,
		gain: coretypes.NewNormal(1.0),
	}
}

// UpdateSampleRate, UpdateTempo, UpdateTimeSignature implement
// entity.Configurable. The voice only cares about sample rate.
func (v *SynthVoice) UpdateSampleRate(sr coretypes.SampleRate) {
	v.osc.UpdateSampleRate(sr)
	v.env.UpdateSampleRate(sr)
}
func (v *SynthVoice) UpdateTempo(coretypes.Tempo)                 {}
func (v *SynthVoice) UpdateTimeSignature(coretypes.TimeSignature) {}

// Generate implements entity.Instrument: additive, mono panned equally
// to both channels, silent while the envelope is idle.
func (v *SynthVoice) Generate(buf []coretypes.StereoSample) {
	if v.env.IsIdle() {
		return
	}
	for i := range buf {
		amp := v.env.Tick()
		s := v.osc.Tick().Value() * amp * v.gain.Value()
		buf[i] = buf[i].Add(coretypes.StereoSample{
			Left:  coretypes.Sample(s),
			Right: coretypes.Sample(s),
		})
	}
}

// HandleMidiMessage implements entity.HandlesMidi: NoteOn (velocity>0)
// retunes and attacks; NoteOn with velocity 0 or NoteOff matching the
// held key releases.
func (v *SynthVoice) HandleMidiMessage(_ midiwire.Channel, msg midiwire.Message, _ entity.MidiEmitFunc) {
	if ch, key, velocity, ok := midiwire.AsNoteOn(msg); ok {
		_ = ch
		if velocity == 0 {
			if v.noteHeld && key == v.heldKey {
				v.env.TriggerRelease()
				v.noteHeld = false
			}
			return
		}
		v.osc.SetFrequency(coretypes.FrequencyFromMidiKey(float64(key)))
		v.env.TriggerAttack()
		v.heldKey = key
		v.noteHeld = true
		return
	}
	if _, key, _, ok := midiwire.AsNoteOff(msg); ok {
		if v.noteHeld && key == v.heldKey {
			v.env.TriggerRelease()
			v.noteHeld = false
		}
	}
}

// Controllable indices.
const (
	ControlGain = coretypes.ControlIndex(iota)
	ControlAttack
	ControlDecay
	ControlSustain
	ControlRelease
)

func (v *SynthVoice) ControlIndexCount() int { return 5 }

func (v *SynthVoice) ControlNameForIndex(i coretypes.ControlIndex) string {
	switch i {
	case ControlGain:
		return "gain"
	case ControlAttack:
		return "attack"
	case ControlDecay:
		return "decay"
	case ControlSustain:
		return "sustain"
	case ControlRelease:
		return "release"
	default:
		return ""
	}
}

func (v *SynthVoice) ControlSetParamByIndex(i coretypes.ControlIndex, value coretypes.ControlValue) {
	n := coretypes.NewNormal(value.Value())
	switch i {
	case ControlGain:
		v.gain = n
	case ControlAttack:
		v.env.SetAttack(n)
	case ControlDecay:
		v.env.SetDecay(n)
	case ControlSustain:
		v.env.SetSustain(n)
	case ControlRelease:
		v.env.SetRelease(n)
	}
}

// DisplayColor implements entity.DisplaysInTimeline.
func (v *SynthVoice) DisplayColor() string { return "#5fb3ff" }

type synthVoiceState struct {
	Gain float64 `json:"gain"`
}

// MarshalState and UnmarshalState implement entity.Serializable,
// round-tripping the voice's user-facing parameter (gain) through the
// project save tree; envelope/oscillator transient state is not
// persisted (spec §6 only round-trips static configuration).
func (v *SynthVoice) MarshalState() ([]byte, error) {
	b, err := json.Marshal(synthVoiceState{Gain: v.gain.Value()})
	if err != nil {
		return nil, engineerr.WrapSerialization(err)
	}
	return b, nil
}

func (v *SynthVoice) UnmarshalState(data []byte) error {
	var s synthVoiceState
	if err := json.Unmarshal(data, &s); err != nil {
		return engineerr.WrapSerialization(err)
	}
	v.gain = coretypes.NewNormal(s.Gain)
	return nil
}
