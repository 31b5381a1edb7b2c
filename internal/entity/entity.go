// Package entity defines the capability-interface set every polymorphic
// engine entity implements some subset of (spec §4.3), plus the
// capability-accessor helpers used instead of a class hierarchy.
package entity

import (
	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/midiwire"
)

// Entity is the minimum every engine component implements: identity and
// a display name. Everything else is an optional capability, queried
// with a type assertion (As* helpers below) rather than a method that
// must exist on every implementation.
type Entity interface {
	Uid() coretypes.Uid
	SetUid(coretypes.Uid)
	Name() string
	KindKey() string
}

// Configurable receives global parameter changes whenever they occur; an
// implementation may cache values it needs on its hot path.
type Configurable interface {
	UpdateSampleRate(coretypes.SampleRate)
	UpdateTempo(coretypes.Tempo)
	UpdateTimeSignature(coretypes.TimeSignature)
}

// Controller produces WorkEvents during a render tick.
type Controller interface {
	UpdateTimeRange(coretypes.Range)
	Work(emit EmitFunc)
	IsFinished() bool
	Play()
	Stop()
	SkipToStart()
	IsPerforming() bool
}

// Instrument generates audio. Generate is additive: it must sum into buf
// without first clearing it, so multiple instruments on one track can
// write into the same buffer.
type Instrument interface {
	Generate(buf []coretypes.StereoSample)
}

// Effect transforms audio one sample at a time; any internal state
// (filter memory, LFO phase, ...) is carried across calls.
type Effect interface {
	TransformAudio(coretypes.StereoSample) coretypes.StereoSample
}

// HandlesMidi receives a MIDI message and may emit further MIDI via fn,
// which the MIDI router observes for loop detection (spec §4.5).
type HandlesMidi interface {
	HandleMidiMessage(channel midiwire.Channel, msg midiwire.Message, emit MidiEmitFunc)
}

// Controllable exposes a small set of indexed, automatable parameters.
type Controllable interface {
	ControlIndexCount() int
	ControlNameForIndex(coretypes.ControlIndex) string
	ControlSetParamByIndex(coretypes.ControlIndex, coretypes.ControlValue)
}

// DisplaysInTimeline marks an entity as visible on the arrangement
// timeline (a UI-facing capability; the core only needs to know it's
// present so a timeline view can be built from the entity store).
type DisplaysInTimeline interface {
	DisplayColor() string
}

// Serializable entities round-trip their internal state through the
// project's save/load tree (spec §6).
type Serializable interface {
	MarshalState() ([]byte, error)
	UnmarshalState([]byte) error
}

// AsConfigurable, AsController, ... are the capability-accessor pattern
// spec.md's design notes call for: a downcast without a class hierarchy.

func AsConfigurable(e Entity) (Configurable, bool) { c, ok := e.(Configurable); return c, ok }
func AsController(e Entity) (Controller, bool)     { c, ok := e.(Controller); return c, ok }
func AsInstrument(e Entity) (Instrument, bool)     { i, ok := e.(Instrument); return i, ok }
func AsEffect(e Entity) (Effect, bool)             { fx, ok := e.(Effect); return fx, ok }
func AsHandlesMidi(e Entity) (HandlesMidi, bool)   { h, ok := e.(HandlesMidi); return h, ok }
func AsControllable(e Entity) (Controllable, bool) { c, ok := e.(Controllable); return c, ok }
func AsDisplaysInTimeline(e Entity) (DisplaysInTimeline, bool) {
	d, ok := e.(DisplaysInTimeline)
	return d, ok
}
func AsSerializable(e Entity) (Serializable, bool) { s, ok := e.(Serializable); return s, ok }

// Base is an embeddable struct giving concrete entities their Uid/Name/
// KindKey bookkeeping, matching spec.md's "every entity has a Uid, a
// display name, a kind key" baseline.
type Base struct {
	uid     coretypes.Uid
	name    string
	kindKey string
}

func NewBase(name, kindKey string) Base {
	return Base{name: name, kindKey: kindKey}
}

func (b *Base) Uid() coretypes.Uid     { return b.uid }
func (b *Base) SetUid(u coretypes.Uid) { b.uid = u }
func (b *Base) Name() string           { return b.name }
func (b *Base) KindKey() string        { return b.kindKey }
