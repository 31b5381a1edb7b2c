package entity

import (
	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/midiwire"
)

// WorkEventKind discriminates a WorkEvent's payload. Control events and
// MIDI events are always kept on two distinct dispatch paths; they must
// never share a router.
type WorkEventKind int

const (
	// WorkEventMidi is an unattributed MIDI event. Spec.md treats a
	// controller that emits this (instead of MidiForTrack) as a
	// programming error — the project logs and drops it rather than
	// guessing a track.
	WorkEventMidi WorkEventKind = iota
	// WorkEventMidiForTrack carries a MIDI message destined for one
	// track's MIDI router.
	WorkEventMidiForTrack
	// WorkEventControl carries a control value destined for the
	// control router, dispatched by the emitting entity's Uid.
	WorkEventControl
)

// WorkEvent is produced by a Controller's Work call.
type WorkEvent struct {
	Kind     WorkEventKind
	Channel  midiwire.Channel
	Message  midiwire.Message
	TrackUid coretypes.TrackUid
	Value    coretypes.ControlValue
}

func MidiForTrack(track coretypes.TrackUid, channel midiwire.Channel, msg midiwire.Message) WorkEvent {
	return WorkEvent{Kind: WorkEventMidiForTrack, TrackUid: track, Channel: channel, Message: msg}
}

func Control(v coretypes.ControlValue) WorkEvent {
	return WorkEvent{Kind: WorkEventControl, Value: v}
}

// EmitFunc is how a Controller reports WorkEvents during Work.
type EmitFunc func(WorkEvent)

// MidiEmitFunc is how a HandlesMidi implementation reports further MIDI
// produced while handling an inbound message.
type MidiEmitFunc func(channel midiwire.Channel, msg midiwire.Message)
