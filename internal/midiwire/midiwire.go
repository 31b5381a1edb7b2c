// Package midiwire carries MIDI channel-voice messages on WorkEvents,
// backed by gitlab.com/gomidi/midi/v2's message encoding.
package midiwire

import "gitlab.com/gomidi/midi/v2"

// Channel is a MIDI channel number, 0-15.
type Channel = uint8

// Message is a raw MIDI channel-voice message, encoded via gomidi.
type Message = midi.Message

// NoteOn builds a Note On message with the given velocity.
func NoteOn(channel Channel, key uint8, velocity uint8) Message {
	return midi.NoteOn(channel, key, velocity)
}

// NoteOff builds a Note Off message.
func NoteOff(channel Channel, key uint8) Message {
	return midi.NoteOff(channel, key)
}

// ControlChange builds a CC message.
func ControlChange(channel Channel, controller uint8, value uint8) Message {
	return midi.ControlChange(channel, controller, value)
}

// AsNoteOn reports whether m is a Note On (and with what key/velocity).
func AsNoteOn(m Message) (channel Channel, key, velocity uint8, ok bool) {
	ok = m.GetNoteOn(&channel, &key, &velocity)
	return
}

// AsNoteOff reports whether m is a Note Off (and with what key).
func AsNoteOff(m Message) (channel Channel, key, velocity uint8, ok bool) {
	ok = m.GetNoteOff(&channel, &key, &velocity)
	return
}
