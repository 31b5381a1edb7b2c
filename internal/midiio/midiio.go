// Package midiio is the external MIDI output adapter spec §6 names as
// the MIDIOut collaborator: a project.MidiOutFunc sink that forwards
// channel-voice messages to a real hardware or virtual MIDI port.
// Adapted from the teacher's midiconnector package, generalized from
// raw NoteOn/NoteOff byte triplets to the engine's midiwire.Message type.
package midiio

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/schollz/collidertracker/internal/midiwire"
)

var mutex sync.Mutex
var devicesOpen = make(map[string]drivers.Out)

// Device is one opened MIDI output port.
type Device struct {
	name string
}

// matchName resolves a user-supplied device name (possibly partial)
// against candidates: exact match on the first three words, then prefix
// match, then substring match, in that order.
func matchName(candidates []string, name string) (string, bool) {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	truncated := strings.Join(words, " ")

	for _, n := range candidates {
		if strings.EqualFold(n, truncated) {
			return n, true
		}
	}
	for _, n := range candidates {
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(truncated)) {
			return n, true
		}
	}
	for _, n := range candidates {
		if strings.Contains(strings.ToLower(n), strings.ToLower(truncated)) {
			return n, true
		}
	}
	return "", false
}

func filterName(name string) (string, error) {
	found, ok := matchName(Devices(), name)
	if !ok {
		return "", fmt.Errorf("could not find device with name %s", name)
	}
	return found, nil
}

// New resolves name to an available output port without opening it.
func New(name string) (*Device, error) {
	found, err := filterName(name)
	if err != nil {
		return nil, err
	}
	return &Device{name: found}, nil
}

// Close closes every device this process has opened.
func Close() {
	mutex.Lock()
	defer mutex.Unlock()
	for name, out := range devicesOpen {
		out.Close()
		delete(devicesOpen, name)
	}
}

// Open opens d's underlying MIDI port, a no-op if already open.
func (d *Device) Open() error {
	mutex.Lock()
	defer mutex.Unlock()
	if _, ok := devicesOpen[d.name]; ok {
		return nil
	}
	out, err := midi.FindOutPort(d.name)
	if err != nil {
		return err
	}
	if err := out.Open(); err != nil {
		return err
	}
	devicesOpen[d.name] = out
	return nil
}

// Close closes d's port.
func (d *Device) Close() error {
	mutex.Lock()
	defer mutex.Unlock()
	out, ok := devicesOpen[d.name]
	if !ok {
		return nil
	}
	err := out.Close()
	delete(devicesOpen, d.name)
	return err
}

// Send implements the project.MidiOutFunc signature: forward one
// channel-voice message to d's open port. Errors are logged rather than
// propagated, since a render tick's MIDI fan-out never halts on one
// malfunctioning sink.
func (d *Device) Send(channel midiwire.Channel, msg midiwire.Message) {
	mutex.Lock()
	out, ok := devicesOpen[d.name]
	mutex.Unlock()
	if !ok {
		return
	}
	if err := out.Send(msg); err != nil {
		log.Printf("[midiio] send error on device %s: %v", d.name, err)
	}
}

// Devices lists the names of every available MIDI output port.
func Devices() []string {
	var devices []string
	for _, out := range midi.GetOutPorts() {
		devices = append(devices, out.String())
	}
	return devices
}
