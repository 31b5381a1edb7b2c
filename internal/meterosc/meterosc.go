// Package meterosc broadcasts post-mix per-track peak levels as OSC
// messages, an optional external meter-bridge sink the project can
// attach after a render tick. Adapted from the teacher's
// oscClient/SendOSC*Message dispatcher pattern and its /track_volume
// handler.
package meterosc

import (
	"log"

	"github.com/hypebeast/go-osc/osc"

	"github.com/schollz/collidertracker/internal/coretypes"
)

// messageConfig mirrors the teacher's OSCMessageConfig: address,
// positional parameters, and an optional log line.
type messageConfig struct {
	Address    string
	Parameters []interface{}
	LogFormat  string
	LogArgs    []interface{}
}

// Broadcaster sends one OSC message per track's peak level. A nil
// client is a valid, inert broadcaster (meter output is optional).
type Broadcaster struct {
	client *osc.Client
}

// New returns a broadcaster sending to host:port.
func New(host string, port int) *Broadcaster {
	return &Broadcaster{client: osc.NewClient(host, port)}
}

// PeakLevel returns the maximum absolute sample across both channels of
// buf, the value SendTrackVolume reports for a track this tick.
func PeakLevel(buf []coretypes.StereoSample) float32 {
	var peak float32
	for _, s := range buf {
		if v := float32(s.Left); abs32(v) > peak {
			peak = abs32(v)
		}
		if v := float32(s.Right); abs32(v) > peak {
			peak = abs32(v)
		}
	}
	return peak
}

// SendTrackVolume broadcasts /track_volume with the track index and its
// peak level for this tick, matching the teacher's /track_volume
// message shape (one float32 argument per track).
func (b *Broadcaster) SendTrackVolume(track coretypes.TrackUid, peak float32) {
	b.send(messageConfig{
		Address:    "/track_volume",
		Parameters: []interface{}{int32(track), peak},
		LogFormat:  "OSC track volume sent: /track_volume %d %.3f",
		LogArgs:    []interface{}{track, peak},
	})
}

func (b *Broadcaster) send(config messageConfig) {
	if b.client == nil {
		return
	}

	msg := osc.NewMessage(config.Address)
	for _, param := range config.Parameters {
		msg.Append(param)
	}

	if err := b.client.Send(msg); err != nil {
		log.Printf("[meterosc] error sending OSC message to %s: %v", config.Address, err)
		return
	}
	if config.LogFormat != "" {
		log.Printf(config.LogFormat, config.LogArgs...)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
