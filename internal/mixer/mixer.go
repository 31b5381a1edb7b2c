// Package mixer implements per-track gain/mute/solo, per-effect
// humidity (wet/dry) blending, and non-aux -> aux bus sends (spec
// §4.10).
package mixer

import (
	"fmt"
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/trackgraph"
)

// BusRoute is one send: scale the source track's buffer by Amount and
// add it into the destination aux track's input buffer.
type BusRoute struct {
	DstTrack coretypes.TrackUid
	Amount   float64
}

// Mixer holds per-track and per-effect mixing state. It does not own
// audio buffers; the project's render tick calls into it per-sample and
// per-track.
type Mixer struct {
	mu sync.Mutex

	gain     map[coretypes.TrackUid]coretypes.Normal
	mute     map[coretypes.TrackUid]bool
	solo     *coretypes.TrackUid
	sends    map[coretypes.TrackUid][]BusRoute
	humidity map[coretypes.Uid]coretypes.Normal
}

// New returns a mixer with no tracks configured yet; Gain defaults to
// 1.0 and Humidity defaults to 1.0 (fully wet) for any track/effect not
// explicitly set.
func New() *Mixer {
	return &Mixer{
		gain:     make(map[coretypes.TrackUid]coretypes.Normal),
		mute:     make(map[coretypes.TrackUid]bool),
		sends:    make(map[coretypes.TrackUid][]BusRoute),
		humidity: make(map[coretypes.Uid]coretypes.Normal),
	}
}

// Gain returns track's output gain, defaulting to 1.0.
func (m *Mixer) Gain(track coretypes.TrackUid) coretypes.Normal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.gain[track]; ok {
		return g
	}
	return coretypes.NewNormal(1.0)
}

func (m *Mixer) SetGain(track coretypes.TrackUid, gain coretypes.Normal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain[track] = gain
}

func (m *Mixer) Mute(track coretypes.TrackUid) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mute[track]
}

func (m *Mixer) SetMute(track coretypes.TrackUid, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mute[track] = muted
}

// SoloTrack returns the project-wide solo'd track, if any.
func (m *Mixer) SoloTrack() (coretypes.TrackUid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.solo == nil {
		return 0, false
	}
	return *m.solo, true
}

// SetSolo sets (or, with nil, clears) the single project-wide solo.
func (m *Mixer) SetSolo(track *coretypes.TrackUid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solo = track
}

// Contributes reports whether track should be summed into the output
// this tick: solo.is_none() || solo == Some(track), and mute == false.
func (m *Mixer) Contributes(track coretypes.TrackUid) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.solo != nil && *m.solo != track {
		return false
	}
	return !m.mute[track]
}

// Humidity returns effectUid's wet/dry blend amount, defaulting to 1.0
// (fully wet, i.e. untouched passthrough of the effect's own output).
func (m *Mixer) Humidity(effectUid coretypes.Uid) coretypes.Normal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.humidity[effectUid]; ok {
		return h
	}
	return coretypes.NewNormal(1.0)
}

func (m *Mixer) SetHumidity(effectUid coretypes.Uid, h coretypes.Normal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.humidity[effectUid] = h
}

// Blend combines a pre-effect sample (dry) and an effect's output (wet)
// by effectUid's humidity: y*h + x*(1-h).
func (m *Mixer) Blend(effectUid coretypes.Uid, dry, wet coretypes.StereoSample) coretypes.StereoSample {
	h := m.Humidity(effectUid).Value()
	return coretypes.StereoSample{
		Left:  wet.Left*coretypes.Sample(h) + dry.Left*coretypes.Sample(1-h),
		Right: wet.Right*coretypes.Sample(h) + dry.Right*coretypes.Sample(1-h),
	}
}

// AddSend registers a send from src to dst scaled by amount. Only
// non-aux -> aux sends are supported; both an aux source and a non-aux
// destination are rejected with engineerr.InvalidArgument.
func (m *Mixer) AddSend(graph *trackgraph.Graph, src, dst coretypes.TrackUid, amount float64) error {
	srcTrack, ok := graph.Track(src)
	if !ok {
		return fmt.Errorf("send source track %d: %w", src, engineerr.NotFound)
	}
	dstTrack, ok := graph.Track(dst)
	if !ok {
		return fmt.Errorf("send destination track %d: %w", dst, engineerr.NotFound)
	}
	if srcTrack.Kind == trackgraph.TrackKindAux {
		return fmt.Errorf("aux track %d cannot be a send source: %w", src, engineerr.InvalidArgument)
	}
	if dstTrack.Kind != trackgraph.TrackKindAux {
		return fmt.Errorf("send destination track %d is not an aux track: %w", dst, engineerr.InvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends[src] = append(m.sends[src], BusRoute{DstTrack: dst, Amount: amount})
	return nil
}

// Sends returns a copy of src's configured bus routes.
func (m *Mixer) Sends(src coretypes.TrackUid) []BusRoute {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BusRoute(nil), m.sends[src]...)
}

// AllGains, AllMutes, AllSends, and AllHumidity return shallow copies of
// the whole respective table, for serialization. Tracks/effects at
// their default value are simply absent from the map.

func (m *Mixer) AllGains() map[coretypes.TrackUid]coretypes.Normal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[coretypes.TrackUid]coretypes.Normal, len(m.gain))
	for k, v := range m.gain {
		out[k] = v
	}
	return out
}

func (m *Mixer) AllMutes() map[coretypes.TrackUid]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[coretypes.TrackUid]bool, len(m.mute))
	for k, v := range m.mute {
		out[k] = v
	}
	return out
}

func (m *Mixer) AllSends() map[coretypes.TrackUid][]BusRoute {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[coretypes.TrackUid][]BusRoute, len(m.sends))
	for k, v := range m.sends {
		out[k] = append([]BusRoute(nil), v...)
	}
	return out
}

func (m *Mixer) AllHumidity() map[coretypes.Uid]coretypes.Normal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[coretypes.Uid]coretypes.Normal, len(m.humidity))
	for k, v := range m.humidity {
		out[k] = v
	}
	return out
}
