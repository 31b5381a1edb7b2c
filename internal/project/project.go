// Package project ties the transport, orchestrator (entity store +
// track graph), automator (control router), composer, and mixer
// together into the render tick spec §4.11 describes, and exposes the
// fixed-chunk audio queue spec §6 calls fill_audio_queue.
package project

import (
	"log"

	"github.com/schollz/collidertracker/internal/composer"
	"github.com/schollz/collidertracker/internal/controlrouter"
	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/midirouter"
	"github.com/schollz/collidertracker/internal/midiwire"
	"github.com/schollz/collidertracker/internal/mixer"
	"github.com/schollz/collidertracker/internal/trackgraph"
	"github.com/schollz/collidertracker/internal/transport"
)

// renderChunkFrames is the engine's fixed internal render buffer size
// (spec §6): FillAudioQueue always renders in chunks of this size, the
// last one short if n isn't a multiple of it.
const renderChunkFrames = 64

// MidiOutFunc receives every MIDI message a render tick routes, so a
// caller can forward it to an external MIDI output.
type MidiOutFunc func(midiwire.Channel, midiwire.Message)

// Project is the engine's top-level owner: everything a render tick
// touches hangs off one of these fields.
type Project struct {
	Title string

	Transport    *transport.Transport
	Orchestrator *Orchestrator
	Automator    *controlrouter.Router
	Composer     *composer.Composer
	Mixer        *mixer.Mixer

	midiRouters *midirouter.MultiRouter
	ring        *AudioRing

	finished bool
}

// New returns an empty project: no tracks, no entities, stopped
// transport, default tempo/time-signature/sample-rate.
func New() *Project {
	return &Project{
		Title:        "untitled",
		Transport:    transport.New(),
		Orchestrator: NewOrchestrator(),
		Automator:    controlrouter.New(),
		Composer:     composer.New(),
		Mixer:        mixer.New(),
		midiRouters:  midirouter.NewMultiRouter(),
		ring:         NewAudioRing(renderChunkFrames * 64),
	}
}

// SetSampleRate, SetTempo, SetTimeSignature update the transport and
// fan the new value out to every Configurable entity (spec §4.11: a
// global parameter change is always propagated this way, never read
// directly off the transport by an entity).
func (p *Project) SetSampleRate(sr coretypes.SampleRate) {
	p.Transport.UpdateSampleRate(sr)
	p.Orchestrator.UpdateSampleRate(sr)
}

func (p *Project) SetTempo(tempo coretypes.Tempo) {
	p.Transport.UpdateTempo(tempo)
	p.Orchestrator.UpdateTempo(tempo)
}

func (p *Project) SetTimeSignature(ts coretypes.TimeSignature) {
	p.Transport.UpdateTimeSignature(ts)
	p.Orchestrator.UpdateTimeSignature(ts)
}

// Play, Stop, SkipToStart start/stop the transport, composer, and every
// Controller entity together.
func (p *Project) Play() {
	p.Transport.Play()
	p.Composer.Play()
	p.Orchestrator.Play()
}

func (p *Project) Stop() {
	p.Transport.Stop()
	p.Composer.Stop()
	p.Orchestrator.Stop()
}

func (p *Project) SkipToStart() {
	p.Transport.SkipToStart()
	p.Composer.SkipToStart()
	p.Orchestrator.SkipToStart()
	p.finished = false
}

// IsFinished reports whether both the composer and every controller
// entity have played past their content (spec §4.11 step 8).
func (p *Project) IsFinished() bool {
	return p.finished
}

// MidiRouterForTrack returns track's MIDI router, creating it on first
// use, so callers can wire subscriptions (SetReceiverChannel) ahead of
// the first render tick.
func (p *Project) MidiRouterForTrack(track coretypes.TrackUid) *midirouter.Router {
	return p.midiRouters.RouterForTrack(track)
}

// RouteExternalMidi fans an externally-received MIDI message out to
// every track's router (spec §4.5).
func (p *Project) RouteExternalMidi(channel midiwire.Channel, message midiwire.Message) error {
	return p.midiRouters.RouteExternal(p.Orchestrator, channel, message)
}

type sourcedEvent struct {
	source coretypes.Uid
	event  entity.WorkEvent
}

// RenderTick runs one full render-tick pass over buf (spec §4.11):
// advance the transport, broadcast the new time range, collect work
// events from the composer and every controller entity, dispatch each
// one (MIDI to its track's router, control values to the automator),
// generate and mix every track's audio into buf, and finally check
// whether playback has finished.
func (p *Project) RenderTick(buf []coretypes.StereoSample, midiOut MidiOutFunc) error {
	n := uint64(len(buf))
	r := p.Transport.Advance(n)

	p.Composer.UpdateTimeRange(r)
	p.Orchestrator.UpdateTimeRange(r)

	var events []sourcedEvent
	p.Composer.Work(func(ev entity.WorkEvent) {
		events = append(events, sourcedEvent{source: coretypes.ProjectRootUid, event: ev})
	})
	for _, e := range p.Orchestrator.Entities() {
		ctrl, ok := entity.AsController(e)
		if !ok {
			continue
		}
		uid := e.Uid()
		ctrl.Work(func(ev entity.WorkEvent) {
			events = append(events, sourcedEvent{source: uid, event: ev})
		})
	}

	var firstErr error
	for _, se := range events {
		switch se.event.Kind {
		case entity.WorkEventMidi:
			log.Printf("[project] dropping unattributed midi event from uid=%d, controller must emit MidiForTrack", se.source)
		case entity.WorkEventMidiForTrack:
			router := p.midiRouters.RouterForTrack(se.event.TrackUid)
			if err := router.Route(p.Orchestrator, se.event.Channel, se.event.Message); err != nil && firstErr == nil {
				firstErr = err
			}
			if midiOut != nil {
				midiOut(se.event.Channel, se.event.Message)
			}
		case entity.WorkEventControl:
			p.Automator.Route(p.Orchestrator, se.source, se.event.Value, func(link coretypes.ControlLink) {
				if link.TargetUid == coretypes.TransportUid {
					p.Transport.ControlSetParamByIndex(link.Param, se.event.Value)
				}
			})
		}
	}

	p.mixTick(buf)

	if p.Composer.IsFinished() && p.Orchestrator.IsFinished() {
		p.finished = true
	}

	return firstErr
}

// mixTick implements the render tick's audio-generation half (spec
// §4.11 steps 4-7): generate and effect-process every contributing
// non-aux track, sum sends into their destination aux tracks, effect-
// process each aux track, then sum everything (scaled by per-track
// gain) into buf.
func (p *Project) mixTick(buf []coretypes.StereoSample) {
	n := len(buf)
	tracks := p.Orchestrator.AllTracks()

	trackBuffers := make(map[coretypes.TrackUid][]coretypes.StereoSample)
	auxBuffers := make(map[coretypes.TrackUid][]coretypes.StereoSample)

	for _, tr := range tracks {
		if tr.Kind == trackgraph.TrackKindAux {
			auxBuffers[tr.Uid] = make([]coretypes.StereoSample, n)
			continue
		}
		if !p.Mixer.Contributes(tr.Uid) {
			continue
		}
		tbuf := make([]coretypes.StereoSample, n)
		p.Orchestrator.GenerateInstruments(tr.Uid, tbuf)
		p.Orchestrator.ApplyEffects(tr.Uid, tbuf, p.Mixer)
		trackBuffers[tr.Uid] = tbuf
	}

	for src, tbuf := range trackBuffers {
		for _, send := range p.Mixer.Sends(src) {
			dst, ok := auxBuffers[send.DstTrack]
			if !ok {
				continue
			}
			for i := range dst {
				dst[i] = dst[i].Add(tbuf[i].Scale(send.Amount))
			}
		}
	}

	for _, tr := range tracks {
		if tr.Kind != trackgraph.TrackKindAux {
			continue
		}
		p.Orchestrator.ApplyEffects(tr.Uid, auxBuffers[tr.Uid], p.Mixer)
	}

	for i := range buf {
		buf[i] = coretypes.SilenceStereo
	}
	for _, tr := range tracks {
		if !p.Mixer.Contributes(tr.Uid) {
			continue
		}
		var src []coretypes.StereoSample
		if tr.Kind == trackgraph.TrackKindAux {
			src = auxBuffers[tr.Uid]
		} else {
			src = trackBuffers[tr.Uid]
		}
		if src == nil {
			continue
		}
		gain := p.Mixer.Gain(tr.Uid).Value()
		for i := range buf {
			buf[i] = buf[i].Add(src[i].Scale(gain))
		}
	}
}

// FillAudioQueue renders n frames in fixed-size chunks, pushing each
// rendered sample into the internal audio ring and forwarding any MIDI
// emitted during the tick to midiOut. All n frames are rendered even
// after the project reports finished.
func (p *Project) FillAudioQueue(n int, midiOut MidiOutFunc) error {
	chunk := make([]coretypes.StereoSample, renderChunkFrames)
	remaining := n

	for remaining > 0 {
		this := renderChunkFrames
		if remaining < this {
			this = remaining
		}
		if err := p.RenderTick(chunk[:this], midiOut); err != nil {
			log.Printf("[project] render tick error: %v", err)
		}
		for _, s := range chunk[:this] {
			p.ring.Push(s)
		}
		remaining -= this
	}
	return nil
}

// DrainAudio removes up to n rendered samples from the internal ring.
func (p *Project) DrainAudio(n int) []coretypes.StereoSample {
	return p.ring.Drain(n)
}
