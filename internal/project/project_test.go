package project

import (
	"testing"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/instruments"
	"github.com/schollz/collidertracker/internal/midiwire"
	"github.com/schollz/collidertracker/internal/pattern"
	"github.com/schollz/collidertracker/internal/trackgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject() *Project {
	p := New()
	p.SetSampleRate(coretypes.NewSampleRate(44100))
	return p
}

func TestRenderTickSilentEmptyProject(t *testing.T) {
	p := newTestProject()
	p.Play()

	buf := make([]coretypes.StereoSample, 64)
	require.NoError(t, p.RenderTick(buf, nil))

	for _, s := range buf {
		assert.True(t, s.IsSilent())
	}
}

func TestRenderTickSingleNoteProducesSound(t *testing.T) {
	p := newTestProject()
	track := p.Orchestrator.AddTrack("lead", trackgraph.TrackKindMidi)

	voice := instruments.NewSynthVoice("voice", coretypes.NewSampleRate(44100))
	voice.SetUid(coretypes.Uid(10))
	require.NoError(t, p.Orchestrator.AddEntity(track, voice))
	p.MidiRouterForTrack(track).SetReceiverChannel(voice.Uid(), chanPtr(0))

	pat := pattern.NewPattern(coretypes.CommonTime)
	note, err := coretypes.NewNote(60, coretypes.Zero, coretypes.NewFromBeats(1))
	require.NoError(t, err)
	pat.AddNote(note)
	patUid := p.Composer.AddPattern(pat, nil)
	_, err = p.Composer.ArrangePattern(track, patUid, coretypes.Zero)
	require.NoError(t, err)

	p.Play()

	buf := make([]coretypes.StereoSample, 64)
	require.NoError(t, p.RenderTick(buf, nil))

	sawSound := false
	for _, s := range buf {
		if !s.IsSilent() {
			sawSound = true
		}
	}
	assert.True(t, sawSound, "note-on at time zero should produce sound starting this tick")
}

func TestRenderTickTwoTracksSoloSilencesTheOther(t *testing.T) {
	p := newTestProject()
	trackA := p.Orchestrator.AddTrack("a", trackgraph.TrackKindMidi)
	trackB := p.Orchestrator.AddTrack("b", trackgraph.TrackKindMidi)

	a := instruments.NewConstantSource("a", coretypes.StereoSample{Left: 0.5, Right: 0.5})
	a.SetUid(coretypes.Uid(1))
	b := instruments.NewConstantSource("b", coretypes.StereoSample{Left: 0.5, Right: 0.5})
	b.SetUid(coretypes.Uid(2))
	require.NoError(t, p.Orchestrator.AddEntity(trackA, a))
	require.NoError(t, p.Orchestrator.AddEntity(trackB, b))

	p.Mixer.SetSolo(&trackA)

	buf := make([]coretypes.StereoSample, 8)
	require.NoError(t, p.RenderTick(buf, nil))

	for _, s := range buf {
		assert.InDelta(t, 0.5, float64(s.Left), 1e-9)
	}
}

func TestRenderTickSendThroughNegatingEffectIsAudibleOnAux(t *testing.T) {
	p := newTestProject()
	src := p.Orchestrator.AddTrack("src", trackgraph.TrackKindMidi)
	aux := p.Orchestrator.AddTrack("bus", trackgraph.TrackKindAux)

	source := instruments.NewConstantSource("src", coretypes.StereoSample{Left: 0.4, Right: 0.4})
	source.SetUid(coretypes.Uid(1))
	require.NoError(t, p.Orchestrator.AddEntity(src, source))

	fx := instruments.NewNegatingEffect("neg")
	fx.SetUid(coretypes.Uid(2))
	require.NoError(t, p.Orchestrator.AddEntity(aux, fx))

	require.NoError(t, p.Mixer.AddSend(p.Orchestrator.TrackGraph(), src, aux, 1.0))
	p.Mixer.SetGain(src, coretypes.NewNormal(0))

	buf := make([]coretypes.StereoSample, 8)
	require.NoError(t, p.RenderTick(buf, nil))

	for _, s := range buf {
		assert.InDelta(t, -0.4, float64(s.Left), 1e-9)
	}
}

func TestRenderTickExternalMidiReachesEveryTrack(t *testing.T) {
	p := newTestProject()
	trackA := p.Orchestrator.AddTrack("a", trackgraph.TrackKindMidi)
	trackB := p.Orchestrator.AddTrack("b", trackgraph.TrackKindMidi)

	counterA := instruments.NewCounterInstrument("a")
	counterA.SetUid(coretypes.Uid(1))
	counterB := instruments.NewCounterInstrument("b")
	counterB.SetUid(coretypes.Uid(2))
	require.NoError(t, p.Orchestrator.AddEntity(trackA, counterA))
	require.NoError(t, p.Orchestrator.AddEntity(trackB, counterB))

	p.MidiRouterForTrack(trackA).SetReceiverChannel(counterA.Uid(), chanPtr(0))
	p.MidiRouterForTrack(trackB).SetReceiverChannel(counterB.Uid(), chanPtr(0))

	require.NoError(t, p.RouteExternalMidi(0, midiwire.NoteOn(0, 60, 100)))

	assert.Equal(t, uint64(1), counterA.Count())
	assert.Equal(t, uint64(1), counterB.Count())
}

func TestFillAudioQueueDrainsRenderedAudio(t *testing.T) {
	p := newTestProject()
	track := p.Orchestrator.AddTrack("a", trackgraph.TrackKindMidi)
	source := instruments.NewConstantSource("a", coretypes.StereoSample{Left: 0.1, Right: 0.1})
	source.SetUid(coretypes.Uid(1))
	require.NoError(t, p.Orchestrator.AddEntity(track, source))
	p.Play()

	require.NoError(t, p.FillAudioQueue(200, nil))

	out := p.DrainAudio(200)
	require.Len(t, out, 200)
	for _, s := range out {
		assert.InDelta(t, 0.1, float64(s.Left), 1e-9)
	}
}

func chanPtr(c midiwire.Channel) *midiwire.Channel { return &c }
