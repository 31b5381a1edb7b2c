package serialize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/instruments"
	"github.com/schollz/collidertracker/internal/pattern"
	"github.com/schollz/collidertracker/internal/project"
	"github.com/schollz/collidertracker/internal/registry"
	"github.com/schollz/collidertracker/internal/trackgraph"
)

func synthVoiceRegistry(t *testing.T) *registry.Sealed {
	t.Helper()
	r := registry.New(coretypes.NewUidFactory())
	require.NoError(t, r.Register("synth_voice", func() entity.Entity {
		return instruments.NewSynthVoice("voice", coretypes.DefaultSampleRate)
	}))
	return r.Seal()
}

func TestSaveLoadRoundTripsTitleTempoAndTimeSignature(t *testing.T) {
	p := project.New()
	p.Title = "demo song"
	p.SetTempo(coretypes.NewTempo(140))
	ts, err := coretypes.NewTimeSignature(3, 4)
	require.NoError(t, err)
	p.SetTimeSignature(ts)

	sealed := registry.New(coretypes.NewUidFactory()).Seal()

	var buf bytes.Buffer
	require.NoError(t, Save(p, nil, nil, &buf))

	loaded, err := Load(&buf, sealed)
	require.NoError(t, err)

	assert.Equal(t, "demo song", loaded.Title)
	assert.Equal(t, 140.0, loaded.Transport.Tempo().Value())
	assert.Equal(t, coretypes.TimeSignature{Top: 3, Bottom: 4}, loaded.Transport.TimeSignature())
}

func TestSaveLoadRoundTripsTracksAndEntityState(t *testing.T) {
	p := project.New()
	track := p.Orchestrator.AddTrack("lead", trackgraph.TrackKindMidi)
	voice := instruments.NewSynthVoice("lead voice", coretypes.DefaultSampleRate)
	voice.SetUid(coretypes.Uid(50))
	voice.ControlSetParamByIndex(instruments.ControlGain, coretypes.NewControlValue(0.3))
	require.NoError(t, p.Orchestrator.AddEntity(track, voice))

	sealed := synthVoiceRegistry(t)

	var buf bytes.Buffer
	require.NoError(t, Save(p, nil, nil, &buf))

	loaded, err := Load(&buf, sealed)
	require.NoError(t, err)

	tracks := loaded.Orchestrator.AllTracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, "lead", tracks[0].Name)
	require.Len(t, tracks[0].Instruments, 1)

	e, ok := loaded.Orchestrator.Lookup(coretypes.Uid(50))
	require.True(t, ok)
	restored, ok := e.(*instruments.SynthVoice)
	require.True(t, ok)

	state, err := restored.MarshalState()
	require.NoError(t, err)
	assert.JSONEq(t, `{"gain":0.3}`, string(state))
}

func TestSaveLoadRoundTripsMixerState(t *testing.T) {
	p := project.New()
	src := p.Orchestrator.AddTrack("drum", trackgraph.TrackKindMidi)
	aux := p.Orchestrator.AddTrack("reverb bus", trackgraph.TrackKindAux)
	p.Mixer.SetGain(src, coretypes.NewNormal(0.8))
	p.Mixer.SetMute(aux, true)
	require.NoError(t, p.Mixer.AddSend(p.Orchestrator.TrackGraph(), src, aux, 0.5))

	sealed := registry.New(coretypes.NewUidFactory()).Seal()

	var buf bytes.Buffer
	require.NoError(t, Save(p, nil, nil, &buf))

	loaded, err := Load(&buf, sealed)
	require.NoError(t, err)

	assert.Equal(t, 0.8, loaded.Mixer.Gain(src).Value())
	assert.True(t, loaded.Mixer.Mute(aux))
	sends := loaded.Mixer.Sends(src)
	require.Len(t, sends, 1)
	assert.Equal(t, aux, sends[0].DstTrack)
	assert.Equal(t, 0.5, sends[0].Amount)
}

func TestSaveLoadRoundTripsComposerPatternsAndArrangements(t *testing.T) {
	p := project.New()
	track := p.Orchestrator.AddTrack("keys", trackgraph.TrackKindMidi)

	note, err := coretypes.NewNote(60, coretypes.Zero, coretypes.NewFromBeats(1))
	require.NoError(t, err)
	pat := pattern.NewPattern(coretypes.CommonTime)
	pat.AddNote(note)
	patUid := p.Composer.AddPattern(pat, nil)
	_, err = p.Composer.ArrangePattern(track, patUid, coretypes.Zero)
	require.NoError(t, err)

	sealed := registry.New(coretypes.NewUidFactory()).Seal()

	var buf bytes.Buffer
	require.NoError(t, Save(p, nil, nil, &buf))

	loaded, err := Load(&buf, sealed)
	require.NoError(t, err)

	loadedPatterns := loaded.Composer.Patterns()
	require.Len(t, loadedPatterns, 1)
	restoredPattern, ok := loadedPatterns[patUid]
	require.True(t, ok)
	require.Len(t, restoredPattern.Notes, 1)
	assert.Equal(t, 60, restoredPattern.Notes[0].Key)

	loadedArrangements := loaded.Composer.Arrangements()
	require.Len(t, loadedArrangements, 1)
}

func TestLoadRejectsUnknownEntityKind(t *testing.T) {
	p := project.New()
	track := p.Orchestrator.AddTrack("lead", trackgraph.TrackKindMidi)
	voice := instruments.NewSynthVoice("lead voice", coretypes.DefaultSampleRate)
	voice.SetUid(coretypes.Uid(50))
	require.NoError(t, p.Orchestrator.AddEntity(track, voice))

	sealed := registry.New(coretypes.NewUidFactory()).Seal()

	var buf bytes.Buffer
	require.NoError(t, Save(p, nil, nil, &buf))

	_, err := Load(&buf, sealed)
	assert.Error(t, err)
}
