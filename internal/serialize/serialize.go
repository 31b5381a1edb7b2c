// Package serialize implements the project save/load tree spec §6
// names: title, transport, orchestrator (tracks + entity store keyed by
// Uid), automator (control links + path links), composer (patterns +
// arrangements), track_to_midi_router, view_state, and
// track_color_schemes. Every entity is tagged by its kind_key so the
// registry can reconstruct it on load. Adapted from the teacher's
// storage package: the same jsoniter.ConfigCompatibleWithStandardLibrary
// package-level json var, the same gzip-compressed single-file save, and
// the same debounced AutoSave via time.AfterFunc.
package serialize

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/engineerr"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/midiwire"
	"github.com/schollz/collidertracker/internal/mixer"
	"github.com/schollz/collidertracker/internal/pattern"
	"github.com/schollz/collidertracker/internal/project"
	"github.com/schollz/collidertracker/internal/registry"
	"github.com/schollz/collidertracker/internal/trackgraph"
)

var jsonc = jsoniter.ConfigCompatibleWithStandardLibrary

// entityData is one entity's persisted identity, kind, and (optional)
// marshaled internal state.
type entityData struct {
	Uid     coretypes.Uid   `json:"uid"`
	KindKey string          `json:"kind_key"`
	Name    string          `json:"name"`
	State   json.RawMessage `json:"state,omitempty"`
}

type trackData struct {
	Uid         coretypes.TrackUid  `json:"uid"`
	Name        string              `json:"name"`
	Kind        trackgraph.TrackKind `json:"kind"`
	Controllers []coretypes.Uid     `json:"controllers"`
	Instruments []coretypes.Uid     `json:"instruments"`
	Effects     []coretypes.Uid     `json:"effects"`
}

type orchestratorData struct {
	Tracks   []trackData  `json:"tracks"`
	Entities []entityData `json:"entities"`
}

type transportData struct {
	Tempo             float64 `json:"tempo"`
	TimeSignatureTop  int     `json:"time_signature_top"`
	TimeSignatureBottom int   `json:"time_signature_bottom"`
}

type automatorData struct {
	EntityLinks map[coretypes.Uid][]coretypes.ControlLink     `json:"entity_links"`
	PathLinks   map[coretypes.PathUid][]coretypes.ControlLink `json:"path_links"`
}

type patternData struct {
	Uid           coretypes.PatternUid   `json:"uid"`
	TimeSignature coretypes.TimeSignature `json:"time_signature"`
	Notes         []coretypes.Note        `json:"notes"`
}

type arrangementData struct {
	Uid     coretypes.ArrangementUid `json:"uid"`
	Track   coretypes.TrackUid       `json:"track"`
	Pattern coretypes.PatternUid     `json:"pattern"`
	Start   coretypes.MusicalTime    `json:"start"`
	Channel *midiwire.Channel        `json:"channel,omitempty"`
}

type composerData struct {
	Patterns     []patternData     `json:"patterns"`
	Arrangements []arrangementData `json:"arrangements"`
}

type mixerData struct {
	Gains     map[coretypes.TrackUid]float64             `json:"gains"`
	Mutes     map[coretypes.TrackUid]bool                `json:"mutes"`
	Solo      *coretypes.TrackUid                         `json:"solo,omitempty"`
	Sends     map[coretypes.TrackUid][]mixer.BusRoute     `json:"sends"`
	Humidity  map[coretypes.Uid]float64                   `json:"humidity"`
}

// ProjectData is the full persisted project tree (spec §6). ViewState
// and TrackColorSchemes are opaque to the core: the core never
// interprets them, only round-trips them for a UI layer built on top.
type ProjectData struct {
	Title string `json:"title"`

	Transport    transportData `json:"transport"`
	Orchestrator orchestratorData `json:"orchestrator"`
	Automator    automatorData `json:"automator"`
	Composer     composerData  `json:"composer"`
	Mixer        mixerData     `json:"mixer"`

	TrackToMidiRouter map[coretypes.TrackUid]map[midiwire.Channel][]coretypes.Uid `json:"track_to_midi_router"`

	ViewState         json.RawMessage             `json:"view_state,omitempty"`
	TrackColorSchemes map[coretypes.TrackUid]string `json:"track_color_schemes,omitempty"`
}

// Snapshot walks p and every collaborator it owns and produces the
// persisted tree. viewState and trackColorSchemes are opaque payloads a
// UI layer supplies; the core neither reads nor validates them.
func Snapshot(p *project.Project, viewState json.RawMessage, trackColorSchemes map[coretypes.TrackUid]string) (*ProjectData, error) {
	data := &ProjectData{
		Title: p.Title,
		Transport: transportData{
			Tempo:               p.Transport.Tempo().Value(),
			TimeSignatureTop:    p.Transport.TimeSignature().Top,
			TimeSignatureBottom: p.Transport.TimeSignature().Bottom,
		},
		ViewState:         viewState,
		TrackColorSchemes: trackColorSchemes,
	}

	for _, tr := range p.Orchestrator.AllTracks() {
		data.Orchestrator.Tracks = append(data.Orchestrator.Tracks, trackData{
			Uid:         tr.Uid,
			Name:        tr.Name,
			Kind:        tr.Kind,
			Controllers: tr.Controllers,
			Instruments: tr.Instruments,
			Effects:     tr.Effects,
		})
	}

	for _, e := range p.Orchestrator.Entities() {
		ed := entityData{Uid: e.Uid(), KindKey: e.KindKey(), Name: e.Name()}
		if s, ok := entity.AsSerializable(e); ok {
			state, err := s.MarshalState()
			if err != nil {
				return nil, fmt.Errorf("marshal entity %d state: %w", e.Uid(), err)
			}
			ed.State = state
		}
		data.Orchestrator.Entities = append(data.Orchestrator.Entities, ed)
	}
	sort.Slice(data.Orchestrator.Entities, func(i, j int) bool {
		return data.Orchestrator.Entities[i].Uid < data.Orchestrator.Entities[j].Uid
	})

	data.Automator = automatorData{
		EntityLinks: p.Automator.EntityLinks(),
		PathLinks:   p.Automator.PathLinks(),
	}

	for id, pat := range p.Composer.Patterns() {
		data.Composer.Patterns = append(data.Composer.Patterns, patternData{
			Uid:           id,
			TimeSignature: pat.TimeSignature,
			Notes:         pat.Notes,
		})
	}
	sort.Slice(data.Composer.Patterns, func(i, j int) bool {
		return data.Composer.Patterns[i].Uid < data.Composer.Patterns[j].Uid
	})

	for id, arr := range p.Composer.Arrangements() {
		data.Composer.Arrangements = append(data.Composer.Arrangements, arrangementData{
			Uid:     id,
			Track:   arr.Track,
			Pattern: arr.Pattern,
			Start:   arr.Start,
			Channel: arr.Channel,
		})
	}
	sort.Slice(data.Composer.Arrangements, func(i, j int) bool {
		return data.Composer.Arrangements[i].Uid < data.Composer.Arrangements[j].Uid
	})

	data.Mixer = mixerData{
		Gains:    valuesToFloats(p.Mixer.AllGains()),
		Mutes:    p.Mixer.AllMutes(),
		Sends:    p.Mixer.AllSends(),
		Humidity: valuesToFloats(p.Mixer.AllHumidity()),
	}
	if solo, ok := p.Mixer.SoloTrack(); ok {
		data.Mixer.Solo = &solo
	}

	data.TrackToMidiRouter = make(map[coretypes.TrackUid]map[midiwire.Channel][]coretypes.Uid)
	for _, track := range p.Orchestrator.AllTracks() {
		data.TrackToMidiRouter[track.Uid] = p.MidiRouterForTrack(track.Uid).AllSubscriptions()
	}

	return data, nil
}

func valuesToFloats[K comparable](m map[K]coretypes.Normal) map[K]float64 {
	out := make(map[K]float64, len(m))
	for k, v := range m {
		out[k] = v.Value()
	}
	return out
}

// Restore rebuilds a project.Project from data, reconstructing each
// entity via sealed.NewEntity(kind_key) and then overwriting the Uid it
// was assigned with the persisted one. Non-persistent runtime fields
// (the audio ring, any visualization queue) are left at New's defaults;
// a caller re-attaches those after Restore returns.
func Restore(data *ProjectData, sealed *registry.Sealed) (*project.Project, error) {
	p := project.New()
	p.Title = data.Title

	tempo := coretypes.NewTempo(data.Transport.Tempo)
	ts, err := coretypes.NewTimeSignature(data.Transport.TimeSignatureTop, data.Transport.TimeSignatureBottom)
	if err != nil {
		return nil, fmt.Errorf("restore time signature: %w", engineerr.WrapSerialization(err))
	}
	p.SetTempo(tempo)
	p.SetTimeSignature(ts)

	for _, td := range data.Orchestrator.Tracks {
		p.Orchestrator.RestoreTrack(trackgraph.Track{
			Uid:         td.Uid,
			Name:        td.Name,
			Kind:        td.Kind,
			Controllers: td.Controllers,
			Instruments: td.Instruments,
			Effects:     td.Effects,
		})
	}

	for _, ed := range data.Orchestrator.Entities {
		e, ok := sealed.NewEntity(ed.KindKey)
		if !ok {
			return nil, fmt.Errorf("unknown entity kind %q: %w", ed.KindKey, engineerr.SerializationError)
		}
		e.SetUid(ed.Uid)
		if len(ed.State) > 0 {
			if s, ok := entity.AsSerializable(e); ok {
				if err := s.UnmarshalState(ed.State); err != nil {
					return nil, fmt.Errorf("restore entity %d state: %w", ed.Uid, err)
				}
			}
		}
		p.Orchestrator.RestoreEntity(e)
	}

	for source, links := range data.Automator.EntityLinks {
		for _, link := range links {
			p.Automator.Link(source, link)
		}
	}
	for path, links := range data.Automator.PathLinks {
		for _, link := range links {
			p.Automator.LinkPath(path, link)
		}
	}

	for _, pd := range data.Composer.Patterns {
		pat := pattern.NewPattern(pd.TimeSignature)
		pat.Notes = pd.Notes
		p.Composer.RestorePattern(pd.Uid, pat)
	}
	for _, ad := range data.Composer.Arrangements {
		p.Composer.RestoreArrangement(ad.Uid, pattern.Arrangement{
			Track:   ad.Track,
			Pattern: ad.Pattern,
			Start:   ad.Start,
			Channel: ad.Channel,
		})
	}

	for track, gain := range data.Mixer.Gains {
		p.Mixer.SetGain(track, coretypes.NewNormal(gain))
	}
	for track, muted := range data.Mixer.Mutes {
		p.Mixer.SetMute(track, muted)
	}
	if data.Mixer.Solo != nil {
		solo := *data.Mixer.Solo
		p.Mixer.SetSolo(&solo)
	}
	for uid, h := range data.Mixer.Humidity {
		p.Mixer.SetHumidity(uid, coretypes.NewNormal(h))
	}
	for src, sends := range data.Mixer.Sends {
		for _, send := range sends {
			if err := p.Mixer.AddSend(p.Orchestrator.TrackGraph(), src, send.DstTrack, send.Amount); err != nil {
				return nil, fmt.Errorf("restore send %d->%d: %w", src, send.DstTrack, err)
			}
		}
	}

	for track, channels := range data.TrackToMidiRouter {
		router := p.MidiRouterForTrack(track)
		for channel, uids := range channels {
			ch := channel
			for _, uid := range uids {
				router.SetReceiverChannel(uid, &ch)
			}
		}
	}

	return p, nil
}

// Save snapshots p and writes it, gzip-compressed, to w.
func Save(p *project.Project, viewState json.RawMessage, trackColorSchemes map[coretypes.TrackUid]string, w io.Writer) error {
	data, err := Snapshot(p, viewState, trackColorSchemes)
	if err != nil {
		return fmt.Errorf("snapshot project: %w", engineerr.WrapSerialization(err))
	}
	raw, err := jsonc.Marshal(data)
	if err != nil {
		return engineerr.WrapSerialization(err)
	}

	gz := gzip.NewWriter(w)
	if _, err := gz.Write(raw); err != nil {
		return engineerr.WrapIO(err)
	}
	if err := gz.Close(); err != nil {
		return engineerr.WrapIO(err)
	}
	return nil
}

// Load reads a gzip-compressed save tree from r and restores a project,
// reconstructing entities via sealed.
func Load(r io.Reader, sealed *registry.Sealed) (*project.Project, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, engineerr.WrapIO(err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, engineerr.WrapIO(err)
	}

	var data ProjectData
	if err := jsonc.Unmarshal(raw, &data); err != nil {
		return nil, engineerr.WrapSerialization(err)
	}
	return Restore(&data, sealed)
}

// SaveToFile and LoadFromFile are the filesystem-facing convenience
// wrappers a CLI uses directly.

func SaveToFile(p *project.Project, viewState json.RawMessage, trackColorSchemes map[coretypes.TrackUid]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return engineerr.WrapIO(err)
	}
	defer f.Close()
	return Save(p, viewState, trackColorSchemes, f)
}

func LoadFromFile(path string, sealed *registry.Sealed) (*project.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engineerr.WrapIO(err)
	}
	defer f.Close()
	return Load(f, sealed)
}

// debounceTime matches the teacher's AutoSave debounce window: rapid
// edits collapse into a single save once input settles.
const debounceTime = 1 * time.Second

var (
	autosaveMu sync.Mutex
	timer      *time.Timer
)

// AutoSave schedules a debounced save of p to path: a burst of calls
// within debounceTime of each other collapses into the single save that
// fires after the last one.
func AutoSave(p *project.Project, viewState json.RawMessage, trackColorSchemes map[coretypes.TrackUid]string, path string) {
	autosaveMu.Lock()
	defer autosaveMu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	timer = time.AfterFunc(debounceTime, func() {
		start := time.Now()
		if err := SaveToFile(p, viewState, trackColorSchemes, path); err != nil {
			log.Printf("[serialize] autosave failed: %v", err)
			return
		}
		log.Printf("[serialize] autosaved in %d ms", time.Since(start).Milliseconds())
	})
}
