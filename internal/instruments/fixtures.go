package instruments

import (
	"sync/atomic"

	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/midiwire"
)

// ConstantSource is an Instrument that adds a fixed stereo sample every
// tick. It has no oscillator or envelope and is meant for mixer
// scenario tests (solo/mute/send behavior) where a deterministic,
// always-on signal is easier to assert on than a synth voice.
type ConstantSource struct {
	entity.Base
	Value coretypes.StereoSample
}

func NewConstantSource(name string, value coretypes.StereoSample) *ConstantSource {
	return &ConstantSource{Base: entity.NewBase(name, "constant_source"), Value: value}
}

func (c *ConstantSource) Generate(buf []coretypes.StereoSample) {
	for i := range buf {
		buf[i] = buf[i].Add(c.Value)
	}
}

// CounterInstrument counts NoteOn messages it receives. It is silent
// (Generate is a no-op) and exists purely to observe MIDI fan-out
// (spec §8's external MIDI fan-out scenario).
type CounterInstrument struct {
	entity.Base
	count atomic.Uint64
}

func NewCounterInstrument(name string) *CounterInstrument {
	return &CounterInstrument{Base: entity.NewBase(name, "counter_instrument")}
}

func (c *CounterInstrument) Generate(buf []coretypes.StereoSample) {}

func (c *CounterInstrument) HandleMidiMessage(_ midiwire.Channel, msg midiwire.Message, _ entity.MidiEmitFunc) {
	if _, _, velocity, ok := midiwire.AsNoteOn(msg); ok && velocity > 0 {
		c.count.Add(1)
	}
}

// Count returns the number of NoteOn messages observed so far.
func (c *CounterInstrument) Count() uint64 { return c.count.Load() }

// NegatingEffect inverts the sign of every sample it sees, used to make
// a bus-send scenario's mixed result distinguishable by sign from the
// dry signal (spec §8's send+negating-effect scenario).
type NegatingEffect struct {
	entity.Base
}

func NewNegatingEffect(name string) *NegatingEffect {
	return &NegatingEffect{Base: entity.NewBase(name, "negating_effect")}
}

func (n *NegatingEffect) TransformAudio(s coretypes.StereoSample) coretypes.StereoSample {
	return coretypes.StereoSample{Left: -s.Left, Right: -s.Right}
}

// GainPanEffect applies a linear gain and an equal-power-ish pan (a
// simple linear pan law, sufficient for a reference effect) to every
// sample, exposed as two Controllable parameters.
type GainPanEffect struct {
	entity.Base
	gain coretypes.Normal
	pan  coretypes.BipolarNormal // -1 full left, 0 center, +1 full right
}

func NewGainPanEffect(name string) *GainPanEffect {
	return &GainPanEffect{
		Base: entity.NewBase(name, "gain_pan_effect"),
		gain: coretypes.NewNormal(1.0),
	}
}

func (g *GainPanEffect) TransformAudio(s coretypes.StereoSample) coretypes.StereoSample {
	left := 1.0 - clampPositive(g.pan.Value())
	right := 1.0 + clampNegative(g.pan.Value())
	return coretypes.StereoSample{
		Left:  s.Left * coretypes.Sample(g.gain.Value()*left),
		Right: s.Right * coretypes.Sample(g.gain.Value()*right),
	}
}

const (
	GainPanControlGain = coretypes.ControlIndex(iota)
	GainPanControlPan
)

func (g *GainPanEffect) ControlIndexCount() int { return 2 }

func (g *GainPanEffect) ControlNameForIndex(i coretypes.ControlIndex) string {
	switch i {
	case GainPanControlGain:
		return "gain"
	case GainPanControlPan:
		return "pan"
	default:
		return ""
	}
}

func (g *GainPanEffect) ControlSetParamByIndex(i coretypes.ControlIndex, value coretypes.ControlValue) {
	switch i {
	case GainPanControlGain:
		g.gain = coretypes.NewNormal(value.Value())
	case GainPanControlPan:
		// map [0,1] control space to [-1,1] pan space
		g.pan = coretypes.NewBipolarNormal(value.Value()*2 - 1)
	}
}

func clampPositive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

func clampNegative(v float64) float64 {
	if v < 0 {
		return -v
	}
	return 0
}
