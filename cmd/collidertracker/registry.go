package main

import (
	"github.com/schollz/collidertracker/internal/coretypes"
	"github.com/schollz/collidertracker/internal/entity"
	"github.com/schollz/collidertracker/internal/instruments"
	"github.com/schollz/collidertracker/internal/registry"
)

// buildRegistry registers every reference entity kind this binary knows
// how to reconstruct from a saved project file (spec §4.2/§6: an entity
// is tagged by its kind_key so the registry can rebuild it on load).
func buildRegistry() *registry.Sealed {
	r := registry.New(coretypes.NewUidFactory())

	mustRegister(r, "synth_voice", func() entity.Entity {
		return instruments.NewSynthVoice("voice", coretypes.DefaultSampleRate)
	})
	mustRegister(r, "constant_source", func() entity.Entity {
		return instruments.NewConstantSource("constant", coretypes.SilenceStereo)
	})
	mustRegister(r, "counter_instrument", func() entity.Entity {
		return instruments.NewCounterInstrument("counter")
	})
	mustRegister(r, "negating_effect", func() entity.Entity {
		return instruments.NewNegatingEffect("negate")
	})
	mustRegister(r, "gain_pan_effect", func() entity.Entity {
		return instruments.NewGainPanEffect("gain/pan")
	})

	return r.Seal()
}

func mustRegister(r *registry.Registry, key string, f registry.FactoryFunc) {
	if err := r.Register(key, f); err != nil {
		panic(err)
	}
}
