package content

import (
	"github.com/rs/zerolog"

	"github.com/dudecon/SpaceWheat-sub011/internal/quantum"
)

// DefaultLabels is the register list the built-in demo environment uses,
// paired two-per-axis in order.
var DefaultLabels = []string{
	"Wheat", "Chaff",
	"Moon", "Sun",
	"Vacuum", "Flame",
}

// Defaults builds the built-in demo table: a driven wheat/chaff axis, a
// day/night axis coupled to it, and a vacuum sink that slowly drains the
// crop.
func Defaults(log zerolog.Logger) *Registry {
	return NewFromMap(map[string]quantum.IconPhysics{
		"Wheat": {
			SelfEnergy: 1.0,
			Couplings: map[string]quantum.Coupling{
				"Chaff": {Value: 0.4},
				"Sun":   {Value: 0.15},
			},
			LindbladOutgoing: map[string]float64{
				"Chaff":  0.05,
				"Vacuum": 0.01,
			},
			Driver: &quantum.Driver{
				Type:      quantum.DriverCosine,
				Frequency: 0.5,
				Amplitude: 0.2,
			},
		},
		"Chaff": {
			Gated: []quantum.GatedRule{
				{Gate: "Sun", Rate: 0.1, Power: 1},
			},
		},
		"Moon": {
			SelfEnergy: 0.5,
			Couplings: map[string]quantum.Coupling{
				"Sun": {Value: 0.3},
			},
		},
		"Sun": {
			Decay: &quantum.Decay{Rate: 0.02, Target: "Moon"},
		},
		"Vacuum": {Sink: true},
	}, log)
}
