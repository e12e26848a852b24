package quantum

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coupling is a Hamiltonian coupling strength. On the wire it is either a
// plain number or a two-element [re, im] pair.
type Coupling struct {
	Value complex128
}

// UnmarshalJSON accepts both wire encodings.
func (c *Coupling) UnmarshalJSON(b []byte) error {
	var re float64
	if err := json.Unmarshal(b, &re); err == nil {
		c.Value = complex(re, 0)
		return nil
	}
	var pair [2]float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("coupling must be a number or a [re, im] pair: %w", err)
	}
	c.Value = complex(pair[0], pair[1])
	return nil
}

// MarshalJSON writes the compact form when the value is real.
func (c Coupling) MarshalJSON() ([]byte, error) {
	if imag(c.Value) == 0 {
		return json.Marshal(real(c.Value))
	}
	return json.Marshal([2]float64{real(c.Value), imag(c.Value)})
}

// Driver types for time-dependent self-energy.
const (
	DriverCosine = "cosine"
	DriverSine   = "sine"
	DriverPulse  = "pulse"
)

// Driver describes a time-dependent self-energy term.
type Driver struct {
	Type      string  `json:"type"`
	Frequency float64 `json:"frequency"`
	Phase     float64 `json:"phase"`
	Amplitude float64 `json:"amplitude"`
}

// Eval returns the driver's contribution at time t. Pulse drivers produce a
// square wave: full amplitude on the positive half-period, zero otherwise.
func (d Driver) Eval(t float64) float64 {
	arg := d.Frequency*t + d.Phase
	switch d.Type {
	case DriverCosine:
		return d.Amplitude * math.Cos(arg)
	case DriverSine:
		return d.Amplitude * math.Sin(arg)
	case DriverPulse:
		if math.Sin(arg) > 0 {
			return d.Amplitude
		}
		return 0
	}
	return 0
}

// Decay is a fixed-rate decay channel toward a target label.
type Decay struct {
	Rate   float64 `json:"rate"`
	Target string  `json:"target"`
}

// GatedRule declares a dissipation channel whose rate scales with the live
// population of a third "gate" label. The owning label is the transfer
// target; Source defaults to the owner's opposite pole when empty.
type GatedRule struct {
	Source  string  `json:"source"`
	Gate    string  `json:"gate"`
	Rate    float64 `json:"rate"`
	Power   float64 `json:"power"`
	Inverse bool    `json:"inverse"`
}

// IconPhysics is the per-label physics-parameter record consumed by the
// operator builders. It is the wire contract with the declarative content
// layer; builders tolerate references to labels missing from the current
// RegisterMap by skipping them.
type IconPhysics struct {
	SelfEnergy       float64             `json:"self_energy"`
	Couplings        map[string]Coupling `json:"hamiltonian_couplings,omitempty"`
	LindbladOutgoing map[string]float64  `json:"lindblad_outgoing,omitempty"`
	LindbladIncoming map[string]float64  `json:"lindblad_incoming,omitempty"`
	Decay            *Decay              `json:"decay,omitempty"`
	Driver           *Driver             `json:"driver,omitempty"`
	Gated            []GatedRule         `json:"gated,omitempty"`
	// Sink marks the label as an external drain: population transferred
	// into it leaves the simulated system entirely (trace is allowed to
	// fall below one) and is tallied as sink flux.
	Sink bool `json:"sink,omitempty"`
}
