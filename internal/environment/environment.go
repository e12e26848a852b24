// Package environment owns one quantum engine per simulated environment
// and drives its per-tick evolution. It is the only writer of an engine's
// state; HTTP handlers and telemetry observe through its methods, which
// serialize access with a per-environment mutex.
package environment

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dudecon/SpaceWheat-sub011/internal/content"
	"github.com/dudecon/SpaceWheat-sub011/internal/quantum"
)

// Config configures a new environment.
type Config struct {
	Name string
	// Labels is the ordered register list, paired two-at-a-time into
	// qubit axes. Must be non-empty and even-length.
	Labels []string
	// MixedInit starts registers maximally mixed instead of pure.
	MixedInit bool
	// Seed forwards to the engine's measurement sampler; zero means
	// time-seeded.
	Seed int64
	Log  zerolog.Logger
}

// Environment binds one engine to one slice of declarative content.
type Environment struct {
	id      string
	name    string
	created time.Time
	log     zerolog.Logger

	mu       sync.Mutex
	computer *quantum.Computer
	registry *content.Registry
	ticks    uint64
}

// Snapshot is the per-tick observable record handed to telemetry.
type Snapshot struct {
	EnvironmentID string
	Tick          uint64
	Time          float64
	Trace         float64
	Purity        float64
	SinkFlux      float64
	Populations   map[string]float64
}

// New builds an environment: registers the axes, installs the operator
// sets from the registry, and leaves the engine ready to tick.
func New(cfg Config, registry *content.Registry) (*Environment, error) {
	if len(cfg.Labels) == 0 || len(cfg.Labels)%2 != 0 {
		return nil, fmt.Errorf("environment %q: label list must be non-empty and even, got %d",
			cfg.Name, len(cfg.Labels))
	}

	env := &Environment{
		id:      uuid.New().String(),
		name:    cfg.Name,
		created: time.Now(),
		log:     cfg.Log.With().Str("component", "environment").Str("name", cfg.Name).Logger(),
		computer: quantum.NewComputer(quantum.Config{
			Log:       cfg.Log,
			Seed:      cfg.Seed,
			MixedInit: cfg.MixedInit,
		}),
		registry: registry,
	}

	for i := 0; i < len(cfg.Labels); i += 2 {
		if err := env.computer.RegisterAxis(i/2, cfg.Labels[i], cfg.Labels[i+1]); err != nil {
			return nil, fmt.Errorf("environment %q: %w", cfg.Name, err)
		}
	}
	env.computer.Configure(registry.Table())

	env.log.Info().Str("id", env.id).Int("qubits", env.computer.Registers().NumQubits()).
		Msg("environment created")
	return env, nil
}

// ID returns the environment's instance UUID.
func (e *Environment) ID() string { return e.id }

// Name returns the human-readable name.
func (e *Environment) Name() string { return e.name }

// CreatedAt returns the creation timestamp.
func (e *Environment) CreatedAt() time.Time { return e.created }

// Tick advances the master equation by dt and returns the observable
// snapshot for this tick.
func (e *Environment) Tick(dt float64) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.computer.Evolve(dt)
	e.ticks++
	return e.snapshotLocked()
}

func (e *Environment) snapshotLocked() Snapshot {
	pops := make(map[string]float64)
	for _, label := range e.computer.Registers().Labels() {
		pops[label] = e.computer.Population(label)
	}
	// The two poles of any one qubit partition the full state, so their
	// marginals sum to the trace.
	p0, p1 := e.computer.InspectQubit(0)
	return Snapshot{
		EnvironmentID: e.id,
		Tick:          e.ticks,
		Time:          e.computer.Time(),
		Trace:         p0 + p1,
		Purity:        e.computer.Purity(),
		SinkFlux:      e.computer.SinkFlux(),
		Populations:   pops,
	}
}

// ExtendWith registers a new axis mid-life, tensor-embedding the current
// state, and rebuilds the operator sets against the grown space.
func (e *Environment) ExtendWith(labelA, labelB string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	index := e.computer.Registers().NumQubits()
	if err := e.computer.RegisterAxis(index, labelA, labelB); err != nil {
		return err
	}
	e.computer.Configure(e.registry.Table())
	e.log.Info().Str("label_a", labelA).Str("label_b", labelB).Int("qubit", index).
		Msg("environment extended")
	return nil
}

// Entangle links two registers through the engine's entangling composite.
func (e *Environment) Entangle(regA, regB int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Entangle(regA, regB)
}

// MeasureAxis measures one axis, collapsing the state, and returns the
// observed label.
func (e *Environment) MeasureAxis(labelA, labelB string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.MeasureAxis(labelA, labelB)
}

// Population returns a label's marginal probability.
func (e *Environment) Population(label string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Population(label)
}

// Coherence returns the off-diagonal magnitude between two labels.
func (e *Environment) Coherence(labelA, labelB string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Coherence(labelA, labelB)
}

// Purity returns Tr(ρ²).
func (e *Environment) Purity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Purity()
}

// Entropy returns the von Neumann entropy of the full state.
func (e *Environment) Entropy() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Entropy()
}

// MutualInformation returns S(A)+S(B)-S(AB) between two qubits.
func (e *Environment) MutualInformation(qubitA, qubitB int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.MutualInformation(qubitA, qubitB)
}

// Entangled lists registers linked to reg by entangling operations.
func (e *Environment) Entangled(reg int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Entangled(reg)
}

// Bloch exports the per-qubit visualization packet.
func (e *Environment) Bloch() []quantum.QubitBloch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.BlochPacket()
}

// DrainSinkFlux returns and resets the accumulated sink flux.
func (e *Environment) DrainSinkFlux() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.ResetSinkFlux()
}

// Labels returns every register label in axis order.
func (e *Environment) Labels() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Registers().Labels()
}

// NumQubits returns the register count.
func (e *Environment) NumQubits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computer.Registers().NumQubits()
}
