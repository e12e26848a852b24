package quantum

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dudecon/SpaceWheat-sub011/pkg/qmath"
)

const (
	// traceFloor is the trace below which the state is considered
	// numerically collapsed and is reset to maximally mixed.
	traceFloor = 1e-10

	// diagFloor is the diagonal value below which the state is considered
	// genuinely broken rather than merely noisy.
	diagFloor = -0.15

	// gatedRateFloor skips gated channels whose effective rate is too
	// small to matter this step.
	gatedRateFloor = 1e-9

	// projectionFloor guards division when collapsing onto a near-zero
	// probability outcome.
	projectionFloor = 1e-12
)

// Config configures a Computer.
type Config struct {
	Log zerolog.Logger
	// Seed drives measurement sampling; zero means time-seeded.
	Seed int64
	// MixedInit starts every new qubit maximally mixed instead of pure in
	// its default pole.
	MixedInit bool
}

// Computer owns one RegisterMap, one density matrix and the built operator
// sets. It is the sole authority over the quantum state: gate application,
// master-equation integration, measurement and projection all mutate the
// single owned matrix through its methods, which is what makes the
// Hermiticity and trace invariants enforceable.
//
// A Computer is structurally uninitialized until the first axis is
// registered; registering further axes tensor-embeds the existing state
// with the new qubit in its default pole, preserving existing amplitudes
// exactly.
//
// Not safe for concurrent use; the owning environment serializes access.
type Computer struct {
	log     zerolog.Logger
	backend qmath.Backend
	rng     *rand.Rand

	registers *RegisterMap
	rho       *qmath.Matrix

	hamiltonian *qmath.Matrix
	driven      []*DrivenTerm
	channels    []Channel
	gated       []GatedChannel
	icons       map[string]IconPhysics

	// graph records which registers have interacted via an entangling
	// operation. Metadata only: absence of an edge does not imply the
	// state is separable along it.
	graph map[int]map[int]bool

	mixedInit bool
	time      float64
	sinkFlux  float64
}

// NewComputer returns an uninitialized engine.
func NewComputer(cfg Config) *Computer {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Computer{
		log:       cfg.Log.With().Str("component", "quantum").Logger(),
		backend:   qmath.DefaultBackend(),
		rng:       rand.New(rand.NewSource(seed)),
		registers: NewRegisterMap(),
		graph:     make(map[int]map[int]bool),
		mixedInit: cfg.MixedInit,
	}
}

// Active reports whether at least one axis is registered.
func (c *Computer) Active() bool { return c.rho != nil }

// Registers exposes the coordinate map (read-only by convention).
func (c *Computer) Registers() *RegisterMap { return c.registers }

// Time returns the accumulated simulation time.
func (c *Computer) Time() float64 { return c.time }

// RegisterAxis adds a qubit axis. The first axis transitions the engine
// from uninitialized to active; later axes tensor-embed the current state
// with the new qubit in pole 0 (or maximally mixed under MixedInit),
// preserving existing probabilities without renormalizing. Operators built
// against the old dimension are stale afterwards; callers re-run Configure.
func (c *Computer) RegisterAxis(index int, labelA, labelB string) error {
	if err := c.registers.RegisterAxis(index, labelA, labelB); err != nil {
		return err
	}
	embed := c.freshQubitState()
	if c.rho == nil {
		c.rho = embed
	} else {
		// Under the MSB convention the new qubit occupies the lowest bit,
		// so the embedding is a plain right-hand Kronecker factor.
		c.rho = qmath.Kron(c.rho, embed)
	}
	c.hamiltonian = nil
	c.driven = nil
	c.channels = nil
	c.gated = nil
	return nil
}

func (c *Computer) freshQubitState() *qmath.Matrix {
	m := qmath.New(2)
	if c.mixedInit {
		m.Set(0, 0, 0.5)
		m.Set(1, 1, 0.5)
	} else {
		m.Set(0, 0, 1)
	}
	return m
}

// Configure builds and installs the Hamiltonian and Lindblad operator sets
// from per-label physics records. Safe to call again after axis extension.
func (c *Computer) Configure(icons map[string]IconPhysics) {
	c.icons = icons
	c.hamiltonian, c.driven = BuildHamiltonian(icons, c.registers, c.time)
	c.channels, c.gated = BuildLindblad(icons, c.registers)
}

// Hamiltonian returns the installed Hamiltonian (nil when unconfigured).
func (c *Computer) Hamiltonian() *qmath.Matrix { return c.hamiltonian }

// Channels returns the installed jump channels.
func (c *Computer) Channels() []Channel { return c.channels }

// GatedChannels returns the parametric channel configurations.
func (c *Computer) GatedChannels() []GatedChannel { return c.gated }

// InitializeMixed replaces the state with the maximally mixed one.
func (c *Computer) InitializeMixed() {
	if !c.Active() {
		return
	}
	c.rho = maximallyMixed(c.registers.Dim())
}

// InitializeBasis replaces the state with the pure basis state |i⟩⟨i|.
func (c *Computer) InitializeBasis(basis int) {
	if !c.Active() {
		return
	}
	dim := c.registers.Dim()
	if basis < 0 || basis >= dim {
		c.log.Error().Int("basis", basis).Int("dim", dim).Msg("basis init out of range")
		return
	}
	c.rho = qmath.New(dim)
	c.rho.Set(basis, basis, 1)
}

// InitializeLabels places every qubit purely in the pole the label tuple
// names. Unknown tuples are reported and ignored.
func (c *Computer) InitializeLabels(labels []string) {
	basis := c.registers.LabelsToBasis(labels)
	if basis < 0 {
		c.log.Error().Strs("labels", labels).Msg("label init does not resolve to a basis state")
		return
	}
	c.InitializeBasis(basis)
}

// Reinitialize resets to the default state of the current register set and
// clears accumulated time and sink flux.
func (c *Computer) Reinitialize() {
	if !c.Active() {
		return
	}
	dim := c.registers.Dim()
	if c.mixedInit {
		c.rho = maximallyMixed(dim)
	} else {
		c.rho = qmath.New(dim)
		c.rho.Set(0, 0, 1)
	}
	c.time = 0
	c.sinkFlux = 0
}

// ApplyGate conjugates the state by a 2x2 unitary embedded on one qubit:
// ρ' = UρU†, then renormalizes. Out-of-range targets are reported and the
// call is a no-op.
func (c *Computer) ApplyGate(qubit int, u *qmath.Matrix) bool {
	if !c.Active() || qubit < 0 || qubit >= c.registers.NumQubits() {
		c.log.Error().Int("qubit", qubit).Msg("gate target out of range")
		return false
	}
	if u == nil || u.Dim() != 2 {
		c.log.Error().Int("dim", dimOrZero(u)).Msg("single-qubit gate must be 2x2")
		return false
	}
	full := c.embedGate1(qubit, u)
	c.conjugate(full)
	return true
}

// ApplyGate2Q conjugates the state by a 4x4 unitary on an ordered qubit
// pair (first index is the control/high bit of the 4x4 basis). Repeated or
// out-of-range indices are reported and the call is a no-op.
func (c *Computer) ApplyGate2Q(qubitA, qubitB int, u *qmath.Matrix) bool {
	n := c.registers.NumQubits()
	if !c.Active() || qubitA < 0 || qubitA >= n || qubitB < 0 || qubitB >= n || qubitA == qubitB {
		c.log.Error().Int("a", qubitA).Int("b", qubitB).Msg("invalid two-qubit gate targets")
		return false
	}
	if u == nil || u.Dim() != 4 {
		c.log.Error().Int("dim", dimOrZero(u)).Msg("two-qubit gate must be 4x4")
		return false
	}
	full := c.embedGate2(qubitA, qubitB, u)
	c.conjugate(full)
	return true
}

// embedGate1 lifts a 2x2 operator into the full space: entries are copied
// wherever the non-targeted bits of the two basis indices match.
func (c *Computer) embedGate1(qubit int, u *qmath.Matrix) *qmath.Matrix {
	dim := c.registers.Dim()
	bit := c.registers.bit(qubit)
	full := qmath.New(dim)
	for i := 0; i < dim; i++ {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		full.Set(i, i, u.At(0, 0))
		full.Set(i, j, u.At(0, 1))
		full.Set(j, i, u.At(1, 0))
		full.Set(j, j, u.At(1, 1))
	}
	return full
}

func (c *Computer) embedGate2(qubitA, qubitB int, u *qmath.Matrix) *qmath.Matrix {
	dim := c.registers.Dim()
	bitA := c.registers.bit(qubitA)
	bitB := c.registers.bit(qubitB)
	full := qmath.New(dim)
	for base := 0; base < dim; base++ {
		if base&bitA != 0 || base&bitB != 0 {
			continue
		}
		var states [4]int
		for k := 0; k < 4; k++ {
			s := base
			if k&2 != 0 {
				s |= bitA
			}
			if k&1 != 0 {
				s |= bitB
			}
			states[k] = s
		}
		for r := 0; r < 4; r++ {
			for col := 0; col < 4; col++ {
				full.Set(states[r], states[col], u.At(r, col))
			}
		}
	}
	return full
}

func (c *Computer) conjugate(u *qmath.Matrix) {
	c.rho = c.backend.Mul(c.backend.Mul(u, c.rho), u.Dagger())
	c.renormalize()
}

// Evolve advances the master equation
//
//	dρ/dt = -i[H,ρ] + Σ_k (L_k ρ L_k† - ½{L_k†L_k, ρ}) + gated terms
//
// by a single first-order Euler step, then renormalizes. Driven Hamiltonian
// diagonals are refreshed first; gated channel rates are evaluated fresh
// from current populations and skipped below the rate floor. First-order
// local error is an accepted tradeoff for O(operator count) per-step cost,
// so drift is handled by the renormalization policy, not the step size.
func (c *Computer) Evolve(dt float64) {
	if !c.Active() || dt <= 0 {
		return
	}
	c.time += dt
	dim := c.registers.Dim()

	drho := qmath.New(dim)

	if c.hamiltonian != nil {
		if c.hamiltonian.Dim() != dim {
			c.log.Warn().Int("h", c.hamiltonian.Dim()).Int("dim", dim).
				Msg("stale Hamiltonian dimension, skipping unitary term")
		} else {
			for _, term := range c.driven {
				term.Refresh(c.hamiltonian, c.time)
			}
			drho = qmath.Commutator(c.hamiltonian, c.rho).Scale(complex(0, -1))
		}
	}

	for _, ch := range c.channels {
		if ch.Op.Dim() != dim {
			continue
		}
		if ch.Drain {
			c.applyDrain(drho, ch.Op, dt)
		} else {
			drho.AddInPlace(c.backend.Dissipator(ch.Op, c.rho), 1)
		}
	}

	for _, g := range c.gated {
		p := c.Population(g.Gate)
		if g.Inverse {
			p = 1 - p
		}
		eff := g.Rate * math.Pow(clamp01(p), g.Power)
		if eff < gatedRateFloor {
			continue
		}
		op := BuildJump(c.registers, g.Source, g.Target, eff)
		if op == nil {
			continue
		}
		drho.AddInPlace(c.backend.Dissipator(op, c.rho), 1)
	}

	c.rho.AddInPlace(drho, complex(dt, 0))
	c.renormalize()
}

// applyDrain adds only the decay half of the dissipator, -½{L†L, ρ}: the
// refill term is omitted so the drained probability leaves the system. The
// loss rate Tr(L†Lρ) is accumulated as sink flux.
func (c *Computer) applyDrain(drho *qmath.Matrix, l *qmath.Matrix, dt float64) {
	ld := l.Dagger()
	lDagL := c.backend.Mul(ld, l)
	anti := qmath.Anticommutator(lDagL, c.rho)
	drho.AddInPlace(anti, complex(-0.5, 0))
	loss := real(c.backend.Mul(lDagL, c.rho).Trace())
	if loss > 0 {
		c.sinkFlux += dt * loss
	}
}

// SinkFlux returns the probability drained into sink labels since the last
// reset.
func (c *Computer) SinkFlux() float64 { return c.sinkFlux }

// ResetSinkFlux zeroes the drain accumulator and returns its prior value.
func (c *Computer) ResetSinkFlux() float64 {
	f := c.sinkFlux
	c.sinkFlux = 0
	return f
}

// renormalize reasserts the physical invariants after mutation: small
// negative diagonals from floating noise are clipped to zero, a
// catastrophically broken state (collapsed trace or deeply negative
// diagonal) is reset to maximally mixed with an error log, and trace is
// capped at one by uniform scaling. Trace below one is permitted: it
// represents dissipative loss to an external sink.
func (c *Computer) renormalize() {
	dim := c.rho.Dim()

	worst := 0.0
	for i := 0; i < dim; i++ {
		d := real(c.rho.At(i, i))
		if d < worst {
			worst = d
		}
		if d < 0 && d > diagFloor {
			c.rho.Set(i, i, 0)
		}
	}

	tr := real(c.rho.Trace())
	if tr < traceFloor || worst <= diagFloor {
		c.log.Error().Float64("trace", tr).Float64("worst_diag", worst).
			Msg("density matrix numerically broken, resetting to maximally mixed")
		c.rho = maximallyMixed(dim)
		return
	}
	if tr > 1 {
		c.rho = c.rho.Scale(complex(1/tr, 0))
	}
	c.rho.Hermitize()
}

// InspectQubit returns the marginal probabilities (pole 0, pole 1) of one
// qubit without mutating the state.
func (c *Computer) InspectQubit(qubit int) (float64, float64) {
	if !c.Active() || qubit < 0 || qubit >= c.registers.NumQubits() {
		return 0, 0
	}
	dim := c.registers.Dim()
	var p0, p1 float64
	for i := 0; i < dim; i++ {
		d := real(c.rho.At(i, i))
		if c.registers.poleAt(i, qubit) == 0 {
			p0 += d
		} else {
			p1 += d
		}
	}
	return p0, p1
}

// InspectAxis returns the marginal probabilities of the two labels of an
// axis, in the order given, without collapsing. Repeated inspection
// returns identical values.
func (c *Computer) InspectAxis(labelA, labelB string) (float64, float64) {
	return c.Population(labelA), c.Population(labelB)
}

// ProjectQubit collapses one qubit onto an outcome pole: ρ → PρP/Tr(PρP).
// A near-zero outcome probability is reported and answered with the
// maximally mixed state so downstream consumers never observe garbage.
func (c *Computer) ProjectQubit(qubit, outcome int) bool {
	if !c.Active() || qubit < 0 || qubit >= c.registers.NumQubits() || outcome < 0 || outcome > 1 {
		c.log.Error().Int("qubit", qubit).Int("outcome", outcome).Msg("invalid projection")
		return false
	}
	dim := c.registers.Dim()

	// PρP zeroes every row and column whose qubit is not in the outcome
	// pole; no matrix multiply needed.
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if c.registers.poleAt(i, qubit) != outcome || c.registers.poleAt(j, qubit) != outcome {
				c.rho.Set(i, j, 0)
			}
		}
	}
	tr := real(c.rho.Trace())
	if tr < projectionFloor {
		c.log.Error().Int("qubit", qubit).Int("outcome", outcome).Float64("trace", tr).
			Msg("projection onto near-zero outcome, resetting to maximally mixed")
		c.rho = maximallyMixed(dim)
		return false
	}
	c.rho = c.rho.Scale(complex(1/tr, 0))
	c.rho.Hermitize()
	return true
}

// MeasureAxis performs a Born-rule measurement of an axis and collapses the
// state. It returns the label of the observed pole.
func (c *Computer) MeasureAxis(labelA, labelB string) string {
	q := c.registers.Qubit(labelA)
	if q < 0 || q != c.registers.Qubit(labelB) || labelA == labelB {
		c.log.Error().Str("a", labelA).Str("b", labelB).Msg("measure on unknown or mismatched axis")
		return ""
	}
	p0, p1 := c.InspectQubit(q)
	total := p0 + p1
	if total <= 0 {
		c.log.Error().Str("a", labelA).Str("b", labelB).Msg("measure on zero-probability axis")
		return ""
	}

	outcome := 0
	if c.rng.Float64()*total < p1 {
		outcome = 1
	}
	c.ProjectQubit(q, outcome)

	ax, _ := c.registers.AxisAt(q)
	if outcome == 0 {
		return ax.LabelA
	}
	return ax.LabelB
}

// Entangle applies the superposition gate to one register followed by a
// controlled bit-copy onto a second, and records the interaction edge.
func (c *Computer) Entangle(regA, regB int) bool {
	if !c.ApplyGate(regA, Hadamard()) {
		return false
	}
	if !c.ApplyGate2Q(regA, regB, CNOT()) {
		return false
	}
	c.addEdge(regA, regB)
	return true
}

func (c *Computer) addEdge(a, b int) {
	if c.graph[a] == nil {
		c.graph[a] = make(map[int]bool)
	}
	if c.graph[b] == nil {
		c.graph[b] = make(map[int]bool)
	}
	c.graph[a][b] = true
	c.graph[b][a] = true
}

// Entangled answers which registers have been linked to the given one by an
// entangling operation. Metadata only: it does not imply the state is
// separable along absent edges.
func (c *Computer) Entangled(reg int) []int {
	edges := c.graph[reg]
	out := make([]int, 0, len(edges))
	for other := range edges {
		out = append(out, other)
	}
	sort.Ints(out)
	return out
}

func maximallyMixed(dim int) *qmath.Matrix {
	m := qmath.New(dim)
	p := complex(1/float64(dim), 0)
	for i := 0; i < dim; i++ {
		m.Set(i, i, p)
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func dimOrZero(m *qmath.Matrix) int {
	if m == nil {
		return 0
	}
	return m.Dim()
}
