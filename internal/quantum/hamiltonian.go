package quantum

import (
	"math/cmplx"
	"sort"

	"github.com/dudecon/SpaceWheat-sub011/pkg/qmath"
)

// DrivenTerm tracks a time-dependent self-energy contribution so per-tick
// updates can touch only the affected diagonal entries instead of
// rebuilding the whole Hamiltonian.
type DrivenTerm struct {
	Label   string
	Driver  Driver
	indices []int
	last    float64
}

// Refresh re-evaluates the driver at time t and applies the delta to the
// Hamiltonian's diagonal.
func (d *DrivenTerm) Refresh(h *qmath.Matrix, t float64) {
	v := d.Driver.Eval(t)
	if v == d.last {
		return
	}
	delta := complex(v-d.last, 0)
	for _, i := range d.indices {
		h.AddAt(i, i, delta)
	}
	d.last = v
}

// BuildHamiltonian assembles the Hermitian operator from per-label physics
// records. Self-energy terms become diagonal contributions restricted to
// basis states where the owning qubit sits in the label's pole; couplings
// become off-diagonal bit-flip contributions. Records referencing labels
// absent from the RegisterMap are silently skipped, which is what lets the
// same declarative content serve environments with different register
// subsets. The result is forced Hermitian via (H+H†)/2.
//
// Time-dependent self-energy is evaluated at t; the returned driven-term
// list lets the engine refresh those diagonals each tick.
func BuildHamiltonian(icons map[string]IconPhysics, rm *RegisterMap, t float64) (*qmath.Matrix, []*DrivenTerm) {
	dim := rm.Dim()
	h := qmath.New(dim)
	var driven []*DrivenTerm

	// Deterministic assembly order keeps floating-point results stable
	// across runs.
	labels := make([]string, 0, len(icons))
	for label := range icons {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		icon := icons[label]
		q := rm.Qubit(label)
		if q < 0 {
			continue
		}
		pole := rm.Pole(label)

		indices := poleIndices(rm, q, pole)
		energy := icon.SelfEnergy
		if icon.Driver != nil {
			term := &DrivenTerm{Label: label, Driver: *icon.Driver, indices: indices}
			term.last = term.Driver.Eval(t)
			energy += term.last
			driven = append(driven, term)
		}
		if energy != 0 {
			for _, i := range indices {
				h.AddAt(i, i, complex(energy, 0))
			}
		}

		couplingTargets := make([]string, 0, len(icon.Couplings))
		for target := range icon.Couplings {
			couplingTargets = append(couplingTargets, target)
		}
		sort.Strings(couplingTargets)

		for _, target := range couplingTargets {
			addCoupling(h, rm, label, target, icon.Couplings[target].Value)
		}
	}

	h.Hermitize()
	return h, driven
}

// addCoupling embeds a coupling between two labels: a σx-like single-bit
// flip when both labels share a qubit, a correlated two-bit flip when they
// occupy different qubits. Unknown labels are skipped.
func addCoupling(h *qmath.Matrix, rm *RegisterMap, labelA, labelB string, g complex128) {
	if g == 0 {
		return
	}
	qa, qb := rm.Qubit(labelA), rm.Qubit(labelB)
	if qa < 0 || qb < 0 {
		return
	}
	pa, pb := rm.Pole(labelA), rm.Pole(labelB)
	dim := rm.Dim()

	if qa == qb {
		if pa == pb {
			return // self-coupling of a label onto itself carries no flip
		}
		bit := rm.bit(qa)
		for i := 0; i < dim; i++ {
			if rm.poleAt(i, qa) != pa {
				continue
			}
			j := i ^ bit
			h.AddAt(j, i, g)
			h.AddAt(i, j, cmplx.Conj(g))
		}
		return
	}

	bitA, bitB := rm.bit(qa), rm.bit(qb)
	for i := 0; i < dim; i++ {
		// Source states: A's qubit in A's pole, B's qubit out of B's pole;
		// the flipped partner has the excitation moved from A to B.
		if rm.poleAt(i, qa) != pa || rm.poleAt(i, qb) == pb {
			continue
		}
		j := i ^ bitA ^ bitB
		h.AddAt(j, i, g)
		h.AddAt(i, j, cmplx.Conj(g))
	}
}

// poleIndices lists the basis states whose qubit q sits in the given pole.
func poleIndices(rm *RegisterMap, q, pole int) []int {
	dim := rm.Dim()
	out := make([]int, 0, dim/2)
	for i := 0; i < dim; i++ {
		if rm.poleAt(i, q) == pole {
			out = append(out, i)
		}
	}
	return out
}
