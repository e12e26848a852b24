package quantum

import (
	"math"
	"sort"

	"github.com/dudecon/SpaceWheat-sub011/pkg/qmath"
)

// entropyEigenFloor drops eigenvalues too small to contribute to entropy.
const entropyEigenFloor = 1e-12

// Population returns the total probability of finding the label's qubit in
// the label's pole. Unknown labels read as zero population.
func (c *Computer) Population(label string) float64 {
	q := c.registers.Qubit(label)
	if q < 0 || !c.Active() {
		return 0
	}
	pole := c.registers.Pole(label)
	dim := c.registers.Dim()
	sum := 0.0
	for i := 0; i < dim; i++ {
		if c.registers.poleAt(i, q) == pole {
			sum += real(c.rho.At(i, i))
		}
	}
	return sum
}

// Coherence returns the magnitude of the summed off-diagonal amplitude
// between the two labels' subspaces: the same basis-state pairs a
// Hamiltonian coupling between the labels would connect.
func (c *Computer) Coherence(labelA, labelB string) float64 {
	if !c.Active() {
		return 0
	}
	qa, qb := c.registers.Qubit(labelA), c.registers.Qubit(labelB)
	if qa < 0 || qb < 0 {
		return 0
	}
	pa, pb := c.registers.Pole(labelA), c.registers.Pole(labelB)
	dim := c.registers.Dim()

	var sum complex128
	if qa == qb {
		if pa == pb {
			return 0
		}
		bit := c.registers.bit(qa)
		for i := 0; i < dim; i++ {
			if c.registers.poleAt(i, qa) == pa {
				sum += c.rho.At(i, i^bit)
			}
		}
	} else {
		bitA, bitB := c.registers.bit(qa), c.registers.bit(qb)
		for i := 0; i < dim; i++ {
			if c.registers.poleAt(i, qa) == pa && c.registers.poleAt(i, qb) != pb {
				sum += c.rho.At(i, i^bitA^bitB)
			}
		}
	}
	return math.Hypot(real(sum), imag(sum))
}

// Purity returns Tr(ρ²): one for a pure state, 1/dim for maximally mixed.
func (c *Computer) Purity() float64 {
	if !c.Active() {
		return 0
	}
	return real(c.backend.Mul(c.rho, c.rho).Trace())
}

// Entropy returns the von Neumann entropy -Σ λ ln λ of the full state.
func (c *Computer) Entropy() float64 {
	if !c.Active() {
		return 0
	}
	return entropyOf(c.rho)
}

// ReducedDensityMatrix returns the marginal for a subset of qubits,
// obtained by partial trace over the rest. Qubit order in the reduced
// matrix follows ascending qubit index. Invalid subsets are reported and
// answered with a 1x1 unit matrix.
func (c *Computer) ReducedDensityMatrix(qubits []int) *qmath.Matrix {
	n := c.registers.NumQubits()
	keep := append([]int(nil), qubits...)
	sort.Ints(keep)
	for i, q := range keep {
		if q < 0 || q >= n || (i > 0 && keep[i-1] == q) {
			c.log.Error().Ints("qubits", qubits).Msg("invalid partial trace subset")
			one := qmath.New(1)
			one.Set(0, 0, 1)
			return one
		}
	}
	if !c.Active() || len(keep) == 0 {
		one := qmath.New(1)
		one.Set(0, 0, 1)
		return one
	}

	k := len(keep)
	restCount := n - k
	red := qmath.New(1 << k)

	rest := make([]int, 0, restCount)
	inKeep := make(map[int]bool, k)
	for _, q := range keep {
		inKeep[q] = true
	}
	for q := 0; q < n; q++ {
		if !inKeep[q] {
			rest = append(rest, q)
		}
	}

	// Compose full basis indices from (kept bits, traced bits). Both the
	// reduced and full index use MSB-first qubit ordering.
	compose := func(keepBits, restBits int) int {
		full := 0
		for i, q := range keep {
			if keepBits&(1<<(k-1-i)) != 0 {
				full |= c.registers.bit(q)
			}
		}
		for i, q := range rest {
			if restBits&(1<<(restCount-1-i)) != 0 {
				full |= c.registers.bit(q)
			}
		}
		return full
	}

	for a := 0; a < (1 << k); a++ {
		for b := 0; b < (1 << k); b++ {
			var sum complex128
			for r := 0; r < (1 << restCount); r++ {
				sum += c.rho.At(compose(a, r), compose(b, r))
			}
			red.Set(a, b, sum)
		}
	}
	return red
}

// MutualInformation returns S(A)+S(B)-S(AB) for two qubits, computed from
// von Neumann entropies of the one- and two-qubit marginals. The two-qubit
// entropy uses the numeric eigensolver since no closed form exists for the
// 4x4 marginal.
func (c *Computer) MutualInformation(qubitA, qubitB int) float64 {
	n := c.registers.NumQubits()
	if !c.Active() || qubitA < 0 || qubitB < 0 || qubitA >= n || qubitB >= n || qubitA == qubitB {
		return 0
	}
	sa := entropyOf(c.ReducedDensityMatrix([]int{qubitA}))
	sb := entropyOf(c.ReducedDensityMatrix([]int{qubitB}))
	sab := entropyOf(c.ReducedDensityMatrix([]int{qubitA, qubitB}))
	mi := sa + sb - sab
	if mi < 0 {
		// Floating noise can push an uncorrelated pair slightly negative.
		return 0
	}
	return mi
}

func entropyOf(m *qmath.Matrix) float64 {
	values, _ := m.Eigensystem()
	s := 0.0
	for _, v := range values {
		if v > entropyEigenFloor {
			s -= v * math.Log(v)
		}
	}
	return s
}
