package quantum

import (
	"math"
	"math/cmplx"

	"github.com/dudecon/SpaceWheat-sub011/pkg/qmath"
)

// Single- and two-qubit gate constructors. Two-qubit gates are 4x4 in the
// (control, target) ordering: basis index = control_bit*2 + target_bit.

// Hadamard returns the superposition gate.
func Hadamard() *qmath.Matrix {
	h := complex(1/math.Sqrt2, 0)
	return qmath.FromRows([][]complex128{
		{h, h},
		{h, -h},
	})
}

// PauliX returns the bit-flip gate.
func PauliX() *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{0, 1},
		{1, 0},
	})
}

// PauliY returns the Y gate.
func PauliY() *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{0, -1i},
		{1i, 0},
	})
}

// PauliZ returns the phase-flip gate.
func PauliZ() *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{1, 0},
		{0, -1},
	})
}

// Phase returns the single-qubit phase gate diag(1, e^{iθ}).
func Phase(theta float64) *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, theta))},
	})
}

// RotX returns the X-axis rotation by theta.
func RotX(theta float64) *qmath.Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return qmath.FromRows([][]complex128{
		{c, s},
		{s, c},
	})
}

// RotY returns the Y-axis rotation by theta.
func RotY(theta float64) *qmath.Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return qmath.FromRows([][]complex128{
		{c, -s},
		{s, c},
	})
}

// CNOT returns the controlled bit-copy gate.
func CNOT() *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
}

// ControlledPhase returns diag(1, 1, 1, e^{iθ}).
func ControlledPhase(theta float64) *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, cmplx.Exp(complex(0, theta))},
	})
}

// Swap exchanges two qubits.
func Swap() *qmath.Matrix {
	return qmath.FromRows([][]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
}
