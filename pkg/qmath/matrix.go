package qmath

import (
	"math"
	"math/cmplx"
)

// Matrix is a dense square complex matrix stored row-major.
// All arithmetic returns a new matrix; receivers are never mutated except by
// the explicitly in-place helpers (Hermitize, zero).
type Matrix struct {
	n    int
	data []complex128
}

// New returns the n-by-n zero matrix.
func New(n int) *Matrix {
	if n < 1 {
		logw.Warn().Int("n", n).Msg("matrix dimension clamped to 1")
		n = 1
	}
	return &Matrix{n: n, data: make([]complex128, n*n)}
}

// Identity returns the n-by-n identity matrix.
func Identity(n int) *Matrix {
	m := New(n)
	for i := 0; i < m.n; i++ {
		m.data[i*m.n+i] = 1
	}
	return m
}

// FromRows builds a matrix from explicit row data. Ragged or non-square
// input is reported and answered with a zero matrix of the outer length.
func FromRows(rows [][]complex128) *Matrix {
	n := len(rows)
	m := New(n)
	for i, row := range rows {
		if len(row) != n {
			logw.Warn().Int("row", i).Int("len", len(row)).Int("n", n).Msg("non-square row data")
			return New(n)
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m
}

// Dim returns the matrix dimension n.
func (m *Matrix) Dim() int { return m.n }

// At returns the (i,j) entry. Out-of-range indices read as zero.
func (m *Matrix) At(i, j int) complex128 {
	if i < 0 || j < 0 || i >= m.n || j >= m.n {
		return 0
	}
	return m.data[i*m.n+j]
}

// Set writes the (i,j) entry. Out-of-range indices are dropped.
func (m *Matrix) Set(i, j int, v complex128) {
	if i < 0 || j < 0 || i >= m.n || j >= m.n {
		logw.Warn().Int("i", i).Int("j", j).Int("n", m.n).Msg("set out of range")
		return
	}
	m.data[i*m.n+j] = v
}

// AddAt accumulates v into the (i,j) entry.
func (m *Matrix) AddAt(i, j int, v complex128) {
	if i < 0 || j < 0 || i >= m.n || j >= m.n {
		return
	}
	m.data[i*m.n+j] += v
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{n: m.n, data: make([]complex128, len(m.data))}
	copy(c.data, m.data)
	return c
}

func (m *Matrix) zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// Add returns m + b, or a zero matrix of m's size on dimension mismatch.
func (m *Matrix) Add(b *Matrix) *Matrix {
	if b == nil || b.n != m.n {
		logw.Error().Int("a", m.n).Int("b", dimOf(b)).Msg("add dimension mismatch")
		return New(m.n)
	}
	out := m.Clone()
	for i := range out.data {
		out.data[i] += b.data[i]
	}
	return out
}

// Sub returns m - b, or a zero matrix of m's size on dimension mismatch.
func (m *Matrix) Sub(b *Matrix) *Matrix {
	if b == nil || b.n != m.n {
		logw.Error().Int("a", m.n).Int("b", dimOf(b)).Msg("sub dimension mismatch")
		return New(m.n)
	}
	out := m.Clone()
	for i := range out.data {
		out.data[i] -= b.data[i]
	}
	return out
}

// Scale returns s * m.
func (m *Matrix) Scale(s complex128) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// AddInPlace accumulates scale*b into m. Used by the integrator hot loop to
// avoid one allocation per term.
func (m *Matrix) AddInPlace(b *Matrix, scale complex128) {
	if b == nil || b.n != m.n {
		logw.Error().Int("a", m.n).Int("b", dimOf(b)).Msg("add-in-place dimension mismatch")
		return
	}
	for i := range m.data {
		m.data[i] += scale * b.data[i]
	}
}

// Mul returns m * b through the active backend, or a zero matrix of m's size
// on dimension mismatch.
func (m *Matrix) Mul(b *Matrix) *Matrix {
	if b == nil || b.n != m.n {
		logw.Error().Int("a", m.n).Int("b", dimOf(b)).Msg("mul dimension mismatch")
		return New(m.n)
	}
	return activeBackend().Mul(m, b)
}

// Dagger returns the conjugate transpose m†.
func (m *Matrix) Dagger() *Matrix {
	out := New(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.data[j*m.n+i] = cmplx.Conj(m.data[i*m.n+j])
		}
	}
	return out
}

// Trace returns the sum of diagonal entries.
func (m *Matrix) Trace() complex128 {
	var t complex128
	for i := 0; i < m.n; i++ {
		t += m.data[i*m.n+i]
	}
	return t
}

// Commutator returns AB - BA.
func Commutator(a, b *Matrix) *Matrix {
	return a.Mul(b).Sub(b.Mul(a))
}

// Anticommutator returns AB + BA.
func Anticommutator(a, b *Matrix) *Matrix {
	return a.Mul(b).Add(b.Mul(a))
}

// Kron returns the Kronecker product m ⊗ b of dimension (n*m). Near-zero
// entries of m are skipped; the operators handled here are typically very
// sparse (a jump operator may carry a single non-zero entry).
func Kron(a, b *Matrix) *Matrix {
	na, nb := a.n, b.n
	out := New(na * nb)
	for i := 0; i < na; i++ {
		for j := 0; j < na; j++ {
			aij := a.data[i*na+j]
			if cmplx.Abs(aij) < epsZero {
				continue
			}
			for k := 0; k < nb; k++ {
				for l := 0; l < nb; l++ {
					bkl := b.data[k*nb+l]
					if bkl == 0 {
						continue
					}
					out.data[(i*nb+k)*out.n+(j*nb+l)] = aij * bkl
				}
			}
		}
	}
	return out
}

// OneNorm returns the maximum absolute column sum.
func (m *Matrix) OneNorm() float64 {
	max := 0.0
	for j := 0; j < m.n; j++ {
		sum := 0.0
		for i := 0; i < m.n; i++ {
			sum += cmplx.Abs(m.data[i*m.n+j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// MaxAbsDiff returns the largest entrywise |m - b|, or +Inf on mismatch.
func (m *Matrix) MaxAbsDiff(b *Matrix) float64 {
	if b == nil || b.n != m.n {
		return math.Inf(1)
	}
	max := 0.0
	for i := range m.data {
		if d := cmplx.Abs(m.data[i] - b.data[i]); d > max {
			max = d
		}
	}
	return max
}

// IsHermitian reports whether m equals its conjugate transpose within tol.
func (m *Matrix) IsHermitian(tol float64) bool {
	for i := 0; i < m.n; i++ {
		for j := i; j < m.n; j++ {
			if cmplx.Abs(m.data[i*m.n+j]-cmplx.Conj(m.data[j*m.n+i])) > tol {
				return false
			}
		}
	}
	return true
}

// Hermitize forces m to (m + m†)/2 in place, absorbing the floating-point
// asymmetry that additive construction accumulates.
func (m *Matrix) Hermitize() {
	for i := 0; i < m.n; i++ {
		m.data[i*m.n+i] = complex(real(m.data[i*m.n+i]), 0)
		for j := i + 1; j < m.n; j++ {
			avg := (m.data[i*m.n+j] + cmplx.Conj(m.data[j*m.n+i])) / 2
			m.data[i*m.n+j] = avg
			m.data[j*m.n+i] = cmplx.Conj(avg)
		}
	}
}

func dimOf(m *Matrix) int {
	if m == nil {
		return 0
	}
	return m.n
}
