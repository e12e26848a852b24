package qmath

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEigensystemPauliZ(t *testing.T) {
	z := FromRows([][]complex128{{1, 0}, {0, -1}})
	values, vecs := z.Eigensystem()

	require.Len(t, values, 2)
	assert.InDelta(t, -1, values[0], 1e-12)
	assert.InDelta(t, 1, values[1], 1e-12)
	assertUnitary(t, vecs, 1e-10)
}

func TestEigensystemPauliX(t *testing.T) {
	x := FromRows([][]complex128{{0, 1}, {1, 0}})
	values, vecs := x.Eigensystem()

	assert.InDelta(t, -1, values[0], 1e-10)
	assert.InDelta(t, 1, values[1], 1e-10)
	assertReconstruction(t, x, values, vecs, 1e-9)
}

func TestEigensystemRandomHermitian(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{2, 3, 4, 6} {
		h := randomHermitian(rng, n)
		values, vecs := h.Eigensystem()

		require.Len(t, values, n)
		for i := 1; i < n; i++ {
			assert.LessOrEqual(t, values[i-1], values[i], "eigenvalues must be ascending")
		}
		assertUnitary(t, vecs, 1e-8)
		assertReconstruction(t, h, values, vecs, 1e-8)
	}
}

func TestEigensystemTraceAndSumAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	h := randomHermitian(rng, 5)
	values, _ := h.Eigensystem()

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	assert.InDelta(t, real(h.Trace()), sum, 1e-9)
}

func randomHermitian(rng *rand.Rand, n int) *Matrix {
	h := New(n)
	for i := 0; i < n; i++ {
		h.Set(i, i, complex(rng.NormFloat64(), 0))
		for j := i + 1; j < n; j++ {
			v := complex(rng.NormFloat64(), rng.NormFloat64())
			h.Set(i, j, v)
			h.Set(j, i, cmplx.Conj(v))
		}
	}
	return h
}

func assertUnitary(t *testing.T, u *Matrix, tol float64) {
	t.Helper()
	assert.InDelta(t, 0, u.Mul(u.Dagger()).MaxAbsDiff(Identity(u.Dim())), tol)
}

// assertReconstruction checks V·diag(λ)·V† == A.
func assertReconstruction(t *testing.T, a *Matrix, values []float64, vecs *Matrix, tol float64) {
	t.Helper()
	n := a.Dim()
	diag := New(n)
	for i, v := range values {
		diag.Set(i, i, complex(v, 0))
	}
	rebuilt := vecs.Mul(diag).Mul(vecs.Dagger())
	assert.InDelta(t, 0, rebuilt.MaxAbsDiff(a), tol)
}

func TestJacobiConvergesOnDiagonal(t *testing.T) {
	d := FromRows([][]complex128{
		{2, 0, 0},
		{0, -1, 0},
		{0, 0, 0.5},
	})
	values, _ := d.Eigensystem()
	assert.InDelta(t, -1, values[0], 1e-12)
	assert.InDelta(t, 0.5, values[1], 1e-12)
	assert.InDelta(t, 2, values[2], 1e-12)
}

func TestEigensystemScaleInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	h := randomHermitian(rng, 3)
	scaled := h.Scale(complex(math.Pi, 0))

	v1, _ := h.Eigensystem()
	v2, _ := scaled.Eigensystem()
	for i := range v1 {
		assert.InDelta(t, v1[i]*math.Pi, v2[i], 1e-8)
	}
}
