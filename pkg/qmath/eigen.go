package qmath

import (
	"math"
	"math/cmplx"
	"sort"
)

// Eigensystem diagonalizes a Hermitian matrix by cyclic Jacobi rotation:
// the largest-magnitude off-diagonal entry is zeroed by a complex Givens
// rotation, rotations are accumulated into the eigenvector matrix, and the
// sweep stops when the largest off-diagonal magnitude falls below 1e-12 or
// after 50·n² rotations.
//
// Eigenvalues are returned ascending; eigenvectors are the corresponding
// columns of the returned matrix. Non-Hermitian input is accepted but the
// result is flagged as unreliable in the log.
func (m *Matrix) Eigensystem() ([]float64, *Matrix) {
	return activeBackend().Eigensystem(m)
}

func denseEigensystem(m *Matrix) ([]float64, *Matrix) {
	n := m.n
	if !m.IsHermitian(epsHermitian) {
		logw.Warn().Int("n", n).Msg("eigensystem on non-Hermitian matrix, result unreliable")
	}

	a := m.Clone()
	v := Identity(n)
	maxRotations := 50 * n * n

	for iter := 0; iter < maxRotations; iter++ {
		// Locate the largest off-diagonal entry.
		p, q, mag := 0, 1, 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if d := cmplx.Abs(a.data[i*n+j]); d > mag {
					mag = d
					p, q = i, j
				}
			}
		}
		if n < 2 || mag < epsOffDiag {
			break
		}

		apq := a.data[p*n+q]
		app := real(a.data[p*n+p])
		aqq := real(a.data[q*n+q])
		phi := cmplx.Phase(apq)
		theta := 0.5 * math.Atan2(2*mag, aqq-app)
		c := complex(math.Cos(theta), 0)
		e := complex(math.Sin(theta), 0) * cmplx.Exp(complex(0, phi))

		// A ← A·R with the rotation confined to columns p and q.
		for k := 0; k < n; k++ {
			akp := a.data[k*n+p]
			akq := a.data[k*n+q]
			a.data[k*n+p] = c*akp - cmplx.Conj(e)*akq
			a.data[k*n+q] = e*akp + c*akq
		}
		// A ← R†·A on rows p and q.
		for k := 0; k < n; k++ {
			apk := a.data[p*n+k]
			aqk := a.data[q*n+k]
			a.data[p*n+k] = c*apk - e*aqk
			a.data[q*n+k] = cmplx.Conj(e)*apk + c*aqk
		}
		// Accumulate eigenvectors: V ← V·R.
		for k := 0; k < n; k++ {
			vkp := v.data[k*n+p]
			vkq := v.data[k*n+q]
			v.data[k*n+p] = c*vkp - cmplx.Conj(e)*vkq
			v.data[k*n+q] = e*vkp + c*vkq
		}
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = real(a.data[i*n+i])
	}

	// Sort ascending, permuting eigenvector columns alongside.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(x, y int) bool { return values[idx[x]] < values[idx[y]] })

	sorted := make([]float64, n)
	vecs := New(n)
	for col, src := range idx {
		sorted[col] = values[src]
		for row := 0; row < n; row++ {
			vecs.data[row*n+col] = v.data[row*n+src]
		}
	}
	return sorted, vecs
}
