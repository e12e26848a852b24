package qmath

import "math/cmplx"

// Inverse returns m⁻¹ via Gauss-Jordan elimination with partial pivoting.
// A pivot magnitude below 1e-14 signals a singular matrix; the identity is
// returned as the safe fallback so downstream consumers never see NaN.
func (m *Matrix) Inverse() *Matrix {
	return activeBackend().Inverse(m)
}

func denseInverse(m *Matrix) *Matrix {
	n := m.n
	a := m.Clone()
	inv := Identity(n)

	for col := 0; col < n; col++ {
		// Partial pivoting: bring the largest remaining entry of this
		// column onto the diagonal.
		pivotRow := col
		pivotMag := cmplx.Abs(a.data[col*n+col])
		for r := col + 1; r < n; r++ {
			if mag := cmplx.Abs(a.data[r*n+col]); mag > pivotMag {
				pivotMag = mag
				pivotRow = r
			}
		}
		if pivotMag < epsPivot {
			logw.Warn().Int("n", n).Int("col", col).Float64("pivot", pivotMag).
				Msg("singular matrix in inverse, returning identity")
			return Identity(n)
		}
		if pivotRow != col {
			swapRows(a, col, pivotRow)
			swapRows(inv, col, pivotRow)
		}

		pivot := a.data[col*n+col]
		for j := 0; j < n; j++ {
			a.data[col*n+j] /= pivot
			inv.data[col*n+j] /= pivot
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := a.data[r*n+col]
			if factor == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				a.data[r*n+j] -= factor * a.data[col*n+j]
				inv.data[r*n+j] -= factor * inv.data[col*n+j]
			}
		}
	}
	return inv
}

func swapRows(m *Matrix, r1, r2 int) {
	n := m.n
	for j := 0; j < n; j++ {
		m.data[r1*n+j], m.data[r2*n+j] = m.data[r2*n+j], m.data[r1*n+j]
	}
}
