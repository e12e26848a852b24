package qmath

import "math/cmplx"

// sparseCutoff is the non-zero ratio below which the CSR form is the
// cheaper representation for the accelerator ABI.
const sparseCutoff = 0.25

// CSR is a compressed-sparse-row view of a square complex matrix, split
// into real and imaginary planes as the accelerator ABI requires.
type CSR struct {
	N      int
	RowPtr []int32
	ColIdx []int32
	Real   []float64
	Imag   []float64
}

// ToDense flattens the matrix into the accelerator dense buffer layout:
// [re0, im0, re1, im1, ...] row-major.
func (m *Matrix) ToDense() []float64 {
	buf := make([]float64, 0, 2*len(m.data))
	for _, v := range m.data {
		buf = append(buf, real(v), imag(v))
	}
	return buf
}

// FromDense rebuilds an n-by-n matrix from the interleaved dense buffer.
// A short buffer is reported and answered with a zero matrix.
func FromDense(n int, buf []float64) *Matrix {
	m := New(n)
	if len(buf) < 2*n*n {
		logw.Error().Int("n", n).Int("len", len(buf)).Msg("dense buffer too short")
		return m
	}
	for i := range m.data {
		m.data[i] = complex(buf[2*i], buf[2*i+1])
	}
	return m
}

// ToCSR builds the compressed-sparse-row form, dropping entries below the
// zero threshold.
func (m *Matrix) ToCSR() *CSR {
	n := m.n
	out := &CSR{N: n, RowPtr: make([]int32, n+1)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.data[i*n+j]
			if cmplx.Abs(v) < epsZero {
				continue
			}
			out.ColIdx = append(out.ColIdx, int32(j))
			out.Real = append(out.Real, real(v))
			out.Imag = append(out.Imag, imag(v))
		}
		out.RowPtr[i+1] = int32(len(out.ColIdx))
	}
	return out
}

// ToMatrix expands the CSR form back into a dense matrix.
func (c *CSR) ToMatrix() *Matrix {
	m := New(c.N)
	if len(c.RowPtr) != c.N+1 {
		logw.Error().Int("n", c.N).Int("rowptr", len(c.RowPtr)).Msg("malformed CSR row pointers")
		return m
	}
	for i := 0; i < c.N; i++ {
		for k := c.RowPtr[i]; k < c.RowPtr[i+1]; k++ {
			m.data[i*c.N+int(c.ColIdx[k])] = complex(c.Real[k], c.Imag[k])
		}
	}
	return m
}

// NonZeroRatio returns the fraction of entries above the zero threshold.
func (m *Matrix) NonZeroRatio() float64 {
	if len(m.data) == 0 {
		return 0
	}
	nnz := 0
	for _, v := range m.data {
		if cmplx.Abs(v) >= epsZero {
			nnz++
		}
	}
	return float64(nnz) / float64(len(m.data))
}

// PreferSparse reports whether the CSR form is the cheaper marshalling
// choice for this matrix.
func (m *Matrix) PreferSparse() bool {
	return m.NonZeroRatio() < sparseCutoff
}
