package qmath

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// blasBackend routes multiply-dominated operations through gonum's complex
// BLAS (Gemm). Inversion and the Jacobi eigensolver are elementwise
// algorithms with no BLAS3 structure, so they share the dense code paths;
// the exponential and the dissipator are rebuilt on top of Gemm because
// their cost is almost entirely multiplication.
type blasBackend struct{}

func (blasBackend) Name() string { return "blas" }

func (blasBackend) Mul(a, b *Matrix) *Matrix { return blasMul(a, b) }

func (blasBackend) Inverse(a *Matrix) *Matrix { return denseInverse(a) }

func (blasBackend) Eigensystem(a *Matrix) ([]float64, *Matrix) { return denseEigensystem(a) }

func (blasBackend) Exp(a *Matrix) *Matrix {
	return expWithMul(a, blasMul)
}

func (blasBackend) Dissipator(l, rho *Matrix) *Matrix {
	return dissipatorWithMul(l, rho, blasMul)
}

func blasMul(a, b *Matrix) *Matrix {
	n := a.n
	out := New(n)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		cblas128.General{Rows: n, Cols: n, Stride: n, Data: a.data},
		cblas128.General{Rows: n, Cols: n, Stride: n, Data: b.data},
		0,
		cblas128.General{Rows: n, Cols: n, Stride: n, Data: out.data})
	return out
}
