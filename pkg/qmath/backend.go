package qmath

import (
	"os"
	"sync"
)

// Backend is the linear-algebra strategy behind the hot operations. The
// dense pure-Go implementation is always available; an accelerated backend
// may transparently take over multiply-dominated work. Both must agree
// within floating tolerance, so callers never observe which one ran.
type Backend interface {
	Name() string
	Mul(a, b *Matrix) *Matrix
	Inverse(a *Matrix) *Matrix
	Eigensystem(a *Matrix) ([]float64, *Matrix)
	Exp(a *Matrix) *Matrix
	// Dissipator returns the fused Lindblad term LρL† − ½{L†L, ρ}.
	Dissipator(l, rho *Matrix) *Matrix
}

var (
	backendOnce sync.Once
	backend     Backend
)

// DefaultBackend returns the process-wide backend, selecting it on first
// use. Set QMATH_BACKEND=dense to force the pure-Go path.
func DefaultBackend() Backend {
	backendOnce.Do(func() {
		if os.Getenv("QMATH_BACKEND") == "dense" {
			backend = denseBackend{}
		} else {
			backend = blasBackend{}
		}
		logw.Info().Str("backend", backend.Name()).Msg("linear algebra backend selected")
	})
	return backend
}

// SetBackend overrides the active backend. Intended for tests that compare
// implementations.
func SetBackend(b Backend) {
	backendOnce.Do(func() {})
	backend = b
}

func activeBackend() Backend {
	return DefaultBackend()
}

// denseBackend is the reference pure-Go implementation.
type denseBackend struct{}

func (denseBackend) Name() string { return "dense" }

func (denseBackend) Mul(a, b *Matrix) *Matrix { return denseMul(a, b) }

func (denseBackend) Inverse(a *Matrix) *Matrix { return denseInverse(a) }

func (denseBackend) Eigensystem(a *Matrix) ([]float64, *Matrix) { return denseEigensystem(a) }

func (denseBackend) Exp(a *Matrix) *Matrix { return denseExp(a) }

func (denseBackend) Dissipator(l, rho *Matrix) *Matrix {
	return dissipatorWithMul(l, rho, denseMul)
}

func denseMul(a, b *Matrix) *Matrix {
	n := a.n
	out := New(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := a.data[i*n+k]
			if aik == 0 {
				continue
			}
			row := b.data[k*n : (k+1)*n]
			outRow := out.data[i*n : (i+1)*n]
			for j := 0; j < n; j++ {
				outRow[j] += aik * row[j]
			}
		}
	}
	return out
}

// dissipatorWithMul computes LρL† − ½{L†L, ρ} with an injected multiply.
func dissipatorWithMul(l, rho *Matrix, mul func(a, b *Matrix) *Matrix) *Matrix {
	ld := l.Dagger()
	refill := mul(mul(l, rho), ld)
	lDagL := mul(ld, l)
	anti := mul(lDagL, rho).Add(mul(rho, lDagL))
	out := refill
	out.AddInPlace(anti, complex(-0.5, 0))
	return out
}
