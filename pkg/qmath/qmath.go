// Package qmath implements dense and sparse complex linear algebra for the
// quantum substrate: matrix arithmetic, Hermitian eigendecomposition,
// Gauss-Jordan inversion, the scaling-and-squaring matrix exponential and
// Kronecker products.
//
// The package is deliberately lenient: dimension mismatches and numerical
// degeneracies are reported through the logger and answered with a safe
// fallback (zero matrix, identity, empty spectrum) instead of a panic or an
// error return. The simulation that sits on top of this package must keep
// running mid-frame no matter what it is fed.
//
// Hot operations (multiply, exponential, the Lindblad dissipator) are routed
// through a Backend selected once at startup. The pure-Go implementation is
// always available; a BLAS-backed implementation built on gonum's cblas128 is
// used when enabled.
package qmath

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// epsZero is the magnitude below which an entry is treated as zero when
	// building sparse forms and Kronecker products.
	epsZero = 1e-15

	// epsPivot is the singularity threshold for Gauss-Jordan pivots.
	epsPivot = 1e-14

	// epsOffDiag is the convergence threshold for the Jacobi eigensolver.
	epsOffDiag = 1e-12

	// epsHermitian is the tolerance for Hermiticity checks.
	epsHermitian = 1e-9
)

var logw = log.With().Str("component", "qmath").Logger()

// SetLogger replaces the package logger. Callers that inject their own
// zerolog instance should do this once during startup.
func SetLogger(l zerolog.Logger) {
	logw = l.With().Str("component", "qmath").Logger()
}
