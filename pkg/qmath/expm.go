package qmath

import "math"

// Padé [6/6] numerator coefficients for exp(x).
var padeCoeffs = [7]float64{
	1.0,
	1.0 / 2.0,
	5.0 / 44.0,
	1.0 / 66.0,
	1.0 / 792.0,
	1.0 / 15840.0,
	1.0 / 665280.0,
}

// Exp returns the matrix exponential via scaling-and-squaring with a
// degree-[6/6] Padé rational approximation: the argument is scaled down by
// 2^k with k = ceil(log2(‖A‖₁)), exp of the scaled matrix is approximated by
// the Padé quotient, and the result is squared k times.
func (m *Matrix) Exp() *Matrix {
	return activeBackend().Exp(m)
}

func denseExp(m *Matrix) *Matrix {
	return expWithMul(m, func(a, b *Matrix) *Matrix { return denseMul(a, b) })
}

// expWithMul runs the scaling-and-squaring algorithm with an injected
// multiply, so the BLAS backend accelerates the dominant cost without a
// second copy of the algorithm.
func expWithMul(m *Matrix, mul func(a, b *Matrix) *Matrix) *Matrix {
	n := m.n

	k := 0
	if norm := m.OneNorm(); norm > 1 {
		k = int(math.Ceil(math.Log2(norm)))
	}
	b := m.Scale(complex(1/math.Pow(2, float64(k)), 0))

	b2 := mul(b, b)
	b4 := mul(b2, b2)
	b6 := mul(b4, b2)

	// Even part V = c0·I + c2·B² + c4·B⁴ + c6·B⁶,
	// odd part  U = B·(c1·I + c3·B² + c5·B⁴).
	v := Identity(n).Scale(complex(padeCoeffs[0], 0))
	v.AddInPlace(b2, complex(padeCoeffs[2], 0))
	v.AddInPlace(b4, complex(padeCoeffs[4], 0))
	v.AddInPlace(b6, complex(padeCoeffs[6], 0))

	uInner := Identity(n).Scale(complex(padeCoeffs[1], 0))
	uInner.AddInPlace(b2, complex(padeCoeffs[3], 0))
	uInner.AddInPlace(b4, complex(padeCoeffs[5], 0))
	u := mul(b, uInner)

	// exp(B) ≈ (V - U)⁻¹ (V + U)
	num := v.Add(u)
	den := v.Sub(u)
	f := mul(denseInverse(den), num)

	for i := 0; i < k; i++ {
		f = mul(f, f)
	}
	return f
}
