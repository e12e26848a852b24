package quantum

import (
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// QubitBloch is the per-qubit export packet for visualization consumers:
// pole probabilities, the Bloch-sphere coordinate, and its polar form.
// Eight floats per qubit.
type QubitBloch struct {
	Qubit  int     `msgpack:"qubit" json:"qubit"`
	LabelA string  `msgpack:"label_a" json:"label_a"`
	LabelB string  `msgpack:"label_b" json:"label_b"`
	P0     float64 `msgpack:"p0" json:"p0"`
	P1     float64 `msgpack:"p1" json:"p1"`
	X      float64 `msgpack:"x" json:"x"`
	Y      float64 `msgpack:"y" json:"y"`
	Z      float64 `msgpack:"z" json:"z"`
	Radius float64 `msgpack:"r" json:"r"`
	Theta  float64 `msgpack:"theta" json:"theta"`
	Phi    float64 `msgpack:"phi" json:"phi"`
}

// BlochPacket exports the per-qubit Bloch vectors from the one-qubit
// marginals. Read-only.
func (c *Computer) BlochPacket() []QubitBloch {
	if !c.Active() {
		return nil
	}
	n := c.registers.NumQubits()
	out := make([]QubitBloch, n)
	for q := 0; q < n; q++ {
		red := c.ReducedDensityMatrix([]int{q})
		p0 := real(red.At(0, 0))
		p1 := real(red.At(1, 1))
		offDiag := red.At(0, 1)

		x := 2 * real(offDiag)
		y := -2 * imag(offDiag)
		z := p0 - p1
		r := math.Sqrt(x*x + y*y + z*z)

		ax, _ := c.registers.AxisAt(q)
		out[q] = QubitBloch{
			Qubit:  q,
			LabelA: ax.LabelA,
			LabelB: ax.LabelB,
			P0:     p0,
			P1:     p1,
			X:      x,
			Y:      y,
			Z:      z,
			Radius: r,
			Theta:  math.Atan2(math.Hypot(x, y), z),
			Phi:    math.Atan2(y, x),
		}
	}
	return out
}

// EncodeBlochPacket serializes packets to msgpack for stream consumers.
func EncodeBlochPacket(packets []QubitBloch) ([]byte, error) {
	return msgpack.Marshal(packets)
}

// DecodeBlochPacket is the inverse of EncodeBlochPacket.
func DecodeBlochPacket(data []byte) ([]QubitBloch, error) {
	var out []QubitBloch
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
