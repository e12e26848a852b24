package quantum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurityBounds(t *testing.T) {
	pure := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	assert.InDelta(t, 1.0, pure.Purity(), 1e-12)

	mixed := newTestComputer(t, true, [2]string{"Wheat", "Chaff"})
	assert.InDelta(t, 0.5, mixed.Purity(), 1e-12)
}

func TestEntropy(t *testing.T) {
	pure := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	assert.InDelta(t, 0, pure.Entropy(), 1e-9)

	mixed := newTestComputer(t, true, [2]string{"Wheat", "Chaff"})
	assert.InDelta(t, math.Ln2, mixed.Entropy(), 1e-9)
}

func TestCoherenceOfSuperposition(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	assert.InDelta(t, 0, c.Coherence("Wheat", "Chaff"), 1e-12)

	require.True(t, c.ApplyGate(0, Hadamard()))
	assert.InDelta(t, 0.5, c.Coherence("Wheat", "Chaff"), 1e-10)

	assert.Equal(t, 0.0, c.Coherence("Wheat", "Dragon"))
}

func TestReducedDensityMatrix(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"}, [2]string{"Sun", "Moon"})
	require.True(t, c.ApplyGate(0, Hadamard()))

	// Qubit 0 is in |+⟩, qubit 1 in its ground pole.
	r0 := c.ReducedDensityMatrix([]int{0})
	require.Equal(t, 2, r0.Dim())
	assert.InDelta(t, 0.5, real(r0.At(0, 0)), 1e-10)
	assert.InDelta(t, 0.5, real(r0.At(0, 1)), 1e-10)

	r1 := c.ReducedDensityMatrix([]int{1})
	assert.InDelta(t, 1, real(r1.At(0, 0)), 1e-10)

	rAll := c.ReducedDensityMatrix([]int{0, 1})
	require.Equal(t, 4, rAll.Dim())
	assert.InDelta(t, 1, real(rAll.Trace()), 1e-10)
}

func TestReducedDensityMatrixRejectsBadSubsets(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	for _, subset := range [][]int{{-1}, {3}, {0, 0}} {
		r := c.ReducedDensityMatrix(subset)
		assert.Equal(t, 1, r.Dim())
		assert.Equal(t, complex128(1), r.At(0, 0))
	}
}

func TestMutualInformationOfBellState(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"}, [2]string{"Sun", "Moon"})
	require.True(t, c.Entangle(0, 1))

	// Maximally entangled pair: S(A)=S(B)=ln2, S(AB)=0, so I = 2·ln2.
	assert.InDelta(t, 2*math.Ln2, c.MutualInformation(0, 1), 1e-6)
}

func TestMutualInformationOfProductState(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"}, [2]string{"Sun", "Moon"})
	require.True(t, c.ApplyGate(0, Hadamard()))

	assert.InDelta(t, 0, c.MutualInformation(0, 1), 1e-8)
	assert.Equal(t, 0.0, c.MutualInformation(0, 0))
	assert.Equal(t, 0.0, c.MutualInformation(0, 5))
}

func TestBlochPacketGroundState(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	pkt := c.BlochPacket()
	require.Len(t, pkt, 1)

	assert.Equal(t, "Wheat", pkt[0].LabelA)
	assert.InDelta(t, 1, pkt[0].P0, 1e-12)
	assert.InDelta(t, 0, pkt[0].P1, 1e-12)
	assert.InDelta(t, 1, pkt[0].Z, 1e-12)
	assert.InDelta(t, 0, pkt[0].Theta, 1e-9)
	assert.InDelta(t, 1, pkt[0].Radius, 1e-9)
}

func TestBlochPacketSuperposition(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	require.True(t, c.ApplyGate(0, Hadamard()))

	pkt := c.BlochPacket()
	require.Len(t, pkt, 1)
	assert.InDelta(t, 1, pkt[0].X, 1e-9)
	assert.InDelta(t, 0, pkt[0].Z, 1e-9)
	assert.InDelta(t, math.Pi/2, pkt[0].Theta, 1e-9)
}

func TestBlochPacketEncodeDecode(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"}, [2]string{"Sun", "Moon"})
	require.True(t, c.Entangle(0, 1))

	data, err := EncodeBlochPacket(c.BlochPacket())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := DecodeBlochPacket(data)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Sun", back[1].LabelA)
	assert.InDelta(t, 0.5, back[0].P0, 1e-9)
}

func TestPopulationOfUnknownLabelIsZero(t *testing.T) {
	c := newTestComputer(t, false, [2]string{"Wheat", "Chaff"})
	assert.Equal(t, 0.0, c.Population("Dragon"))
}
