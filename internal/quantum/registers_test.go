package quantum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAxisValidation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(rm *RegisterMap) error
		wantErr bool
	}{
		{
			name: "valid pair",
			setup: func(rm *RegisterMap) error {
				return rm.RegisterAxis(0, "Wheat", "Chaff")
			},
		},
		{
			name: "degenerate labels",
			setup: func(rm *RegisterMap) error {
				return rm.RegisterAxis(0, "Wheat", "Wheat")
			},
			wantErr: true,
		},
		{
			name: "non-contiguous index",
			setup: func(rm *RegisterMap) error {
				return rm.RegisterAxis(2, "Wheat", "Chaff")
			},
			wantErr: true,
		},
		{
			name: "label rebound to another qubit",
			setup: func(rm *RegisterMap) error {
				if err := rm.RegisterAxis(0, "Wheat", "Chaff"); err != nil {
					return err
				}
				return rm.RegisterAxis(1, "Wheat", "Soil")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := NewRegisterMap()
			err := tt.setup(rm)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnknownLabelsReadAsMinusOne(t *testing.T) {
	rm := NewRegisterMap()
	require.NoError(t, rm.RegisterAxis(0, "Wheat", "Chaff"))

	assert.Equal(t, -1, rm.Qubit("Nothing"))
	assert.Equal(t, -1, rm.Pole("Nothing"))
	assert.Equal(t, 0, rm.Qubit("Wheat"))
	assert.Equal(t, 1, rm.Pole("Chaff"))
}

func TestDimGrowsWithAxes(t *testing.T) {
	rm := NewRegisterMap()
	assert.Equal(t, 1, rm.Dim())
	require.NoError(t, rm.RegisterAxis(0, "Wheat", "Chaff"))
	assert.Equal(t, 2, rm.Dim())
	require.NoError(t, rm.RegisterAxis(1, "Sun", "Moon"))
	assert.Equal(t, 4, rm.Dim())
	assert.Equal(t, 2, rm.NumQubits())
}

// Qubit 0 occupies the most-significant bit of a basis index.
func TestBasisConversionIsMSBFirst(t *testing.T) {
	rm := NewRegisterMap()
	require.NoError(t, rm.RegisterAxis(0, "Wheat", "Chaff"))
	require.NoError(t, rm.RegisterAxis(1, "Sun", "Moon"))

	// basis 2 = binary 10: qubit 0 in pole 1, qubit 1 in pole 0.
	assert.Equal(t, []string{"Chaff", "Sun"}, rm.BasisToLabels(2))
	assert.Equal(t, []string{"Wheat", "Moon"}, rm.BasisToLabels(1))
	assert.Equal(t, []string{"Wheat", "Sun"}, rm.BasisToLabels(0))

	assert.Equal(t, 2, rm.LabelsToBasis([]string{"Chaff", "Sun"}))
	assert.Equal(t, 3, rm.LabelsToBasis([]string{"Chaff", "Moon"}))
	// Tuple order does not matter, coordinates do.
	assert.Equal(t, 3, rm.LabelsToBasis([]string{"Moon", "Chaff"}))
}

func TestLabelsToBasisRejectsBadTuples(t *testing.T) {
	rm := NewRegisterMap()
	require.NoError(t, rm.RegisterAxis(0, "Wheat", "Chaff"))
	require.NoError(t, rm.RegisterAxis(1, "Sun", "Moon"))

	assert.Equal(t, -1, rm.LabelsToBasis([]string{"Wheat"}))
	assert.Equal(t, -1, rm.LabelsToBasis([]string{"Wheat", "Nothing"}))
	// Same qubit named twice.
	assert.Equal(t, -1, rm.LabelsToBasis([]string{"Wheat", "Chaff"}))
}

func TestBasisToLabelsRoundTrip(t *testing.T) {
	rm := NewRegisterMap()
	require.NoError(t, rm.RegisterAxis(0, "A0", "A1"))
	require.NoError(t, rm.RegisterAxis(1, "B0", "B1"))
	require.NoError(t, rm.RegisterAxis(2, "C0", "C1"))

	for basis := 0; basis < rm.Dim(); basis++ {
		labels := rm.BasisToLabels(basis)
		require.Len(t, labels, 3)
		assert.Equal(t, basis, rm.LabelsToBasis(labels))
	}
	assert.Nil(t, rm.BasisToLabels(8))
	assert.Nil(t, rm.BasisToLabels(-1))
}
