package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudecon/SpaceWheat-sub011/internal/quantum"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.json", `{
		"Wheat": {
			"self_energy": 1.5,
			"hamiltonian_couplings": {"Chaff": 0.7, "Sun": [0.1, 0.2]},
			"lindblad_outgoing": {"Chaff": 0.3}
		},
		"Vacuum": {"sink": true}
	}`)
	writeFile(t, dir, "drivers.json", `{
		"Sun": {
			"driver": {"type": "cosine", "frequency": 0.5, "amplitude": 2},
			"gated": [{"source": "Wheat", "gate": "Sun", "rate": 1, "power": 2, "inverse": true}]
		}
	}`)
	writeFile(t, dir, "notes.txt", `ignored`)

	reg, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"Sun", "Vacuum", "Wheat"}, reg.Labels())

	wheat, ok := reg.Icon("Wheat")
	require.True(t, ok)
	assert.InDelta(t, 1.5, wheat.SelfEnergy, 1e-12)
	assert.Equal(t, complex(0.7, 0), wheat.Couplings["Chaff"].Value)
	assert.Equal(t, complex(0.1, 0.2), wheat.Couplings["Sun"].Value)

	vac, ok := reg.Icon("Vacuum")
	require.True(t, ok)
	assert.True(t, vac.Sink)

	sun, ok := reg.Icon("Sun")
	require.True(t, ok)
	require.NotNil(t, sun.Driver)
	assert.Equal(t, quantum.DriverCosine, sun.Driver.Type)
	require.Len(t, sun.Gated, 1)
	assert.True(t, sun.Gated[0].Inverse)

	_, ok = reg.Icon("Dragon")
	assert.False(t, ok)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"Wheat": `)

	_, err := Load(dir, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	assert.Error(t, err)
}

func TestLaterFilesOverrideEarlier(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"Wheat": {"self_energy": 1}}`)
	writeFile(t, dir, "b.json", `{"Wheat": {"self_energy": 2}}`)

	reg, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	wheat, _ := reg.Icon("Wheat")
	assert.InDelta(t, 2, wheat.SelfEnergy, 1e-12)
}

func TestTableIsACopy(t *testing.T) {
	reg := NewFromMap(map[string]quantum.IconPhysics{
		"Wheat": {SelfEnergy: 1},
	}, zerolog.Nop())

	table := reg.Table()
	table["Wheat"] = quantum.IconPhysics{SelfEnergy: 99}

	wheat, _ := reg.Icon("Wheat")
	assert.InDelta(t, 1, wheat.SelfEnergy, 1e-12)
}
