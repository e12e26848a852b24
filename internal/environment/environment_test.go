package environment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudecon/SpaceWheat-sub011/internal/content"
	"github.com/dudecon/SpaceWheat-sub011/internal/quantum"
)

func testRegistry(icons map[string]quantum.IconPhysics) *content.Registry {
	return content.NewFromMap(icons, zerolog.Nop())
}

func newTestEnv(t *testing.T, icons map[string]quantum.IconPhysics, labels ...string) *Environment {
	t.Helper()
	env, err := New(Config{
		Name:   "test",
		Labels: labels,
		Seed:   7,
		Log:    zerolog.Nop(),
	}, testRegistry(icons))
	require.NoError(t, err)
	return env
}

func TestNewRejectsBadLabelLists(t *testing.T) {
	reg := testRegistry(nil)

	_, err := New(Config{Name: "empty", Log: zerolog.Nop()}, reg)
	assert.Error(t, err)

	_, err = New(Config{Name: "odd", Labels: []string{"Wheat"}, Log: zerolog.Nop()}, reg)
	assert.Error(t, err)

	_, err = New(Config{Name: "degenerate", Labels: []string{"Wheat", "Wheat"}, Log: zerolog.Nop()}, reg)
	assert.Error(t, err)
}

func TestEnvironmentHasStableIdentity(t *testing.T) {
	a := newTestEnv(t, nil, "Wheat", "Chaff")
	b := newTestEnv(t, nil, "Wheat", "Chaff")

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "test", a.Name())
	assert.Equal(t, []string{"Wheat", "Chaff"}, a.Labels())
	assert.Equal(t, 1, a.NumQubits())
}

func TestTickAdvancesTimeAndCounts(t *testing.T) {
	env := newTestEnv(t, map[string]quantum.IconPhysics{
		"Wheat": {LindbladOutgoing: map[string]float64{"Chaff": 0.5}},
	}, "Wheat", "Chaff")

	var snap Snapshot
	for i := 0; i < 10; i++ {
		snap = env.Tick(0.01)
	}

	assert.Equal(t, uint64(10), snap.Tick)
	assert.InDelta(t, 0.1, snap.Time, 1e-12)
	assert.InDelta(t, 1.0, snap.Trace, 1e-9)
	assert.Greater(t, snap.Populations["Chaff"], 0.0)
}

func TestSnapshotPopulationsCoverAllLabels(t *testing.T) {
	env := newTestEnv(t, nil, "Wheat", "Chaff", "Moon", "Sun")
	snap := env.Tick(0.01)

	assert.Len(t, snap.Populations, 4)
	total := 0.0
	for _, label := range []string{"Wheat", "Chaff"} {
		total += snap.Populations[label]
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestExtendWithGrowsTheRegister(t *testing.T) {
	icons := map[string]quantum.IconPhysics{
		"Wheat": {LindbladOutgoing: map[string]float64{"Moon": 0.3}},
	}
	env := newTestEnv(t, icons, "Wheat", "Chaff")
	before := env.Population("Wheat")

	require.NoError(t, env.ExtendWith("Moon", "Sun"))

	assert.Equal(t, 2, env.NumQubits())
	assert.InDelta(t, before, env.Population("Wheat"), 1e-12)

	// The rebuilt channels now reach the new axis.
	env.Tick(0.05)
	assert.Greater(t, env.Population("Moon"), 0.0)
}

func TestExtendWithRejectsKnownLabels(t *testing.T) {
	env := newTestEnv(t, nil, "Wheat", "Chaff")
	assert.Error(t, env.ExtendWith("Wheat", "Sun"))
	assert.Equal(t, 1, env.NumQubits())
}

func TestSinkFluxDrainsAndResets(t *testing.T) {
	icons := map[string]quantum.IconPhysics{
		"Wheat":  {LindbladOutgoing: map[string]float64{"Vacuum": 0.8}},
		"Vacuum": {Sink: true},
	}
	env, err := New(Config{
		Name:   "leaky",
		Labels: []string{"Wheat", "Chaff", "Vacuum", "Anti"},
		Seed:   7,
		Log:    zerolog.Nop(),
	}, testRegistry(icons))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		env.Tick(0.02)
	}

	flux := env.DrainSinkFlux()
	assert.Greater(t, flux, 0.0)
	assert.Equal(t, 0.0, env.DrainSinkFlux())
}

func TestEntangleAndMeasureThroughEnvironment(t *testing.T) {
	env := newTestEnv(t, nil, "Wheat", "Chaff", "Moon", "Sun")
	require.True(t, env.Entangle(0, 1))
	assert.Equal(t, []int{1}, env.Entangled(0))

	outcome := env.MeasureAxis("Wheat", "Chaff")
	assert.Contains(t, []string{"Wheat", "Chaff"}, outcome)

	// Bell correlation: the partner axis collapses with the first.
	partner := env.MeasureAxis("Moon", "Sun")
	if outcome == "Wheat" {
		assert.Equal(t, "Moon", partner)
	} else {
		assert.Equal(t, "Sun", partner)
	}
}

func TestObservablePassThroughs(t *testing.T) {
	env := newTestEnv(t, nil, "Wheat", "Chaff")

	assert.InDelta(t, 1.0, env.Population("Wheat"), 1e-12)
	assert.InDelta(t, 1.0, env.Purity(), 1e-9)
	assert.InDelta(t, 0.0, env.Entropy(), 1e-9)
	assert.InDelta(t, 0.0, env.Coherence("Wheat", "Chaff"), 1e-12)

	bloch := env.Bloch()
	require.Len(t, bloch, 1)
	assert.InDelta(t, 1.0, bloch[0].Z, 1e-9)
}

type recordingSink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (s *recordingSink) SaveSnapshot(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func TestManagerFleetLifecycle(t *testing.T) {
	sink := &recordingSink{}
	mgr := NewManager(zerolog.Nop(), time.Hour, 0.01, sink)
	reg := testRegistry(nil)

	env, err := mgr.Add(Config{Name: "one", Labels: []string{"Wheat", "Chaff"}, Log: zerolog.Nop()}, reg)
	require.NoError(t, err)

	got, ok := mgr.Get(env.ID())
	require.True(t, ok)
	assert.Same(t, env, got)

	_, ok = mgr.Get("missing")
	assert.False(t, ok)

	_, err = mgr.Add(Config{Name: "two", Labels: []string{"Moon", "Sun"}, Log: zerolog.Nop()}, reg)
	require.NoError(t, err)
	assert.Len(t, mgr.List(), 2)

	mgr.tickAll(context.Background())
	assert.Equal(t, 2, sink.count())
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	sink := &recordingSink{}
	mgr := NewManager(zerolog.Nop(), time.Millisecond, 0.01, sink)
	reg := testRegistry(nil)
	_, err := mgr.Add(Config{Name: "one", Labels: []string{"Wheat", "Chaff"}, Log: zerolog.Nop()}, reg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sink.count() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop after cancel")
	}
}
