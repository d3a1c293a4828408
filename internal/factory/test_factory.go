package factory

import (
	"time"

	"github.com/pairsync/pairsync/internal/dependencies/mocks"
	"github.com/pairsync/pairsync/internal/services/auth"
	"github.com/pairsync/pairsync/internal/storage/memory"
	"github.com/pairsync/pairsync/internal/testutil"
)

// TestApp wires an App over in-memory storage with mockable dependencies
type TestApp struct {
	*App

	MemStorage *memory.Storage
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates a fully wired App for tests: in-memory storage, a
// frozen clock, queued randomness, and a discarding logger.
func NewTestApp(registry auth.Registry) *TestApp {
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()

	app := newWithDependencies(store, clk, rnd, registry, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MemStorage: store,
		MockClock:  clk,
		MockRandom: rnd,
	}
}
