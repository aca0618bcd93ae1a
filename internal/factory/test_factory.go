package factory

import (
	"time"

	"github.com/mcoot/letterstacks/internal/config"
	"github.com/mcoot/letterstacks/internal/dependencies/mocks"
	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/storage/memory"
	"github.com/mcoot/letterstacks/internal/testutil"
)

// TestSecret signs tokens issued by test apps
const TestSecret = "letterstacks-test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Seeded    *random.SeededRandom
	Memory    *memory.Storage
}

// NewTestApp creates an App with a mock clock, seeded randomness and memory
// storage. Sessions are not auto-run: tests drive them with Advance.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	seeded := random.NewSeeded(42)

	cfg := config.Default()
	cfg.Auth.Secret = TestSecret

	app, err := newWithDependencies(store, mockClock, seeded, cfg, false, testutil.NopLogger())
	if err != nil {
		// Only auth can fail, and only when no secret is configured
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Seeded:    seeded,
		Memory:    store,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords(testutil.Words)
}
