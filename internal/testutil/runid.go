package testutil

import "time"

// FixedRunIDGenerator returns the same run ID every time so reports render
// byte-identically across test runs.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id. An empty id yields
// "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

// NewFixedClock returns a clock pinned to 2024-01-01T00:00:00Z.
func NewFixedClock() FixedClock {
	return FixedClock{T: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return c.T
}
