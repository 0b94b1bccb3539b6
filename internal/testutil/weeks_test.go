package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trainaudit/internal/snapshot"
)

func TestWeekSpec_RoundTripsThroughParser(t *testing.T) {
	spec := Week(3, P("chest", 10).Failing(), P("back", 12).WithTechniques("rest_pause")).
		WithFeedback(8.5, 0.9).
		InPhase("deload").
		Expecting("high").
		WithExtraDecisions(2)

	recs := Records(t, spec)
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, 3, rec.Week)
	require.NotNil(t, rec.Feedback)
	assert.Equal(t, 8.5, rec.Feedback.Fatigue)
	assert.Equal(t, snapshot.PhaseDeload, rec.Phase)
	assert.Equal(t, snapshot.FatigueHigh, rec.FatigueExpectation)
	assert.Equal(t, 10, rec.Volume.Sets("chest"))
	assert.Equal(t, 1, rec.AllowFailureCount)
	assert.Equal(t, []string{"chest exercise"}, rec.AllowFailureExercises)
	assert.Equal(t, 1, rec.IntensificationCount)
	assert.Len(t, rec.Decisions, 5)
	assert.Equal(t, "week_03.json", rec.Source)
}

func TestWeekSpec_CustomCategories(t *testing.T) {
	recs := Records(t, Week(1, P("chest", 10)).WithCategories("week_setup"))
	assert.Equal(t, []string{"week_setup"}, recs[0].Categories())

	recs = Records(t, Week(1, P("chest", 10)).WithCategories())
	assert.Empty(t, recs[0].Decisions)
}

func TestWeekSpec_Lookahead(t *testing.T) {
	spec := Week(1, P("chest", 10))
	spec.Lookahead = []PrescriptionSpec{P("chest", 12).Failing()}

	all, err := BuildRecords(snapshot.BlockScopeAll, spec)
	require.NoError(t, err)
	assert.Equal(t, 22, all[0].Volume.Sets("chest"))
	assert.Equal(t, 2, all[0].BlockCount)

	first, err := BuildRecords(snapshot.BlockScopeFirst, spec)
	require.NoError(t, err)
	assert.Equal(t, 10, first[0].Volume.Sets("chest"))
	assert.Equal(t, 0, first[0].AllowFailureCount)
}

func TestWriteWeeks(t *testing.T) {
	dir := t.TempDir()
	WriteWeeks(t, dir, Week(1, P("chest", 10)), Week(2, P("chest", 11)))

	for _, name := range []string{"week_01.json", "week_02.json"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		_, err = snapshot.Parse(raw, snapshot.Options{})
		require.NoError(t, err)
	}
}
