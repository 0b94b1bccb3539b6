package timeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/testutil"
)

func TestNew_OrdersAndIterates(t *testing.T) {
	recs := testutil.Records(t,
		testutil.Week(1, testutil.P("chest", 10)),
		testutil.Week(2, testutil.P("chest", 11)),
		testutil.Week(4, testutil.P("chest", 12)),
	)

	tl, err := New(recs)
	require.NoError(t, err)

	assert.Equal(t, 3, tl.Len())
	assert.Equal(t, 4, tl.At(2).Week)
	assert.Len(t, tl.Digest(), 64)

	pairs := tl.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, 2, pairs[1].Prev.Week)
	assert.Equal(t, 4, pairs[1].Curr.Week)

	triples := tl.Triples()
	require.Len(t, triples, 1)
	assert.Equal(t, []int{1, 2, 4}, []int{triples[0].A.Week, triples[0].B.Week, triples[0].C.Week})

	rec, ok := tl.Week(4)
	require.True(t, ok)
	assert.Equal(t, 12, rec.Volume.Sets("chest"))
	_, ok = tl.Week(3)
	assert.False(t, ok)
}

func TestNew_RejectsOutOfOrderWeeks(t *testing.T) {
	recs := testutil.Records(t,
		testutil.Week(2, testutil.P("chest", 10)),
		testutil.Week(1, testutil.P("chest", 10)),
	)

	_, err := New(recs)
	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 1, orderErr.Index)
	assert.Equal(t, 2, orderErr.Previous)
}

func TestNew_RejectsDuplicateWeeks(t *testing.T) {
	recs := testutil.Records(t,
		testutil.Week(1, testutil.P("chest", 10)),
		testutil.Week(1, testutil.P("chest", 12)),
	)

	_, err := New(recs)
	require.Error(t, err)
}

func TestNew_ShortTimelines(t *testing.T) {
	tl, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Len())
	assert.Nil(t, tl.Pairs())
	assert.Nil(t, tl.Triples())

	tl, err = New(testutil.Records(t, testutil.Week(1), testutil.Week(2)))
	require.NoError(t, err)
	assert.Len(t, tl.Pairs(), 1)
	assert.Nil(t, tl.Triples())
}

func TestRecords_ReturnsCopy(t *testing.T) {
	tl, err := New(testutil.Records(t, testutil.Week(1), testutil.Week(2)))
	require.NoError(t, err)

	recs := tl.Records()
	recs[0] = nil
	assert.NotNil(t, tl.At(0))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWeeks(t, dir,
		testutil.Week(1, testutil.P("chest", 10)).WithFeedback(6, 0.9),
		testutil.Week(2, testutil.P("chest", 12)),
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	loader := &Loader{}
	tl, err := loader.Load(dir)
	require.NoError(t, err)

	require.Equal(t, 2, tl.Len())
	assert.Equal(t, "week_01.json", tl.At(0).Source)
	assert.True(t, tl.At(0).HasFeedback())
	assert.Equal(t, 12, tl.At(1).Volume.Sets("chest"))
}

func TestLoader_DigestIsStable(t *testing.T) {
	specs := []testutil.WeekSpec{
		testutil.Week(1, testutil.P("chest", 10)),
		testutil.Week(2, testutil.P("chest", 12)),
	}
	dirA, dirB := t.TempDir(), t.TempDir()
	testutil.WriteWeeks(t, dirA, specs...)
	testutil.WriteWeeks(t, dirB, specs...)

	a, err := (&Loader{}).Load(dirA)
	require.NoError(t, err)
	b, err := (&Loader{}).Load(dirB)
	require.NoError(t, err)
	assert.Equal(t, a.Digest(), b.Digest())
}

func TestLoader_FirstBlockScope(t *testing.T) {
	dir := t.TempDir()
	spec := testutil.Week(1, testutil.P("chest", 10))
	spec.Lookahead = []testutil.PrescriptionSpec{testutil.P("chest", 14)}
	testutil.WriteWeeks(t, dir, spec)

	tl, err := (&Loader{Scope: snapshot.BlockScopeFirst}).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, tl.At(0).Volume.Sets("chest"))
}

func TestLoader_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := (&Loader{}).Load("/nonexistent/snapshots")
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "week_01.json")
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

		_, err := (&Loader{}).Load(file)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := (&Loader{}).Load(t.TempDir())
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
	})

	t.Run("malformed snapshot aborts", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteWeeks(t, dir, testutil.Week(1, testutil.P("chest", 10)))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "week_02.json"), []byte(`{"weekNumber": 2}`), 0o644))

		_, err := (&Loader{}).Load(dir)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, ErrCodeMalformed, loadErr.Code)
		assert.ErrorIs(t, err, snapshot.ErrMalformedSnapshot)
	})

	t.Run("lexicographic order disagrees with weeks", func(t *testing.T) {
		dir := t.TempDir()
		// week_10 sorts before week_2 when names are not zero padded.
		for _, spec := range []testutil.WeekSpec{testutil.Week(2), testutil.Week(10)} {
			raw, err := spec.JSON()
			require.NoError(t, err)
			name := filepath.Join(dir, "week_"+map[int]string{2: "2", 10: "10"}[spec.Week]+".json")
			require.NoError(t, os.WriteFile(name, raw, 0o644))
		}

		_, err := (&Loader{}).Load(dir)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, ErrCodeWeekOrder, loadErr.Code)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := (&Loader{Pattern: "week_[.json"}).Load(t.TempDir())
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, ErrCodePattern, loadErr.Code)
	})
}
