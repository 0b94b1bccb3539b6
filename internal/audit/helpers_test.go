package audit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/trainaudit/internal/testutil"
	"github.com/roach88/trainaudit/internal/timeline"
)

func build(t *testing.T, specs ...testutil.WeekSpec) *timeline.Timeline {
	t.Helper()
	tl, err := timeline.New(testutil.Records(t, specs...))
	require.NoError(t, err)
	return tl
}

var (
	P    = testutil.P
	Week = testutil.Week
)
