package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trainaudit/internal/archive"
)

// archivedRun audits the deload timeline into a fresh archive.
func archivedRun(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audits.db")
	_, _, err := runCommand(t, NewAuditCommand(fixedOptions("text")), writeDeloadWeeks(t), "--archive", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestHistoryCommand_Text(t *testing.T) {
	dbPath := archivedRun(t)

	out, _, err := runCommand(t, NewHistoryCommand(fixedOptions("text")), "--archive", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "test-run-default")
	assert.Contains(t, out, "2024-01-01T00:00:00Z")
	assert.Contains(t, out, "incorrect or dangerous")
	assert.Contains(t, out, "1 run(s)")
}

func TestHistoryCommand_JSON(t *testing.T) {
	dbPath := archivedRun(t)

	out, _, err := runCommand(t, NewHistoryCommand(fixedOptions("json")), "--archive", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []archive.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "test-run-default", resp.Data[0].ID)
	assert.Equal(t, 20, resp.Data[0].Scores.Clinical)
}

func TestHistoryCommand_Timeline(t *testing.T) {
	dbPath := archivedRun(t)

	out, _, err := runCommand(t, NewHistoryCommand(fixedOptions("text")), "--archive", dbPath, "--timeline", "unknown-digest")
	require.NoError(t, err)
	assert.Contains(t, out, "No archived runs.")
}

func TestHistoryCommand_Run(t *testing.T) {
	dbPath := archivedRun(t)

	out, _, err := runCommand(t, NewHistoryCommand(fixedOptions("text")), "--archive", dbPath, "--run", "test-run-default")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "test-run-default", doc["run_id"])

	out, _, err = runCommand(t, NewHistoryCommand(fixedOptions("text")), "--archive", dbPath, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run not found: missing")
}

func TestHistoryCommand_MissingArchive(t *testing.T) {
	out, _, err := runCommand(t, NewHistoryCommand(fixedOptions("text")), "--archive", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E301]: archive not found")
}

func TestHistoryCommand_ArchiveRequired(t *testing.T) {
	_, _, err := runCommand(t, NewHistoryCommand(fixedOptions("text")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "archive" not set`)
}
