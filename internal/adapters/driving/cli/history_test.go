package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

func TestHistoryCmd_HasLimitFlag(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "20", flag.DefValue)
}

func TestHistoryCmd_Empty(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("history")

	require.NoError(t, err)
	assert.Contains(t, out, "No verifications recorded.")
}

func TestHistoryCmd_ListsRecords(t *testing.T) {
	_, _, hist, cleanup := setupTestServices()
	defer cleanup()
	hist.records = []domain.VerificationRecord{
		sampleRecord("ver-1", "case-1", true),
		sampleRecord("ver-2", "case-1", false),
	}

	out, err := execute("history", "case-1", "--limit", "5")

	require.NoError(t, err)
	assert.Equal(t, domain.VerificationFilter{CaseID: "case-1", Limit: 5}, hist.lastFilter)
	assert.Contains(t, out, "ver-1")
	assert.Contains(t, out, "MISMATCH")
	assert.Contains(t, out, domain.FieldDecision)
}

func TestHistoryCmd_JSONEmptyIsArray(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("history", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestHistoryCmd_ListError(t *testing.T) {
	_, _, hist, cleanup := setupTestServices()
	defer cleanup()
	hist.listErr = errBoom

	_, err := execute("history")

	assert.ErrorIs(t, err, errBoom)
}

func TestHistoryCmd_NoService(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()
	historyService = nil

	_, err := execute("history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestHistoryShowCmd(t *testing.T) {
	_, _, hist, cleanup := setupTestServices()
	defer cleanup()
	hist.records = []domain.VerificationRecord{sampleRecord("ver-2", "case-1", false)}

	out, err := execute("history", "show", "ver-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Verification ver-2")
	assert.Contains(t, out, "APPROVE -> DECLINE")
	assert.Contains(t, out, "MISMATCH")
}

func TestHistoryShowCmd_JSON(t *testing.T) {
	_, _, hist, cleanup := setupTestServices()
	defer cleanup()
	hist.records = []domain.VerificationRecord{sampleRecord("ver-1", "case-1", true)}

	out, err := execute("history", "show", "ver-1", "--json")

	require.NoError(t, err)
	var record domain.VerificationRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "ver-1", record.ID)
	assert.True(t, record.Pass)
}

func TestHistoryShowCmd_NotFound(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("history", "show", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
