package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

func TestTraceCmd_RequiresTwoArgs(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("trace", "case-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestTraceCmd_PrintsNodesInOrder(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("trace", "case-1", "req-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Trace (2 nodes)")
	assert.Less(t, strings.Index(out, "retrieve"), strings.Index(out, "score"))
	assert.Contains(t, out, "15.5 ms")
}

func TestTraceCmd_Empty(t *testing.T) {
	wf, _, _, cleanup := setupTestServices()
	defer cleanup()
	wf.trace = nil

	out, err := execute("trace", "case-1", "req-1")

	require.NoError(t, err)
	assert.Contains(t, out, "no trace nodes")
}

func TestTraceCmd_JSON(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("trace", "case-1", "req-1", "--json")

	require.NoError(t, err)
	var trace domain.Trace
	require.NoError(t, json.Unmarshal([]byte(out), &trace))
	require.Len(t, trace.Nodes, 2)
	assert.Equal(t, "retrieve", trace.Nodes[0].NodeName)
}

func TestTraceCmd_Error(t *testing.T) {
	wf, _, _, cleanup := setupTestServices()
	defer cleanup()
	wf.traceErr = &domain.GatewayError{Op: "trace", Status: 404, Message: "not found"}

	_, err := execute("trace", "case-1", "req-x")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
}
