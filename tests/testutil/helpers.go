// Package testutil provides shared helpers for the integration tests.
package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"store-upgrader/internal/app"
	"store-upgrader/internal/types"
)

// RepoRoot returns the repository root, assuming the test runs two
// directories below it.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// ScenarioPath resolves a fixture under tests/integration/testdata/scenarios.
func ScenarioPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(RepoRoot(t), "tests", "integration", "testdata", "scenarios", name)
	_, err := os.Stat(path)
	require.NoError(t, err, "missing scenario fixture %s", name)
	return path
}

// RunStdioSession feeds requests to a stdio server backed by the scenario
// and returns the replies keyed by id.
func RunStdioSession(t *testing.T, scenario string, requests ...string) map[string]types.ReplyEnvelope {
	t.Helper()
	var out bytes.Buffer
	service := app.Service{
		Stdin:  strings.NewReader(strings.Join(requests, "\n")),
		Stdout: &out,
		GOOS:   "linux",
	}
	err := service.Serve(t.Context(), app.ServeRequest{
		BackendRequest: app.BackendRequest{
			Backend:     types.BackendSimulated,
			Scenario:    scenario,
			DryRunShell: true,
		},
	})
	require.NoError(t, err)
	return DecodeReplies(t, out.Bytes())
}

func DecodeReplies(t *testing.T, data []byte) map[string]types.ReplyEnvelope {
	t.Helper()
	replies := map[string]types.ReplyEnvelope{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var reply types.ReplyEnvelope
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &reply))
		_, dup := replies[reply.ID]
		require.False(t, dup, "more than one reply for %s", reply.ID)
		replies[reply.ID] = reply
	}
	require.NoError(t, scanner.Err())
	return replies
}
