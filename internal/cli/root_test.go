package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synckit/internal/cli"
	"github.com/macropower/synckit/pkg/bench"
	"github.com/macropower/synckit/pkg/log"
)

func TestQueueCmd(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_queue", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{
		"queue",
		"--producers=2", "--consumers=2", "--items=500", "--capacity=16",
		"--quiet",
	})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.NoError(t, err)
	assert.Empty(t, stderr.String(), "stderr should be empty")
	assert.Contains(t, stdout.String(), "Ran 1 scenarios")
	assert.Contains(t, stdout.String(), "1,000 pushed, 1,000 popped")
}

func TestGuardCmd(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_guard", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{"guard", "--promoters=4", "--churns=2000", "--quiet"})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.NoError(t, err)
	assert.Empty(t, stderr.String(), "stderr should be empty")
	assert.Contains(t, stdout.String(), "Guard:")
	assert.Contains(t, stdout.String(), "1 disposals")
}

func TestRunCmdWithConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: ci
scenarios:
  - name: small
    kind: queue
    producers: 2
    consumers: 2
    items: 250
    capacity: 8
`), 0o600))

	tc := cli.NewRootCmd("test_run_config", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{"run", "--config", path, "--quiet"})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.NoError(t, err)
	assert.Empty(t, stderr.String(), "stderr should be empty")
	assert.Contains(t, stdout.String(), "Ran 1 scenarios")
	assert.Contains(t, stdout.String(), "500 pushed")
}

func TestRunCmdInvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - name: typo
    produces: 2
`), 0o600))

	tc := cli.NewRootCmd("test_run_bad_config", "", "")
	tc.SetArgs([]string{"run", "--config", path, "--quiet"})
	tc.SetOut(&bytes.Buffer{})
	tc.SetErr(&bytes.Buffer{})

	err := tc.Execute()
	require.ErrorIs(t, err, bench.ErrInvalidSuite)
}

func TestQueueCmdInvalidFlags(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_queue_invalid", "", "")
	tc.SetArgs([]string{"queue", "--producers=0", "--quiet"})
	tc.SetOut(&bytes.Buffer{})
	tc.SetErr(&bytes.Buffer{})

	err := tc.Execute()
	require.ErrorIs(t, err, bench.ErrInvalidSuite)
}

func TestSchemaCmd(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_schema", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{"schema"})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.NoError(t, err)
	assert.Empty(t, stderr.String(), "stderr should be empty")
	assert.Contains(t, stdout.String(), `"$schema"`)
	assert.Contains(t, stdout.String(), `"scenarios"`)
}

func TestRootCmdInvalidLogLevel(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_bad_level", "", "")
	tc.SetArgs([]string{"--log_level=bananas", "version"})
	tc.SetOut(&bytes.Buffer{})
	tc.SetErr(&bytes.Buffer{})

	err := tc.Execute()
	require.ErrorIs(t, err, log.ErrInvalidLevel)
}
