package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/oboe/metadata"
)

// execute runs oboectl with args and fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oboectl "+Version)
	assert.Contains(t, out, "Go Version:")
}

func TestIDNew(t *testing.T) {
	out, err := execute(t, "id", "new")
	require.NoError(t, err)

	md, err := metadata.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.True(t, md.IsValid())
	assert.True(t, md.Sampled)

	out, err = execute(t, "id", "new", "--unsampled")
	require.NoError(t, err)
	md, err = metadata.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.False(t, md.Sampled)

	out, err = execute(t, "id", "new", "--v1")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	assert.Len(t, id, 58)
	assert.True(t, strings.HasPrefix(id, "1B"))
}

const xtrace = "2B0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456701"

func TestIDParse(t *testing.T) {
	out, err := execute(t, "id", "parse", xtrace)
	require.NoError(t, err)
	assert.Contains(t, out, "version: 2")
	assert.Contains(t, out, "task_id: 0123456789ABCDEF0123456789ABCDEF01234567")
	assert.Contains(t, out, "op_id:   89ABCDEF01234567")
	assert.Contains(t, out, "sampled: true")

	out, err = execute(t, "id", "parse", "--format", "json", xtrace)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": 2,
		"task_id": "0123456789ABCDEF0123456789ABCDEF01234567",
		"op_id": "89ABCDEF01234567",
		"sampled": true
	}`, out)

	_, err = execute(t, "id", "parse", "2BXYZ")
	assert.Error(t, err)

	_, err = execute(t, "id", "parse")
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	out, err := execute(t, "sample", "--mode", "always", "--rate", "1000000", "--layer", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "sampled:    true")
	assert.Contains(t, out, "source:     new-trace-forced")
	assert.Contains(t, out, "layer:      web")

	out, err = execute(t, "sample", "--mode", "through", "--xtrace", xtrace)
	require.NoError(t, err)
	assert.Contains(t, out, "continued:  true")
	assert.Contains(t, out, "source:     continued-trace")

	out, err = execute(t, "sample", "--mode", "never", "--count", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "sampled: 0/100")
	assert.Contains(t, out, "tracing-disabled: 100")
}

func TestSample_InvalidFlags(t *testing.T) {
	_, err := execute(t, "sample", "--count", "0")
	assert.Error(t, err)

	_, err = execute(t, "sample", "--mode", "sometimes")
	assert.Error(t, err)

	_, err = execute(t, "sample", "--rate", "1000001")
	assert.Error(t, err)
}

func TestSample_UsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oboe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  trace_mode: never\n"), 0o600))

	out, err := execute(t, "sample", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "source:     tracing-disabled")
}

func TestReport_File(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "events.bson")
	path := filepath.Join(dir, "oboe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
settings:
  trace_mode: always
  sample_rate: 1000000
reporter:
  type: file
  file:
    path: `+events+`
logger:
  level: error
`), 0o600))

	out, err := execute(t, "report", "--config", path, "--xtrace", xtrace)
	require.NoError(t, err)
	assert.Contains(t, out, "sampled: true (continued-trace)")

	var exit string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "x-trace: "); ok {
			exit = v
		}
	}
	md, err := metadata.Parse(exit)
	require.NoError(t, err)
	assert.Equal(t, "0123456789ABCDEF0123456789ABCDEF01234567", md.TaskIDString())

	data, err := os.ReadFile(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestReport_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oboe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reporter:\n  type: pigeon\n"), 0o600))

	_, err := execute(t, "report", "--config", path)
	assert.Error(t, err)
}
