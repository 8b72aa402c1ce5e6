package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-batched/batched"
	"github.com/robert-malhotra/go-batched/internal/plan"
)

// writePlan saves the example plan into a temp directory and returns its path.
func writePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, plan.DefaultPlan().Save(path))
	return path
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunCmd(t *testing.T) {
	logger = zap.NewNop()
	path := writePlan(t)
	cmd, out := newTestCmd()

	require.NoError(t, runPlan(cmd, []string{path}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "input: Bundle(shape=[4 6], a=float32[4 6 3], b=float32[4 6 2], c=Nested(shape=[4 6], x=int32[4 6 5]))", lines[0])
	assert.Equal(t, "reshape [2 12]: Bundle(shape=[2 12], a=float32[2 12 3], b=float32[2 12 2], c=Nested(shape=[2 12], x=int32[2 12 5]))", lines[1])
	assert.Equal(t, "flatten: Bundle(shape=[24], a=float32[24 3], b=float32[24 2], c=Nested(shape=[24], x=int32[24 5]))", lines[2])
	assert.Equal(t, "index [0:4]: Bundle(shape=[4], a=float32[4 3], b=float32[4 2], c=Nested(shape=[4], x=int32[4 5]))", lines[3])
}

func TestIndexCmd(t *testing.T) {
	logger = zap.NewNop()
	path := writePlan(t)

	cmd, out := newTestCmd()
	require.NoError(t, runIndex(cmd, []string{path, "..., ::2"}))
	assert.Equal(t, "Bundle(shape=[4 3], a=float32[4 3 3], b=float32[4 3 2], c=Nested(shape=[4 3], x=int32[4 3 5]))\n", out.String())

	cmd, _ = newTestCmd()
	err := runIndex(cmd, []string{path, "0, 0, 0"})
	require.ErrorIs(t, err, batched.ErrIndex)

	cmd, _ = newTestCmd()
	err = runIndex(cmd, []string{path, "0 1"})
	require.ErrorIs(t, err, batched.ErrIndex)
}

func TestIterCmd(t *testing.T) {
	logger = zap.NewNop()
	path := writePlan(t)
	cmd, out := newTestCmd()

	require.NoError(t, runIter(cmd, []string{path}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, "["+string(rune('0'+i))+"] Bundle(shape=[6]"), "line %d: %s", i, line)
	}
}

func TestWalkCmd(t *testing.T) {
	logger = zap.NewNop()
	path := writePlan(t)
	cmd, out := newTestCmd()

	require.NoError(t, runWalk(cmd, []string{path}))

	want := strings.Join([]string{
		"Bundle [4 6]",
		"  a: float32[4 6 3] (contiguous=true)",
		"  b: float32[4 6 2] (contiguous=false)",
		"  c: record Nested [4 6]",
		"  c.x: int32[4 6 5] (contiguous=false)",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestExampleCmd(t *testing.T) {
	logger = zap.NewNop()

	cmd, out := newTestCmd()
	require.NoError(t, runExample(cmd, nil))

	parsed, err := plan.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, plan.DefaultPlan(), parsed)

	path := filepath.Join(t.TempDir(), "nested", "example.yaml")
	cmd, _ = newTestCmd()
	require.NoError(t, runExample(cmd, []string{path}))
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestMissingPlan(t *testing.T) {
	logger = zap.NewNop()
	cmd, _ := newTestCmd()
	err := runPlan(cmd, []string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestRootArgs(t *testing.T) {
	path := writePlan(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"index", path})
	require.Error(t, rootCmd.Execute())

	out.Reset()
	rootCmd.SetArgs([]string{"run", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "flatten: Bundle(shape=[24]")
}
