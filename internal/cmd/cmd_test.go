package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag of cmd and its subcommands to its default,
// since cobra keeps flag values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestRootParsesFileToOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.log")
	require.NoError(t, os.WriteFile(in, []byte("hello 200\n???\n"), 0644))
	out := filepath.Join(dir, "out.json")

	_, _, err := execute(t, "-p", "%{WORD:verb} %{NUMBER:status}", "-i", in, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "{\"status\":\"200\",\"verb\":\"hello\"}\n{\"parsed\":1,\"failed\":1}\n", string(data))

	failures, err := os.ReadFile(out + ".err")
	require.NoError(t, err)
	assert.Equal(t, "no match against data: \"???\"\n", string(failures))

	// A second run must refuse to touch the existing outputs.
	_, _, err = execute(t, "-p", "%{WORD:verb}", "-i", in, "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestPatternsListsSortedDefinitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom"), []byte("ZED \\d+\nALPHA [a-z]+\n"), 0644))

	stdout, stderr, err := execute(t, "patterns", "--patterns", dir, "-p", "%{ALPHA:a} %{ZED:z}")
	require.NoError(t, err)
	assert.Equal(t, "ALPHA [a-z]+\nZED \\d+\n", stdout)
	assert.Contains(t, stderr, "pattern compiles")
}

func TestPatternsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network"), []byte("client \\d+\\.\\d+\\.\\d+\\.\\d+\nPORT \\d+\n"), 0644))

	stdout, _, err := execute(t, "patterns", "--patterns", dir, "--yaml")
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, map[string]string{
		"client": `\d+\.\d+\.\d+\.\d+`,
		"PORT":   `\d+`,
	}, decoded)
}

func TestServeRejectsBadPattern(t *testing.T) {
	_, _, err := execute(t, "serve", "-p", "%{NOPE}", "--no-patterns", "--addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindCompile))
}
