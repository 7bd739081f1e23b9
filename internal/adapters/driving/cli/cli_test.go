package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCommand runs rootCmd with args and returns its output. Flag state
// left over from earlier tests is cleared first.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	configPath = ""
	verbose = false
	configFlags.check = false
	configFlags.write = ""
	for _, name := range []string{"config", "verbose"} {
		rootCmd.PersistentFlags().Lookup(name).Changed = false
	}
	for _, name := range []string{"input", "output-dir", "provider", "model", "batch-size", "seed", "algorithms", "sqlite"} {
		runCmd.Flags().Lookup(name).Changed = false
	}
	for _, name := range []string{"check", "write"} {
		configCmd.Flags().Lookup(name).Changed = false
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papermap.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
