package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/media-workflow/internal/config"
)

// testEnv is an isolated tracker installation in a temp directory
type testEnv struct {
	dir        string
	configPath string
	dataPath   string
}

// newTestEnv writes a file-backed config and clears every environment override,
// so analysis always falls back and no test reaches a real LLM.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{
		config.EnvConfigPath, config.EnvStorage, config.EnvLogLevel, config.EnvProvider,
		config.EnvGeminiAPIKey, config.EnvAnthropicAPIKey, config.EnvDatabaseURL,
	} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		dataPath:   filepath.Join(dir, "data", "media_items.json"),
	}
	content := "storage:\n  backend: file\n  path: " + env.dataPath + "\nlog_level: error\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// run executes the root command in-process and returns stdout and stderr
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
