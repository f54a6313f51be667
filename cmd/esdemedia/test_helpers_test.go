package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"esdemedia/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	inputDir   string
	outputDir  string
	logDir     string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("ESDEMEDIA_INPUT_DIR", "")
	t.Setenv("ESDEMEDIA_OUTPUT_DIR", "")
	testsupport.IsolatePath(t)

	env := &cliTestEnv{
		baseDir:   base,
		inputDir:  filepath.Join(base, "roms"),
		outputDir: filepath.Join(base, "out"),
		logDir:    filepath.Join(base, "logs"),
	}
	if err := os.MkdirAll(env.inputDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}
	env.configPath = filepath.Join(base, "esdemedia.toml")
	content := fmt.Sprintf("[paths]\ninput_dir = %q\noutput_dir = %q\nlog_dir = %q\n\n[logging]\nformat = \"json\"\nlevel = \"warn\"\n",
		env.inputDir, env.outputDir, env.logDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
