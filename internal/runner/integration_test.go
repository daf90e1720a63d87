package runner_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const (
	formattedElm   = "module Main exposing (main)\n\nmain =\n    1\n"
	unformattedElm = "module Main exposing (main)   \n\nmain =   \n    1\n"
)

// binaryPath builds the elmfmt binary and returns its path.
func binaryPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "elmfmt")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}

	cmd := exec.CommandContext(t.Context(), "go", "build", "-o", bin, "../../cmd/elmfmt")
	cmd.Dir = filepath.Join(projectRoot(t), "internal", "runner")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..")
}

// engineScript writes a shell script standing in for Topiary. The default
// body strips trailing whitespace from each line.
func engineScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine requires a POSIX shell")
	}
	if body == "" {
		body = `sed 's/[[:space:]]*$//'`
	}
	path := filepath.Join(t.TempDir(), "topiary")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// elmfmt returns a command running bin with the fake engine set through
// the environment.
func elmfmt(t *testing.T, bin, engine string, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.CommandContext(t.Context(), bin, args...)
	cmd.Env = append(os.Environ(), "ELMFMT_ENGINE="+engine)
	cmd.Dir = t.TempDir()
	return cmd
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	return exitErr.ExitCode()
}

func TestIntegrationStdinFormat(t *testing.T) {
	bin := binaryPath(t)
	engine := engineScript(t, "")

	cmd := elmfmt(t, bin, engine)
	cmd.Stdin = strings.NewReader(unformattedElm)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != formattedElm {
		t.Errorf("stdin format: got %q, want %q", string(out), formattedElm)
	}
}

func TestIntegrationCheck(t *testing.T) {
	bin := binaryPath(t)
	engine := engineScript(t, "")

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"formatted", formattedElm, 0},
		{"unformatted", unformattedElm, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := elmfmt(t, bin, engine, "--check")
			cmd.Stdin = strings.NewReader(tt.input)
			if got := exitCode(t, cmd.Run()); got != tt.want {
				t.Errorf("exit code: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIntegrationDiff(t *testing.T) {
	bin := binaryPath(t)
	engine := engineScript(t, "")

	cmd := elmfmt(t, bin, engine, "--check", "--diff")
	cmd.Stdin = strings.NewReader(unformattedElm)
	out, err := cmd.Output()
	if got := exitCode(t, err); got != 1 {
		t.Errorf("diff with changes: expected exit 1, got %d", got)
	}

	output := string(out)
	if !strings.Contains(output, "-main =   ") {
		t.Errorf("diff missing old line: %s", output)
	}
	if !strings.Contains(output, "+main =\n") {
		t.Errorf("diff missing new line: %s", output)
	}
}

func TestIntegrationInPlaceDirectory(t *testing.T) {
	bin := binaryPath(t)
	engine := engineScript(t, "")
	dir := t.TempDir()

	paths := []string{
		filepath.Join(dir, "Main.elm"),
		filepath.Join(dir, "src", "Page", "Home.elm"),
	}
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(unformattedElm), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cmd := elmfmt(t, bin, engine, "--in-place", dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("in-place: %v\n%s", err, out)
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != formattedElm {
			t.Errorf("%s after in-place: got %q", p, string(data))
		}
	}
}

func TestIntegrationDirectoryNeedsMode(t *testing.T) {
	bin := binaryPath(t)
	engine := engineScript(t, "")
	dir := t.TempDir()

	cmd := elmfmt(t, bin, engine, dir)
	out, err := cmd.CombinedOutput()
	if got := exitCode(t, err); got != 1 {
		t.Errorf("expected exit 1, got %d", got)
	}
	if !strings.Contains(string(out), "--in-place or --check") {
		t.Errorf("expected usage error, got %q", string(out))
	}
}

func TestIntegrationVersion(t *testing.T) {
	bin := binaryPath(t)

	cmd := exec.CommandContext(t.Context(), bin, "--version")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(string(out), "elmfmt version ") {
		t.Errorf("version: got %q", string(out))
	}
}

func TestIntegrationMissingFile(t *testing.T) {
	bin := binaryPath(t)
	engine := engineScript(t, "")

	cmd := elmfmt(t, bin, engine, "/nonexistent/Main.elm")
	if got := exitCode(t, cmd.Run()); got != 1 {
		t.Errorf("missing file: expected exit 1, got %d", got)
	}
}

func TestIntegrationMissingEngine(t *testing.T) {
	bin := binaryPath(t)

	cmd := elmfmt(t, bin, filepath.Join(t.TempDir(), "no-such-engine"))
	cmd.Stdin = strings.NewReader(formattedElm)
	out, err := cmd.CombinedOutput()
	if got := exitCode(t, err); got != 1 {
		t.Errorf("missing engine: expected exit 1, got %d", got)
	}
	if !strings.Contains(string(out), "<stdin>") {
		t.Errorf("error should name the input, got %q", string(out))
	}
}

func TestIntegrationExplicitConfig(t *testing.T) {
	bin := binaryPath(t)
	// Print the indent unit the engine was configured with.
	engine := engineScript(t, `grep indent "$2"`)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("indentation: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := elmfmt(t, bin, engine, "--config", configPath, "--skip-idempotence")
	cmd.Stdin = strings.NewReader(formattedElm)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(string(out), `indent = "    "`) {
		t.Errorf("config indentation not applied: got %q", string(out))
	}
}

func TestIntegrationPrintConfig(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "elmfmt.yaml"), []byte("tuple_style: compact\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.CommandContext(t.Context(), bin, "--print-config", dir)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("print-config: %v", err)
	}
	if !strings.Contains(string(out), "compact") {
		t.Errorf("print-config: got %q", string(out))
	}
}
