package formatter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeTopiary writes an executable shell script standing in for the
// Topiary CLI. Arguments arrive as:
//
//	--configuration CFG format --language elm --query QUERY --skip-idempotence
func fakeTopiary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "topiary")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTopiaryFormat(t *testing.T) {
	bin := fakeTopiary(t, `sed 's/[[:space:]]*$//'`)

	got, err := NewTopiary(bin).Format(context.Background(), "main =   \n    1\n", "(a)", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "main =\n    1\n" {
		t.Errorf("got %q", got)
	}
}

func TestTopiaryReceivesQueryAndIndent(t *testing.T) {
	bin := fakeTopiary(t, `cat "$7"; echo; grep indent "$2"`)

	got, err := NewTopiary(bin).Format(context.Background(), "", "(value_declaration) @leaf", "    ")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "(value_declaration) @leaf") {
		t.Errorf("query not passed through, got %q", got)
	}
	if !strings.Contains(got, `indent = "    "`) {
		t.Errorf("indent not passed through, got %q", got)
	}
}

func TestTopiaryFailure(t *testing.T) {
	bin := fakeTopiary(t, `echo "Parsing error between line 1, column 0 and line 1, column 3" >&2; exit 6`)

	_, err := NewTopiary(bin).Format(context.Background(), "main = = =\n", "(a)", "  ")
	if !errors.Is(err, ErrSourceParse) {
		t.Fatalf("expected ErrSourceParse, got %v", err)
	}
	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *EngineError, got %T", err)
	}
	if !strings.Contains(engErr.Stderr, "Parsing error") {
		t.Errorf("Stderr: got %q", engErr.Stderr)
	}
}

func TestTopiaryMissingCommand(t *testing.T) {
	_, err := NewTopiary(filepath.Join(t.TempDir(), "no-such-topiary")).
		Format(context.Background(), "", "(a)", "  ")
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", err)
	}
}

func TestNewTopiaryCommand(t *testing.T) {
	t.Setenv(EngineEnv, "")
	if got := NewTopiary("").Command; got != DefaultTopiaryCommand {
		t.Errorf("default: got %q, want %q", got, DefaultTopiaryCommand)
	}

	t.Setenv(EngineEnv, "/opt/topiary")
	if got := NewTopiary("").Command; got != "/opt/topiary" {
		t.Errorf("env: got %q", got)
	}
	if got := NewTopiary("/usr/bin/topiary").Command; got != "/usr/bin/topiary" {
		t.Errorf("explicit: got %q", got)
	}
}
