package main

import (
	"context"
	"testing"

	"github.com/donaldgifford/elmfmt/internal/runner"
)

func TestExecuteRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--no-such-flag"}},
		{"diff without check", []string{"--diff"}},
		{"check and in-place", []string{"--check", "--in-place", "Main.elm"}},
		{"bad jobs value", []string{"--jobs", "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := execute(context.Background(), tt.args); got != runner.ExitFailure {
				t.Errorf("exit code: got %d, want %d", got, runner.ExitFailure)
			}
		})
	}
}

func TestExecuteAcceptsCompatibilityFlags(t *testing.T) {
	dir := t.TempDir()
	if got := execute(context.Background(), []string{"--yes", "--elm-version", "0.19", "--print-config", dir}); got != runner.ExitOK {
		t.Errorf("exit code: got %d, want %d", got, runner.ExitOK)
	}
}
