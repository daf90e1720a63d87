package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultTopiaryCommand is the engine executable used when none is set.
const DefaultTopiaryCommand = "topiary"

// EngineEnv overrides the engine executable.
const EngineEnv = "ELMFMT_ENGINE"

// Topiary runs the Topiary CLI as the formatting engine. The rule document
// and the indent unit are passed through files in a temporary directory.
type Topiary struct {
	// Command is the executable to run. Defaults to DefaultTopiaryCommand.
	Command string
	// Language is the Topiary language name. Defaults to "elm".
	Language string
}

// NewTopiary returns a Topiary engine using command, falling back to
// $ELMFMT_ENGINE and then DefaultTopiaryCommand.
func NewTopiary(command string) *Topiary {
	if command == "" {
		command = os.Getenv(EngineEnv)
	}
	if command == "" {
		command = DefaultTopiaryCommand
	}
	return &Topiary{Command: command, Language: "elm"}
}

// Format implements Engine. Idempotence is checked by Formatter, so the
// engine is always asked to skip its own check.
func (t *Topiary) Format(ctx context.Context, source, rules, indent string) (string, error) {
	dir, err := os.MkdirTemp("", "elmfmt-")
	if err != nil {
		return "", &EngineError{Kind: ErrEngine, Err: err}
	}
	defer os.RemoveAll(dir)

	lang := t.Language
	if lang == "" {
		lang = "elm"
	}

	queryPath := filepath.Join(dir, lang+".scm")
	if err := os.WriteFile(queryPath, []byte(rules), 0o600); err != nil {
		return "", &EngineError{Kind: ErrEngine, Err: fmt.Errorf("writing query: %w", err)}
	}

	configPath := filepath.Join(dir, "languages.ncl")
	if err := os.WriteFile(configPath, []byte(nickelConfig(lang, indent)), 0o600); err != nil {
		return "", &EngineError{Kind: ErrEngine, Err: fmt.Errorf("writing configuration: %w", err)}
	}

	command := t.Command
	if command == "" {
		command = DefaultTopiaryCommand
	}

	cmd := exec.CommandContext(ctx, command,
		"--configuration", configPath,
		"format",
		"--language", lang,
		"--query", queryPath,
		"--skip-idempotence",
	)
	cmd.Stdin = strings.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		return "", &EngineError{Kind: classify(diag), Stderr: diag, Err: err}
	}

	return stdout.String(), nil
}

// nickelConfig returns a Topiary configuration setting the indent unit for
// lang. Topiary merges it over its built-in configuration.
func nickelConfig(lang, indent string) string {
	return fmt.Sprintf("{\n  languages = {\n    %s = {\n      extensions = [%q],\n      indent = %q,\n    },\n  },\n}\n",
		lang, lang, indent)
}
