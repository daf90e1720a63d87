// Package testutil provides shared test helpers for golden file testing.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// Update is a flag that, when set, regenerates golden files from current output.
// Usage: go test ./... -update
var Update = flag.Bool("update", false, "update golden files")

// TransformFunc produces the output compared against a golden file.
type TransformFunc func(input string) (string, error)

// Golden names the input and expected files inside each case directory.
type Golden struct {
	Input    string
	Expected string
}

// Run runs a single golden file test in dir. It reads the input file,
// applies fn, and compares against the expected file.
func (g Golden) Run(t *testing.T, dir string, fn TransformFunc) {
	t.Helper()

	inputPath := filepath.Join(dir, g.Input)
	expectedPath := filepath.Join(dir, g.Expected)

	inputBytes, err := os.ReadFile(inputPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", inputPath, err)
	}

	actual, err := fn(string(inputBytes))
	if err != nil {
		t.Fatalf("%s: %v", dir, err)
	}

	if *Update {
		if err := os.WriteFile(expectedPath, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to update golden file %s: %v", expectedPath, err)
		}
		t.Logf("updated golden file: %s", expectedPath)
		return
	}

	expectedBytes, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	expected := string(expectedBytes)
	if actual != expected {
		t.Errorf("output mismatch for %s:\n--- expected\n%s\n--- actual\n%s", dir, expected, actual)
	}
}

// RunDir runs Run for each subdirectory of testdataDir as a subtest.
func (g Golden) RunDir(t *testing.T, testdataDir string, fn TransformFunc) {
	t.Helper()

	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		t.Fatalf("failed to read testdata dir %s: %v", testdataDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		t.Run(entry.Name(), func(t *testing.T) {
			g.Run(t, filepath.Join(testdataDir, entry.Name()), fn)
		})
	}
}
