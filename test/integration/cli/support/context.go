// Package support holds the shared state and step definitions for the
// projection integration tests.
package support

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/canopy-tools/geocrown/internal/projection"
)

// TestContext holds the state for integration tests. Each scenario gets a
// fresh context with its own tile, prediction, and output directories.
type TestContext struct {
	// Test environment
	TempDir        string
	TilesDir       string
	PredictionsDir string
	OutputDir      string
	OverlayDir     string

	// Run configuration built up by Given steps
	Workers      int
	MultiClass   bool
	Confidence   *float64
	OverlapShift *float64

	// Run outcome
	LastResult *projection.RunResult
}

// NewTestContext creates a new test context with a fresh directory layout.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "geocrown-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	ctx := &TestContext{
		TempDir:        tempDir,
		TilesDir:       filepath.Join(tempDir, "tiles"),
		PredictionsDir: filepath.Join(tempDir, "predictions"),
		OutputDir:      filepath.Join(tempDir, "output"),
		OverlayDir:     filepath.Join(tempDir, "overlays"),
		Workers:        1,
	}

	for _, dir := range []string{ctx.TilesDir, ctx.PredictionsDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return ctx, nil
}

// Cleanup removes all temporary files created during the scenario.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.TempDir == "" {
		return nil
	}
	return os.RemoveAll(testCtx.TempDir)
}
