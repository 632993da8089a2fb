package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-tools/geocrown/internal/crowns"
	"github.com/canopy-tools/geocrown/internal/geo"
	"github.com/canopy-tools/geocrown/internal/projection"
	"github.com/canopy-tools/geocrown/internal/testutil"
)

func TestProjectCommandFlags(t *testing.T) {
	flags := projectCmd.Flags()
	for _, name := range []string{
		"tiles", "predictions", "out", "multi-class", "workers",
		"confidence", "overlap-shift", "simplify", "overlay-dir",
		"progress", "quiet", "stats",
	} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}

	assert.Equal(t, "32", flags.Lookup("workers").DefValue)
	assert.Equal(t, "-1", flags.Lookup("confidence").DefValue)
}

func TestProjectCommandRequiresDirectories(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"project"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestProjectCommandEndToEnd(t *testing.T) {
	tilesDir, predsDir, outDir := testutil.TempTileSet(t)

	testutil.WriteGeoTIFF(t, filepath.Join(tilesDir, "tile.tif"), 20, 20, geo.Identity(), 0)
	testutil.WriteSidecar(t, filepath.Join(tilesDir, "tile.geo"), 32630)
	testutil.WritePredictions(t, filepath.Join(predsDir, "Prediction_tile.json"),
		[]crowns.Instance{
			{Segmentation: testutil.RectMask(20, 20, 5, 5, 15, 15), Score: 0.9},
			{Segmentation: testutil.RectMask(20, 20, 2, 2, 8, 8), Score: 0.3},
		})

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"project",
		"--tiles", tilesDir,
		"--predictions", predsDir,
		"--out", outDir,
		"--workers", "1",
		"--confidence", "0.5",
		"--stats",
	})
	require.NoError(t, err)

	assert.Contains(t, output, "Projecting 1 files")
	assert.Contains(t, output, "Projection Statistics:")
	assert.Contains(t, output, "Processed: 1")
	assert.Contains(t, output, "Features: 1")

	data, err := os.ReadFile(filepath.Join(outDir, "Prediction_tile.geojson"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "urn:ogc:def:crs:EPSG::32630")
}

func TestProjectCommandQuiet(t *testing.T) {
	tilesDir, predsDir, outDir := testutil.TempTileSet(t)

	output, err := executeCommandAndCaptureOutput(t, rootCmd, []string{
		"project",
		"--tiles", tilesDir,
		"--predictions", predsDir,
		"--out", outDir,
		"--quiet", "--stats",
	})
	require.NoError(t, err)
	assert.NotContains(t, output, "Projection Statistics:")
}

func TestConfigToProjectionConfig(t *testing.T) {
	cfg := GetConfig()
	cfg.Project.TilesDir = "/cfg/tiles"
	cfg.Project.Workers = projection.DefaultWorkers
	cfg.Project.Confidence = 0.25
	cfg.Project.OverlapShift = -1

	// A command without the project flags defined: no flag overrides apply
	// and the config values pass through unchanged.
	runCfg := configToProjectionConfig(cfg, &cobra.Command{})

	assert.Equal(t, "/cfg/tiles", runCfg.TilesDir)
	require.NotNil(t, runCfg.Confidence)
	assert.InDelta(t, 0.25, *runCfg.Confidence, 1e-9)
	assert.Nil(t, runCfg.OverlapShift)
	assert.Equal(t, projection.DefaultWorkers, runCfg.Workers)
}
