package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/canopy-tools/geocrown/internal/config"
	"github.com/canopy-tools/geocrown/internal/projection"
)

// projectCmd converts per-tile predictions into geo-referenced collections.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project prediction files back into geographic space",
	Long: `Project per-tile prediction files into geo-referenced GeoJSON.

For every prediction file, the companion tile raster supplies the affine
transform and the geo-metadata sidecar the EPSG code. Instance masks are
decoded, traced to pixel polygons, projected, optionally filtered by
confidence and tile-edge contact, and written as one .geojson file per
input.

A batch that fails does not abort the others; skipped or failed files are
reported in the logs and the final statistics, and the command still exits
successfully.

Examples:
  geocrown project --tiles tiles/ --predictions preds/ --out crowns/
  geocrown project --tiles tiles/ --predictions preds/ --out crowns/ --workers 1
  geocrown project --tiles tiles/ --predictions preds/ --out crowns/ --multi-class --overlap-shift 5.0`,
	SilenceUsage: true,
	RunE:         runProjectCommand,
}

// configToProjectionConfig maps the centralized configuration to a
// projection run configuration. CLI flags override config file values
// through viper's precedence system.
func configToProjectionConfig(cfg *config.Config, cmd *cobra.Command) projection.Config {
	p := cfg.Project

	if cmd.Flags().Changed("tiles") {
		p.TilesDir, _ = cmd.Flags().GetString("tiles")
	}
	if cmd.Flags().Changed("predictions") {
		p.PredictionsDir, _ = cmd.Flags().GetString("predictions")
	}
	if cmd.Flags().Changed("out") {
		p.OutputDir, _ = cmd.Flags().GetString("out")
	}
	if cmd.Flags().Changed("multi-class") {
		p.MultiClass, _ = cmd.Flags().GetBool("multi-class")
	}
	if cmd.Flags().Changed("workers") {
		p.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("confidence") {
		p.Confidence, _ = cmd.Flags().GetFloat64("confidence")
	}
	if cmd.Flags().Changed("overlap-shift") {
		p.OverlapShift, _ = cmd.Flags().GetFloat64("overlap-shift")
	}
	if cmd.Flags().Changed("simplify") {
		p.Simplify, _ = cmd.Flags().GetFloat64("simplify")
	}
	if cmd.Flags().Changed("overlay-dir") {
		p.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}

	return projection.Config{
		TilesDir:       p.TilesDir,
		PredictionsDir: p.PredictionsDir,
		OutputDir:      p.OutputDir,
		MultiClass:     p.MultiClass,
		Workers:        p.Workers,
		Confidence:     p.ConfidenceThreshold(),
		OverlapShift:   p.OverlapMargin(),
		Simplify:       p.Simplify,
		OverlayDir:     p.OverlayDir,
	}
}

func runProjectCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	runCfg := configToProjectionConfig(cfg, cmd)

	if runCfg.TilesDir == "" || runCfg.PredictionsDir == "" || runCfg.OutputDir == "" {
		return errors.New("--tiles, --predictions, and --out are required")
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	showProgress := cfg.Output.Progress
	if cmd.Flags().Changed("progress") {
		showProgress, _ = cmd.Flags().GetBool("progress")
	}
	if showProgress && !quiet {
		runCfg.Progress = projection.NewConsoleProgressCallback(cmd.OutOrStdout(), "").
			WithInterval(cfg.Output.ProgressInterval)
	}

	result := projection.Run(runCfg)
	if result.Err != nil {
		return fmt.Errorf("projection run failed to start: %w", result.Err)
	}

	showStats := cfg.Output.Stats
	if cmd.Flags().Changed("stats") {
		showStats, _ = cmd.Flags().GetBool("stats")
	}
	if showStats && !quiet {
		printRunStats(cmd, result)
	}
	return nil
}

func printRunStats(cmd *cobra.Command, result *projection.RunResult) {
	st := result.Stats()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "\nProjection Statistics:\n")
	_, _ = fmt.Fprintf(out, "  Total files: %d\n", st.TotalFiles)
	_, _ = fmt.Fprintf(out, "  Processed: %d\n", st.Processed)
	_, _ = fmt.Fprintf(out, "  Skipped: %d\n", st.Skipped)
	_, _ = fmt.Fprintf(out, "  Failed batches: %d\n", st.FailedBatches)
	_, _ = fmt.Fprintf(out, "  Features: %d\n", st.Features)
	_, _ = fmt.Fprintf(out, "  Workers: %d\n", result.Workers)
	_, _ = fmt.Fprintf(out, "  Duration: %v\n", st.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(out, "  Throughput: %.1f files/sec\n", st.ThroughputPerSec)
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().String("tiles", "", "directory containing tile rasters and geo-metadata sidecars")
	projectCmd.Flags().String("predictions", "", "directory containing per-tile prediction files")
	projectCmd.Flags().String("out", "", "output directory for feature collections (created if absent)")
	projectCmd.Flags().Bool("multi-class", false, "emit the class id on every feature")
	projectCmd.Flags().Int("workers", projection.DefaultWorkers, "parallel workers (1 forces sequential processing)")
	projectCmd.Flags().Float64("confidence", -1, "drop instances scoring below this threshold (negative disables)")
	projectCmd.Flags().Float64("overlap-shift", -1,
		"tile overlap margin in map units; enables edge-crown suppression (negative disables)")
	projectCmd.Flags().Float64("simplify", 0, "Douglas-Peucker tolerance for output rings (0 disables)")
	projectCmd.Flags().String("overlay-dir", "", "also render PNG overlays of the crowns into this directory")
	projectCmd.Flags().Bool("progress", true, "print progress lines")
	projectCmd.Flags().Bool("quiet", false, "suppress progress and statistics output")
	projectCmd.Flags().Bool("stats", false, "print run statistics")
}
