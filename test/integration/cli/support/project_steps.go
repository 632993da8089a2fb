package support

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/canopy-tools/geocrown/internal/crowns"
	"github.com/canopy-tools/geocrown/internal/geo"
	"github.com/canopy-tools/geocrown/internal/projection"
	"github.com/canopy-tools/geocrown/internal/testutil"
)

// RegisterProjectSteps registers the projection pipeline step definitions.
func (testCtx *TestContext) RegisterProjectSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a tile "([^"]*)" of size (\d+)x(\d+) with the identity transform and EPSG (\d+)$`, testCtx.aTile)
	sc.Step(`^a tile "([^"]*)" without a geo-metadata sidecar or CRS$`, testCtx.aTileWithoutCRS)
	sc.Step(`^a prediction file for "([^"]*)" with a (\d+)x(\d+) square crown scoring ([0-9.]+)$`,
		testCtx.aPredictionFileWithSquare)
	sc.Step(`^a prediction file for "([^"]*)" with crowns scoring ([0-9.]+) and ([0-9.]+)$`,
		testCtx.aPredictionFileWithTwoScores)
	sc.Step(`^a malformed prediction file for "([^"]*)"$`, testCtx.aMalformedPredictionFile)
	sc.Step(`^a prediction file for "([^"]*)" without a companion tile$`, testCtx.aPredictionFileWithoutTile)
	sc.Step(`^the confidence threshold is ([0-9.]+)$`, testCtx.theConfidenceThresholdIs)
	sc.Step(`^the tile overlap shift is ([0-9.]+)$`, testCtx.theOverlapShiftIs)
	sc.Step(`^multi-class output is enabled$`, testCtx.multiClassIsEnabled)
	sc.Step(`^I project the predictions with (\d+) workers?$`, testCtx.iProjectWithWorkers)
	sc.Step(`^(\d+) feature collections? (?:is|are) written$`, testCtx.collectionsAreWritten)
	sc.Step(`^the collection for "([^"]*)" contains (\d+) features?$`, testCtx.collectionContainsFeatures)
	sc.Step(`^the collection for "([^"]*)" declares CRS "([^"]*)"$`, testCtx.collectionDeclaresCRS)
	sc.Step(`^every feature in "([^"]*)" has a category property$`, testCtx.everyFeatureHasCategory)
	sc.Step(`^the run reports (\d+) processed and (\d+) skipped files$`, testCtx.runReportsCounts)
	sc.Step(`^the run completes without a setup error$`, testCtx.runCompletesWithoutError)
}

func (testCtx *TestContext) aTile(stem string, width, height, epsg int) error {
	tilePath := filepath.Join(testCtx.TilesDir, stem+projection.RasterExt)
	if err := os.WriteFile(tilePath, testutil.EncodeGeoTIFF(width, height, geo.Identity(), 0), 0o600); err != nil {
		return fmt.Errorf("writing tile raster: %w", err)
	}

	sidecar, err := json.Marshal(map[string]int{"epsg": epsg})
	if err != nil {
		return err
	}
	sidecarPath := filepath.Join(testCtx.TilesDir, stem+projection.GeoMetadataExt)
	return os.WriteFile(sidecarPath, sidecar, 0o600)
}

func (testCtx *TestContext) aTileWithoutCRS(stem string) error {
	tilePath := filepath.Join(testCtx.TilesDir, stem+projection.RasterExt)
	return os.WriteFile(tilePath, testutil.EncodeGeoTIFF(20, 20, geo.Identity(), 0), 0o600)
}

func (testCtx *TestContext) writePredictions(stem string, instances []crowns.Instance) error {
	data, err := json.Marshal(instances)
	if err != nil {
		return err
	}
	path := filepath.Join(testCtx.PredictionsDir,
		projection.PredictionPrefix+stem+projection.PredictionExt)
	return os.WriteFile(path, data, 0o600)
}

func (testCtx *TestContext) aPredictionFileWithSquare(stem string, w, h int, scoreStr string) error {
	score, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return err
	}
	return testCtx.writePredictions(stem, []crowns.Instance{
		{Segmentation: testutil.RectMask(20, 20, 5, 5, 5+w, 5+h), Score: score},
	})
}

func (testCtx *TestContext) aPredictionFileWithTwoScores(stem, s1, s2 string) error {
	score1, err := strconv.ParseFloat(s1, 64)
	if err != nil {
		return err
	}
	score2, err := strconv.ParseFloat(s2, 64)
	if err != nil {
		return err
	}
	cat1, cat2 := 1, 2
	return testCtx.writePredictions(stem, []crowns.Instance{
		{Segmentation: testutil.RectMask(20, 20, 5, 5, 15, 15), Score: score1, CategoryID: &cat1},
		{Segmentation: testutil.RectMask(20, 20, 8, 8, 18, 18), Score: score2, CategoryID: &cat2},
	})
}

func (testCtx *TestContext) aMalformedPredictionFile(stem string) error {
	path := filepath.Join(testCtx.PredictionsDir,
		projection.PredictionPrefix+stem+projection.PredictionExt)
	return os.WriteFile(path, []byte("{this is not json"), 0o600)
}

func (testCtx *TestContext) aPredictionFileWithoutTile(stem string) error {
	return testCtx.writePredictions(stem, []crowns.Instance{
		{Segmentation: testutil.RectMask(20, 20, 5, 5, 15, 15), Score: 0.9},
	})
}

func (testCtx *TestContext) theConfidenceThresholdIs(value string) error {
	threshold, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	testCtx.Confidence = &threshold
	return nil
}

func (testCtx *TestContext) theOverlapShiftIs(value string) error {
	shift, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	testCtx.OverlapShift = &shift
	return nil
}

func (testCtx *TestContext) multiClassIsEnabled() error {
	testCtx.MultiClass = true
	return nil
}

func (testCtx *TestContext) iProjectWithWorkers(workers int) error {
	testCtx.Workers = workers
	testCtx.LastResult = projection.Run(projection.Config{
		TilesDir:       testCtx.TilesDir,
		PredictionsDir: testCtx.PredictionsDir,
		OutputDir:      testCtx.OutputDir,
		MultiClass:     testCtx.MultiClass,
		Workers:        workers,
		Confidence:     testCtx.Confidence,
		OverlapShift:   testCtx.OverlapShift,
	})
	return nil
}

func (testCtx *TestContext) collectionsAreWritten(expected int) error {
	entries, err := os.ReadDir(testCtx.OutputDir)
	if err != nil {
		return fmt.Errorf("reading output directory: %w", err)
	}
	count := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == projection.OutputExt {
			count++
		}
	}
	if count != expected {
		return fmt.Errorf("expected %d feature collections, found %d", expected, count)
	}
	return nil
}

// readCollection parses the written collection for a tile stem.
func (testCtx *TestContext) readCollection(stem string) (map[string]interface{}, error) {
	path := filepath.Join(testCtx.OutputDir,
		projection.PredictionPrefix+stem+projection.OutputExt)
	data, err := os.ReadFile(path) //nolint:gosec // G304: test output path under the scenario temp dir
	if err != nil {
		return nil, fmt.Errorf("reading collection for %s: %w", stem, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing collection for %s: %w", stem, err)
	}
	return doc, nil
}

func (testCtx *TestContext) collectionContainsFeatures(stem string, expected int) error {
	doc, err := testCtx.readCollection(stem)
	if err != nil {
		return err
	}
	features, ok := doc["features"].([]interface{})
	if !ok {
		return fmt.Errorf("collection for %s has no features array", stem)
	}
	if len(features) != expected {
		return fmt.Errorf("expected %d features in %s, got %d", expected, stem, len(features))
	}
	return nil
}

func (testCtx *TestContext) collectionDeclaresCRS(stem, want string) error {
	doc, err := testCtx.readCollection(stem)
	if err != nil {
		return err
	}
	crs, ok := doc["crs"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("collection for %s has no crs member", stem)
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("collection for %s has no crs properties", stem)
	}
	if props["name"] != want {
		return fmt.Errorf("expected CRS %q, got %v", want, props["name"])
	}
	return nil
}

func (testCtx *TestContext) everyFeatureHasCategory(stem string) error {
	doc, err := testCtx.readCollection(stem)
	if err != nil {
		return err
	}
	features, _ := doc["features"].([]interface{})
	if len(features) == 0 {
		return fmt.Errorf("collection for %s has no features", stem)
	}
	for i, f := range features {
		feature, _ := f.(map[string]interface{})
		props, _ := feature["properties"].(map[string]interface{})
		if _, ok := props["category"]; !ok {
			return fmt.Errorf("feature %d in %s has no category property", i, stem)
		}
	}
	return nil
}

func (testCtx *TestContext) runReportsCounts(processed, skipped int) error {
	if testCtx.LastResult == nil {
		return fmt.Errorf("no projection run recorded")
	}
	st := testCtx.LastResult.Stats()
	if st.Processed != processed || st.Skipped != skipped {
		return fmt.Errorf("expected %d processed / %d skipped, got %d / %d",
			processed, skipped, st.Processed, st.Skipped)
	}
	return nil
}

func (testCtx *TestContext) runCompletesWithoutError() error {
	if testCtx.LastResult == nil {
		return fmt.Errorf("no projection run recorded")
	}
	if testCtx.LastResult.Err != nil {
		return fmt.Errorf("run reported setup error: %w", testCtx.LastResult.Err)
	}
	return nil
}
