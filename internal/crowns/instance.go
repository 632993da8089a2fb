// Package crowns converts one tile's detected instances into geo-referenced
// GeoJSON features.
package crowns

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/canopy-tools/geocrown/internal/rle"
)

// ErrMalformedInput is returned when a prediction file cannot be parsed as a
// list of detected instances.
var ErrMalformedInput = errors.New("malformed prediction file")

// Instance is one detected tree crown as written by the detector: an
// encoded mask sized to the tile, a confidence score, and in multi-class
// runs an integer class id.
type Instance struct {
	Segmentation rle.Mask `json:"segmentation"`
	Score        float64  `json:"score"`
	CategoryID   *int     `json:"category_id,omitempty"`
}

// ReadPredictions parses a prediction file into its ordered instance list.
func ReadPredictions(path string) ([]Instance, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path enumerated from the configured predictions directory
	if err != nil {
		return nil, err
	}

	var instances []Instance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}
	return instances, nil
}
