package projection

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionRoundRobin(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e", "f", "g"}
	batches := partition(files, 3)

	require.Len(t, batches, 3)
	assert.Equal(t, []string{"a", "d", "g"}, batches[0])
	assert.Equal(t, []string{"b", "e"}, batches[1])
	assert.Equal(t, []string{"c", "f"}, batches[2])
}

func TestPartitionRecoversInput(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 32} {
		for _, count := range []int{0, 1, 3, 7, 20, 33} {
			files := make([]string, count)
			for i := range files {
				files[i] = fmt.Sprintf("file_%03d.json", i)
			}

			batches := partition(files, n)
			require.Len(t, batches, n)

			// Every file lands in exactly one batch; reading batches by
			// index then position recovers the original set.
			seen := make(map[string]int)
			for _, b := range batches {
				for _, f := range b {
					seen[f]++
				}
			}
			assert.Len(t, seen, count, "workers=%d files=%d", n, count)
			for _, c := range seen {
				assert.Equal(t, 1, c)
			}
		}
	}
}

func TestPartitionMoreWorkersThanFiles(t *testing.T) {
	batches := partition([]string{"a", "b"}, 5)
	require.Len(t, batches, 5)
	assert.Equal(t, []string{"a"}, batches[0])
	assert.Equal(t, []string{"b"}, batches[1])
	for _, b := range batches[2:] {
		assert.Empty(t, b)
	}
}

func TestListPredictionFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Prediction_a.json", "Prediction_b.json", "notes.txt", "tile.tif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o600))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.json"), 0o750))

	files, err := listPredictionFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "Prediction_a.json"), files[0])
	assert.Equal(t, filepath.Join(dir, "Prediction_b.json"), files[1])
}

func TestRunEmptyPredictionsDirIsNoOp(t *testing.T) {
	root := t.TempDir()
	predsDir := filepath.Join(root, "preds")
	outDir := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(predsDir, 0o750))

	res := Run(Config{
		TilesDir:       root,
		PredictionsDir: predsDir,
		OutputDir:      outDir,
		Workers:        4,
	})

	require.NotNil(t, res)
	assert.NoError(t, res.Err)
	assert.Zero(t, res.TotalFiles)
	assert.Empty(t, res.Batches)

	// The output directory is still created.
	_, err := os.Stat(outDir)
	assert.NoError(t, err)
}

func TestRunMissingPredictionsDir(t *testing.T) {
	root := t.TempDir()

	res := Run(Config{
		TilesDir:       root,
		PredictionsDir: filepath.Join(root, "absent"),
		OutputDir:      filepath.Join(root, "out"),
		Workers:        2,
	})

	// Enumeration failure is recorded, never raised.
	require.NotNil(t, res)
	assert.Error(t, res.Err)
}

func TestRunClampsWorkers(t *testing.T) {
	root := t.TempDir()
	predsDir := filepath.Join(root, "preds")
	require.NoError(t, os.MkdirAll(predsDir, 0o750))

	res := Run(Config{
		TilesDir:       root,
		PredictionsDir: predsDir,
		OutputDir:      filepath.Join(root, "out"),
		Workers:        0,
	})
	assert.Equal(t, 1, res.Workers)
}
