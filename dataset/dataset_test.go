package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetFloat32RoundTrip(t *testing.T) {
	d := &Dataset{
		Name:        "gaussian_euclidean_clusters_dim=4",
		Description: "a small synthetic float32 dataset",
		Float32Rows: [][]float32{
			{1, 2, 3, 4},
			{5, 6, 7, 8},
			{-1.5, 0, 2.25, 9},
		},
	}
	path := filepath.Join(t.TempDir(), "ds.bin")
	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.Name, loaded.Name)
	assert.Equal(t, d.Description, loaded.Description)
	assert.Equal(t, d.Float32Rows, loaded.Float32Rows)
	assert.Equal(t, 4, loaded.Dim())
	assert.Equal(t, 3, loaded.Size())
}

func TestDatasetByteRoundTrip(t *testing.T) {
	d := &Dataset{
		Name:        "hamming_fingerprints",
		Description: "fixed-width byte vectors",
		ByteRows: [][]byte{
			{0x00, 0xFF, 0x10, 0x20},
			{0x01, 0x02, 0x03, 0x04},
		},
	}
	path := filepath.Join(t.TempDir(), "ds.bin")
	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.ByteRows, loaded.ByteRows)
	assert.Equal(t, 4, loaded.Dim())
	assert.Equal(t, 2, loaded.Size())
}

func TestDatasetEmpty(t *testing.T) {
	d := &Dataset{Name: "empty", Description: "no rows"}
	assert.Equal(t, 0, d.Dim())
	assert.Equal(t, 0, d.Size())
}

func TestLoadRejectsTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2}, 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
