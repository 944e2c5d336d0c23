package reportGenerator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirs(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "out")

	dirs, err := EnsureDirs(base)
	require.NoError(t, err)

	assert.Equal(t, base, dirs.Base)
	for _, dir := range []string{dirs.CSV, dirs.JSON, dirs.Merged, dirs.XLSX} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	assert.Equal(t, filepath.Join(base, "JSONs", "merged"), dirs.Merged)
}

func TestEnsureDirs_Idempotent(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "out")

	_, err := EnsureDirs(base)
	require.NoError(t, err)

	_, err = EnsureDirs(base)
	require.NoError(t, err)
}
