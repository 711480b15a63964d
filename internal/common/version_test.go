package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVersionFile_FillsDefaultsOnly(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "unknown", "abc1234"

	path := filepath.Join(t.TempDir(), ".version")
	content := "# generated\nversion: 1.4.0\nbuild: 2026-01-02T03:04:05Z\ncommit: fffffff\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loadVersionFile(path)

	assert.Equal(t, "1.4.0", Version)
	assert.Equal(t, "2026-01-02T03:04:05Z", Build)
	assert.Equal(t, "abc1234", GitCommit, "ldflags value is kept")
	assert.Equal(t, "1.4.0 (build: 2026-01-02T03:04:05Z, commit: abc1234)", GetFullVersion())
}
