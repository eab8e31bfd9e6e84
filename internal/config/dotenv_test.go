package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# local MinIO
MINIO_ACCESS_KEY=dotenv-key
export MINIO_REGION="eu-central-1"
MINIO_SECRET_KEY='quoted secret'

not-a-pair
LAKEBOOT_PRESET=from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LAKEBOOT_PRESET", "from-shell")
	for _, k := range []string{"MINIO_ACCESS_KEY", "MINIO_REGION", "MINIO_SECRET_KEY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	applied, err := LoadDotEnv(path)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"MINIO_ACCESS_KEY", "MINIO_REGION", "MINIO_SECRET_KEY"}, applied)
	assert.Equal(t, "dotenv-key", os.Getenv("MINIO_ACCESS_KEY"))
	assert.Equal(t, "eu-central-1", os.Getenv("MINIO_REGION"))
	assert.Equal(t, "quoted secret", os.Getenv("MINIO_SECRET_KEY"))
	assert.Equal(t, "from-shell", os.Getenv("LAKEBOOT_PRESET"), "existing variables win")
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	applied, err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Empty(t, applied)
}
