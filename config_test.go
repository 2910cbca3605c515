package gatekeep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"sheetid": "abc123", "apitoken": "token", "strictheaders": true}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", config.SheetID)
	assert.Equal(t, "token", config.APIToken)
	assert.True(t, config.StrictHeaders)
	assert.True(t, config.Configured())

	// Defaults fill the gaps.
	assert.Equal(t, DEFAULT_RANGE, config.Range)
	assert.Equal(t, "3000", config.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEET_ID", "envsheet")
	t.Setenv("GOOGLE_SHEET_RANGE", "Guests!A:F")
	t.Setenv("GOOGLE_API_TOKEN", "")
	t.Setenv("DISABLE_CHECKIN_TIME_LOGGING", "true")
	t.Setenv("GATEKEEP_STRICT_HEADERS", "1")
	t.Setenv("GATEKEEP_DEBUG", "yes")
	t.Setenv("PORT", "8080")

	config := ConfigFromEnv()

	assert.Equal(t, "envsheet", config.SheetID)
	assert.Equal(t, "Guests!A:F", config.Range)
	assert.False(t, config.Configured())
	assert.True(t, config.DisableTimeLogging)
	assert.True(t, config.StrictHeaders)
	assert.False(t, config.Debug, `only "true" and "1" enable a flag`)
	assert.Equal(t, "8080", config.Port)
}
