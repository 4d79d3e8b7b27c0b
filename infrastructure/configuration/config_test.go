package configuration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("both credentials present", func(t *testing.T) {
		c := &Config{YouTube: YouTube{APIKey: "yt"}, Kaggle: Kaggle{APIToken: "kg"}}
		require.NoError(t, c.Validate())
	})

	t.Run("missing credentials are reported together", func(t *testing.T) {
		c := &Config{YouTube: YouTube{APIKey: "  "}}
		err := c.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingConfig))

		var missing *MissingConfigError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, []string{"YOUTUBE_API_KEY", "KAGGLE_API_TOKEN"}, missing.Keys)
	})

	t.Run("missing kaggle token only", func(t *testing.T) {
		c := &Config{YouTube: YouTube{APIKey: "yt"}}
		var missing *MissingConfigError
		require.True(t, errors.As(c.Validate(), &missing))
		assert.Equal(t, []string{"KAGGLE_API_TOKEN"}, missing.Keys)
	})
}

func TestLoad_DefaultsAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENV", "")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("KAGGLE_API_TOKEN", "kg-token")
	t.Setenv("DATA_DIR", dir)

	c, err := Load(viper.New())
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "yt-key", c.YouTube.APIKey)
	assert.Equal(t, "kg-token", c.Kaggle.APIToken)
	assert.Equal(t, filepath.Join(dir, "data", "raw"), c.Paths.RawDir)
	assert.Equal(t, filepath.Join(dir, "data", "processed"), c.Paths.ProcessedDir)
	assert.Equal(t, filepath.Join(dir, "data", "raw", "yt_comments"), c.YouTubeCommentsDir())

	assert.Equal(t, []string{"Solar"}, c.Harvest.Keywords)
	assert.Len(t, c.Harvest.Channels, 10)
	assert.Equal(t, uint64(100), c.Harvest.MinViews)
	assert.Equal(t, uint64(1), c.Harvest.MinComments)
	assert.Equal(t, 1000, c.Harvest.VideosPerChannel)
	assert.Equal(t, 2*time.Second, c.Harvest.Retry.BaseDelay)
	assert.Equal(t, 3, c.Harvest.Retry.MaxAttempts)
	assert.Equal(t, "Pakistan Solar", c.Harvest.Global.Query)
	assert.Equal(t, []string{"Pakistan", "Solar"}, c.Harvest.Global.TitleKeywords)
	assert.Equal(t, 365, c.Harvest.Global.TimeframeDays)
	assert.Len(t, c.Stocks.Tickers, 10)
	assert.NotEmpty(t, c.Stocks.End)
	assert.Len(t, c.Kaggle.Datasets, 2)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENV", "test")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("KAGGLE_API_TOKEN", "")

	body := `{
  "harvest": {
    "keywords": ["Solar", "Net Metering"],
    "minViews": 250,
    "retry": {"baseDelay": "1s", "maxAttempts": 2}
  },
  "mongo": {"uri": "mongodb://localhost:27017"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config-test.json"), []byte(body), 0o644))

	c, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"Solar", "Net Metering"}, c.Harvest.Keywords)
	assert.Equal(t, uint64(250), c.Harvest.MinViews)
	assert.Equal(t, uint64(1), c.Harvest.MinComments)
	assert.Equal(t, time.Second, c.Harvest.Retry.BaseDelay)
	assert.Equal(t, 2, c.Harvest.Retry.MaxAttempts)
	assert.Equal(t, "mongodb://localhost:27017", c.Mongo.URI)
	assert.Equal(t, "raw_youtube_comments", c.Mongo.Collection)

	err = c.Validate()
	assert.True(t, errors.Is(err, ErrMissingConfig))
}

func TestLoad_RejectsUnitlessBaseDelay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENV", "")
	t.Setenv("DATA_DIR", dir)

	body := `{"harvest": {"retry": {"baseDelay": 2}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644))

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseDelay")
	assert.Contains(t, err.Error(), `"2s"`)
}

func TestEnsureDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := Paths{BaseDir: "work"}
	resolvePaths(&p)
	c := &Config{Paths: p}

	require.NoError(t, c.EnsureDirectories(fs))
	for _, dir := range []string{"raw", "processed", "cleaned"} {
		ok, err := afero.DirExists(fs, filepath.Join("work", "data", dir))
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
	assert.Equal(t, filepath.Join("work", "data", "raw", "yt_comments"), c.YouTubeCommentsDir())
}
