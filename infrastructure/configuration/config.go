package configuration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"solar-pipeline/infrastructure/logger"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	Env     string  `json:"env" mapstructure:"env"`
	Paths   Paths   `json:"paths" mapstructure:"paths"`
	YouTube YouTube `json:"youtube" mapstructure:"youtube"`
	Kaggle  Kaggle  `json:"kaggle" mapstructure:"kaggle"`
	PBS     PBS     `json:"pbs" mapstructure:"pbs"`
	Stocks  Stocks  `json:"stocks" mapstructure:"stocks"`
	Harvest Harvest `json:"harvest" mapstructure:"harvest"`
	Mongo   Mongo   `json:"mongo" mapstructure:"mongo"`
	Logger  Logger  `json:"logger" mapstructure:"logger"`
}

type Paths struct {
	BaseDir      string `json:"baseDir" mapstructure:"baseDir"`
	RawDir       string `json:"rawDir" mapstructure:"rawDir"`
	ProcessedDir string `json:"processedDir" mapstructure:"processedDir"`
	CleanedDir   string `json:"cleanedDir" mapstructure:"cleanedDir"`
}

// YouTube holds the Data API credentials. APIKey alone gives read-only access,
// which is all the harvester needs; the OAuth fields enable token mode.
type YouTube struct {
	APIKey            string  `json:"apiKey" mapstructure:"apiKey"`
	ClientID          string  `json:"clientId" mapstructure:"clientId"`
	ClientSecret      string  `json:"clientSecret" mapstructure:"clientSecret"`
	AccessToken       string  `json:"accessToken" mapstructure:"accessToken"`
	RefreshToken      string  `json:"refreshToken" mapstructure:"refreshToken"`
	RequestsPerSecond float64 `json:"requestsPerSecond" mapstructure:"requestsPerSecond"`
}

type Kaggle struct {
	APIToken string            `json:"apiToken" mapstructure:"apiToken"`
	BaseURL  string            `json:"baseUrl" mapstructure:"baseUrl"`
	Datasets map[string]string `json:"datasets" mapstructure:"datasets"`
}

type PBS struct {
	PDFURL   string `json:"pdfUrl" mapstructure:"pdfUrl"`
	FileName string `json:"fileName" mapstructure:"fileName"`
}

type Stocks struct {
	Tickers  []string `json:"tickers" mapstructure:"tickers"`
	Start    string   `json:"start" mapstructure:"start"`
	End      string   `json:"end" mapstructure:"end"`
	Interval string   `json:"interval" mapstructure:"interval"`
	BaseURL  string   `json:"baseUrl" mapstructure:"baseUrl"`
}

type Harvest struct {
	Channels         []string `json:"channels" mapstructure:"channels"`
	Keywords         []string `json:"keywords" mapstructure:"keywords"`
	MinViews         uint64   `json:"minViews" mapstructure:"minViews"`
	MinComments      uint64   `json:"minComments" mapstructure:"minComments"`
	VideosPerChannel int      `json:"videosPerChannel" mapstructure:"videosPerChannel"`
	Retry            Retry    `json:"retry" mapstructure:"retry"`
	Global           Global   `json:"global" mapstructure:"global"`
}

type Retry struct {
	BaseDelay   time.Duration `json:"baseDelay" mapstructure:"baseDelay"`
	Multiplier  float64       `json:"multiplier" mapstructure:"multiplier"`
	MaxAttempts int           `json:"maxAttempts" mapstructure:"maxAttempts"`
}

type Global struct {
	Query         string   `json:"query" mapstructure:"query"`
	TitleKeywords []string `json:"titleKeywords" mapstructure:"titleKeywords"`
	TimeframeDays int      `json:"timeframeDays" mapstructure:"timeframeDays"`
	MaxVideos     int      `json:"maxVideos" mapstructure:"maxVideos"`
}

type Mongo struct {
	URI        string `json:"uri" mapstructure:"uri"`
	Database   string `json:"database" mapstructure:"database"`
	Collection string `json:"collection" mapstructure:"collection"`
}

type Logger struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	ToFile bool   `json:"toFile" mapstructure:"toFile"`
}

// ErrMissingConfig is matched by every *MissingConfigError.
var ErrMissingConfig = errors.New("missing mandatory configuration")

// MissingConfigError lists the mandatory keys that were empty after loading.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingConfig, strings.Join(e.Keys, ", "))
}

func (e *MissingConfigError) Is(target error) bool { return target == ErrMissingConfig }

// Validate checks the credentials the process cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if strings.TrimSpace(c.Kaggle.APIToken) == "" {
		missing = append(missing, "KAGGLE_API_TOKEN")
	}
	if len(missing) > 0 {
		return &MissingConfigError{Keys: missing}
	}
	return nil
}

// YouTubeCommentsDir is where both harvest documents are written.
func (c *Config) YouTubeCommentsDir() string {
	return filepath.Join(c.Paths.RawDir, "yt_comments")
}

// EnsureDirectories creates the raw, processed and cleaned data directories.
func (c *Config) EnsureDirectories(fs afero.Fs) error {
	for _, dir := range []string{c.Paths.RawDir, c.Paths.ProcessedDir, c.Paths.CleanedDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config[-ENV].json (optional), applies defaults and environment
// overrides, and returns the result. It does not validate.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	bindEnv(v)

	name := configName(v.GetString("env"))
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", name, err)
		}
		logger.GetLogger().WithField("config", name).Warn("Config file not found, using defaults and environment")
	} else {
		logger.GetLogger().WithField("config", v.ConfigFileUsed()).Info("Config set up successfully")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// a bare JSON number decodes as nanoseconds
	if d := c.Harvest.Retry.BaseDelay; d > 0 && d < time.Millisecond {
		return nil, fmt.Errorf("harvest.retry.baseDelay %v is below 1ms, use a duration string such as \"2s\"", d)
	}
	resolvePaths(&c.Paths)
	if c.Stocks.End == "" {
		c.Stocks.End = time.Now().Format("2006-01-02")
	}
	return &c, nil
}

func configName(env string) string {
	name := "config"
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"env":                  "ENV",
		"youtube.apiKey":       "YOUTUBE_API_KEY",
		"youtube.clientId":     "YOUTUBE_CLIENT_ID",
		"youtube.clientSecret": "YOUTUBE_CLIENT_SECRET",
		"youtube.accessToken":  "YOUTUBE_ACCESS_TOKEN",
		"youtube.refreshToken": "YOUTUBE_REFRESH_TOKEN",
		"kaggle.apiToken":      "KAGGLE_API_TOKEN",
		"mongo.uri":            "MONGO_URI",
		"logger.format":        "LOG_FORMAT",
		"logger.level":         "LOG_LEVEL",
		"logger.toFile":        "LOG_TO_FILE",
		"paths.baseDir":        "DATA_DIR",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// resolvePaths fills the data directories relative to BaseDir when they are not set explicitly.
func resolvePaths(p *Paths) {
	if p.BaseDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			p.BaseDir = cwd
		} else {
			p.BaseDir = "."
		}
	}
	dataDir := filepath.Join(p.BaseDir, "data")
	if p.RawDir == "" {
		p.RawDir = filepath.Join(dataDir, "raw")
	}
	if p.ProcessedDir == "" {
		p.ProcessedDir = filepath.Join(dataDir, "processed")
	}
	if p.CleanedDir == "" {
		p.CleanedDir = filepath.Join(dataDir, "cleaned")
	}
}
