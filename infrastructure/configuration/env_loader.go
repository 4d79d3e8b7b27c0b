package configuration

import (
	"os"

	"solar-pipeline/infrastructure/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile loads KEY=VALUE files such as config.env and .env. Missing
// files are skipped and variables already present in the environment win.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			logger.GetLogger().WithField("path", p).Debug("Env file not found")
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.GetLogger().WithField("path", p).WithField("error", err).Warn("Failed to load env file")
			continue
		}
		logger.GetLogger().WithField("path", p).Info("Loaded env file")
	}
}
