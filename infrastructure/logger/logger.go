package logger

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = os.Stdout
	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(log.DebugLevel)
}

// Options controls the output of the process-wide logger.
type Options struct {
	Format string // "json" (default) or "text"
	Level  string // any logrus level name; defaults to debug
	ToFile bool   // write to logs/<date><env>.log instead of stdout
	Env    string
}

// Configure applies opts to the shared logger. It is called once from main after
// configuration has been loaded; before that the JSON/stdout defaults apply.
func Configure(opts Options) {
	switch strings.ToLower(opts.Format) {
	case "text":
		logger.Formatter = &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}
	default:
		logger.Formatter = &log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		}
	}

	level := log.DebugLevel
	if opts.Level != "" {
		if parsed, err := log.ParseLevel(opts.Level); err == nil {
			level = parsed
		} else {
			logger.WithField("level", opts.Level).Warn("Unknown log level, keeping debug")
		}
	}
	logger.SetLevel(level)

	if !opts.ToFile {
		logger.Out = os.Stdout
		return
	}
	cwd, err := os.Getwd()
	if err != nil {
		logger.WithField("error", err).Warn("Failed get current working directory, logging to stdout")
		return
	}
	logsDir := filepath.Join(cwd, "logs")
	if mkErr := os.MkdirAll(logsDir, 0o755); mkErr != nil {
		logger.Warnf("Failed to create logs directory %s: %v, falling back to stdout", logsDir, mkErr)
		return
	}
	filePath := filepath.Join(logsDir, time.Now().Format("2006-01-02")+opts.Env+".log")
	f, openErr := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if openErr != nil {
		logger.Warnf("Failed to open log file %s: %v, falling back to stdout", filePath, openErr)
		return
	}
	logger.Out = f
}

// GetLogger returns an entry annotated with the caller's function, file and line.
func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	name := ""
	if functionObject != nil {
		name = functionObject.Name()
	}
	return logger.WithFields(log.Fields{
		"function": name,
		"file":     filepath.Base(file),
		"line":     line,
	})
}
