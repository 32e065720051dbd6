package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"clausestat.dev/pkg/clausestat/internal/domain"
	m "clausestat.dev/pkg/clausestat/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "clausestat"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	excludeFlagName        = "exclude"
	extensionsFlagName     = "extensions"
	runParallelFlagName    = "parallel"
	dumpCategoriesFlagName = "dump-categories"
	logFileFlagName        = "log-file"
	verboseFlagName        = "verbose"
	kindsFlagName          = "kinds"

	excludeConfigKey        = "paths.exclude"
	extensionsConfigKey     = "paths.extensions"
	runParallelConfigKey    = "run.parallel"
	dumpCategoriesConfigKey = "run.dump_categories"
	unrollConfigKey         = "contracts.unroll_enumerables"
	requiresMarkerKey       = "contracts.requires"
	ensuresMarkerKey        = "contracts.ensures"
	invariantMarkerKey      = "contracts.invariant"

	defaultRunParallel    = 1
	defaultDumpCategories = false
	defaultUnroll         = true

	envPrefix = "CLAUSESTAT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".clausestat.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// configLoadErr holds a config file read failure until the logger is ready.
var configLoadErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(extensionsConfigKey, domain.DefaultExtensions)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(dumpCategoriesConfigKey, defaultDumpCategories)

	markers := domain.DefaultMarkers()
	viper.SetDefault(unrollConfigKey, defaultUnroll)
	viper.SetDefault(requiresMarkerKey, markers[m.Requires])
	viper.SetDefault(ensuresMarkerKey, markers[m.Ensures])
	viper.SetDefault(invariantMarkerKey, markers[m.Invariant])

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	configLoadErr = loadConfig()
}

// loadConfig reads clausestat.yaml. A missing file is not an error.
func loadConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to read config file: %w", err)
}

// reportConfigLoadError logs a config file failure recorded at startup.
func reportConfigLoadError() {
	if configLoadErr == nil {
		return
	}

	slog.Warn("ignoring config file", "file", viper.ConfigFileUsed(), "error", configLoadErr)
}

// configuredMarkers returns the contract call markers from config.
func configuredMarkers() domain.Markers {
	return domain.Markers{
		m.Requires:  viper.GetString(requiresMarkerKey),
		m.Ensures:   viper.GetString(ensuresMarkerKey),
		m.Invariant: viper.GetString(invariantMarkerKey),
	}
}

func workflowOptions() []domain.Option {
	return []domain.Option{
		domain.WithMarkers(configuredMarkers()),
		domain.WithUnrollEnumerables(viper.GetBool(unrollConfigKey)),
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
