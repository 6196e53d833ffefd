package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultReferenceID is the id used by the proximity filter when none is configured.
const DefaultReferenceID = 1001400

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath     string
	ReportDir    string
	ScheduleFile string
	XLSXSheet    string
	ReferenceID  int64
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "."
	}

	reportDir := getEnv("REPORT_DIR", filepath.Join(dataPath, "reports"))
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", reportDir).Msg("Failed to create report directory")
	}

	cfg := &AppConfig{
		DataPath:     dataPath,
		ReportDir:    reportDir,
		ScheduleFile: getEnv("TOLL_SCHEDULE_FILE", ""),
		XLSXSheet:    getEnv("XLSX_SHEET", ""),
		ReferenceID:  getEnvInt64("REFERENCE_ID", DefaultReferenceID),
	}

	return cfg, nil
}

// ResolvePath makes a relative dataset path relative to DataPath.
func (c *AppConfig) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(c.DataPath, path)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}
