package classifier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const defaultConfigFile = "config.toml"

// LogConfig controls the log level and, in prod builds, the log directory.
type LogConfig struct {
	Level string `toml:"level,omitempty"`
	Dir   string `toml:"dir,omitempty"`
}

// Config aggregates runtime settings persisted to config.toml.
type Config struct {
	OrtLibrary    string      `toml:"ort_library,omitempty"`
	ClassesFile   string      `toml:"classes_file,omitempty"`
	HistoryDB     string      `toml:"history_db,omitempty"`
	LastModelPath string      `toml:"last_model_path,omitempty"`
	LastImageDir  string      `toml:"last_image_dir,omitempty"`
	Model         ModelConfig `toml:"model"`
	Log           LogConfig   `toml:"log"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Model.ImageSize <= 0 {
		c.Model.ImageSize = DefaultImageSize
	}
	if c.Model.Layout == "" {
		c.Model.Layout = LayoutNHWC
	}
	if c.Model.Resample == "" {
		c.Model.Resample = "catmullrom"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// LoadConfig loads .env, then the given TOML file (or ./config.toml), then
// PYRO_* environment overrides. A missing config file yields defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	cfg, err := readConfigFile(path)
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveLastPaths records the last chosen model and image directory in the
// config file. Other keys are written back as they are in the file, so
// environment overrides never end up on disk.
func SaveLastPaths(path, modelPath, imageDir string) error {
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := readConfigFile(path)
	if err != nil {
		return err
	}
	cfg.LastModelPath = modelPath
	cfg.LastImageDir = imageDir
	return writeConfigFile(path, cfg)
}

// readConfigFile decodes path without env overrides or defaults.
func readConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	return cfg, nil
}

func writeConfigFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.OrtLibrary = getEnv("PYRO_ORT_LIBRARY", cfg.OrtLibrary)
	cfg.ClassesFile = getEnv("PYRO_CLASSES_FILE", cfg.ClassesFile)
	cfg.HistoryDB = getEnv("PYRO_HISTORY_DB", cfg.HistoryDB)
	cfg.Log.Level = getEnv("PYRO_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Dir = getEnv("PYRO_LOG_DIR", cfg.Log.Dir)
	cfg.Model.Layout = Layout(getEnv("PYRO_INPUT_LAYOUT", string(cfg.Model.Layout)))
	cfg.Model.Resample = getEnv("PYRO_RESAMPLE", cfg.Model.Resample)
	cfg.Model.ImageSize = getEnvAsInt("PYRO_IMAGE_SIZE", cfg.Model.ImageSize)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
