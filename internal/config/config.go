package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"arbiter/internal/rulepack"
	"arbiter/internal/score"
)

// Config represents the arbiter configuration.
type Config struct {
	Provider    string           `yaml:"provider"`
	Model       string           `yaml:"model,omitempty"`
	RulePack    string           `yaml:"rulePack"`
	RulePackDir string           `yaml:"rulePackDir,omitempty"`
	VocabFile   string           `yaml:"vocabFile,omitempty"`
	Format      string           `yaml:"format"`
	Language    string           `yaml:"language,omitempty"`
	MaxFindings int              `yaml:"maxFindings"`
	MaxAttempts int              `yaml:"maxAttempts"`
	MaxTokens   int              `yaml:"maxTokens"`
	Cache       CacheConfig      `yaml:"cache"`
	Score       score.Thresholds `yaml:"score"`
}

// CacheConfig controls result cache behavior.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:    "gemini",
		RulePack:    rulepack.DefaultPack,
		Format:      "text",
		MaxFindings: 10,
		MaxAttempts: 4,
		MaxTokens:   8192,
		Cache: CacheConfig{
			Enabled: true,
		},
		Score: score.DefaultThresholds(),
	}
}

// ConfigDir returns the platform-appropriate config directory for arbiter.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "arbiter"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "arbiter"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "arbiter"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "arbiter"), nil
	default:
		return filepath.Join(home, ".config", "arbiter"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// CacheDir returns the effective cache directory for this config.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// LoadFile loads config from the config file. Returns a zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Init writes a default config file if none exists and returns its path.
func Init() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists: %s", path)
	}
	if err := Save(Default()); err != nil {
		return "", err
	}
	return path, nil
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags; only non-empty values
// should be set.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.RulePack != "" {
		dst.RulePack = src.RulePack
	}
	if src.RulePackDir != "" {
		dst.RulePackDir = src.RulePackDir
	}
	if src.VocabFile != "" {
		dst.VocabFile = src.VocabFile
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.MaxFindings > 0 {
		dst.MaxFindings = src.MaxFindings
	}
	if src.MaxAttempts > 0 {
		dst.MaxAttempts = src.MaxAttempts
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	// YAML cannot distinguish an unset bool from false, so the cache stays
	// enabled unless env or a flag turns it off.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if src.Score.LevelHighMin > 0 {
		dst.Score.LevelHighMin = src.Score.LevelHighMin
	}
	if src.Score.LevelMediumMin > 0 {
		dst.Score.LevelMediumMin = src.Score.LevelMediumMin
	}
	if src.Score.NonCompliantMin > 0 {
		dst.Score.NonCompliantMin = src.Score.NonCompliantMin
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("ARBITER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("ARBITER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ARBITER_RULE_PACK"); v != "" {
		cfg.RulePack = v
	}
	if v := os.Getenv("ARBITER_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("ARBITER_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("ARBITER_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("ARBITER_NO_CACHE"); v != "" {
		cfg.Cache.Enabled = false
	}
	if v := os.Getenv("ARBITER_MAX_FINDINGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v := os.Getenv("ARBITER_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns an error if the
// key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "rulePack":
		cfg.RulePack = value
	case "rulePackDir":
		cfg.RulePackDir = value
	case "vocabFile":
		cfg.VocabFile = value
	case "format":
		cfg.Format = value
	case "language":
		cfg.Language = value
	case "maxFindings":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFindings must be an integer: %w", err)
		}
		cfg.MaxFindings = n
	case "maxAttempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxAttempts must be an integer: %w", err)
		}
		cfg.MaxAttempts = n
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "score.levelHighMin":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("score.levelHighMin must be an integer: %w", err)
		}
		cfg.Score.LevelHighMin = n
	case "score.levelMediumMin":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("score.levelMediumMin must be an integer: %w", err)
		}
		cfg.Score.LevelMediumMin = n
	case "score.nonCompliantMin":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("score.nonCompliantMin must be an integer: %w", err)
		}
		cfg.Score.NonCompliantMin = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Keys returns the settable config key names, for help output.
func Keys() []string {
	return []string{
		"provider", "model", "rulePack", "rulePackDir", "vocabFile",
		"format", "language", "maxFindings", "maxAttempts", "maxTokens",
		"cache.enabled", "cache.dir",
		"score.levelHighMin", "score.levelMediumMin", "score.nonCompliantMin",
	}
}
