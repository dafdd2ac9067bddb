package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/logging"
)

type DecoderConfig struct {
	MinRun             int  `json:"min_run"`
	KeyWindow          int  `json:"key_window"`
	PreviewLength      int  `json:"preview_length"`
	GenericFallback    bool `json:"generic_fallback"`
	GenericMaxValueLen int  `json:"generic_max_value_length"`
	// GenericFields overrides the field names used by the generic scan.
	GenericFields []string `json:"generic_fields,omitempty"`
}

type RecoveryConfig struct {
	// Workers bounds concurrent row decoding; 0 means one per CPU.
	Workers int `json:"workers"`
}

type WatchConfig struct {
	DebounceMillis int `json:"debounce_millis"`
}

type Config struct {
	Decoder  DecoderConfig  `json:"decoder"`
	Recovery RecoveryConfig `json:"recovery"`
	Watch    WatchConfig    `json:"watch"`
	// Schemas are tried in order; the first match wins.
	Schemas []blob.Schema  `json:"schemas"`
	Log     logging.Config `json:"log"`
}

func DefaultConfig() Config {
	return Config{
		Decoder: DecoderConfig{
			MinRun:             blob.DefaultMinRun,
			KeyWindow:          blob.DefaultKeyWindow,
			PreviewLength:      blob.DefaultPreviewLen,
			GenericMaxValueLen: blob.GenericMaxValueLen,
		},
		Watch:   WatchConfig{DebounceMillis: 500},
		Schemas: blob.DefaultSchemas(),
		Log: logging.Config{
			Level:  logging.DefaultLevel,
			Format: logging.DefaultFormat,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "extrecover")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "extrecover")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// Decode over a zero value so an explicit schema list replaces the
	// defaults instead of merging into them.
	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&loaded)

	if err := Validate(loaded); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return loaded, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Decoder.MinRun <= 0 {
		cfg.Decoder.MinRun = def.Decoder.MinRun
	}
	if cfg.Decoder.KeyWindow <= 0 {
		cfg.Decoder.KeyWindow = def.Decoder.KeyWindow
	}
	if cfg.Decoder.PreviewLength <= 0 {
		cfg.Decoder.PreviewLength = def.Decoder.PreviewLength
	}
	if cfg.Decoder.GenericMaxValueLen <= 0 {
		cfg.Decoder.GenericMaxValueLen = def.Decoder.GenericMaxValueLen
	}
	if cfg.Recovery.Workers < 0 {
		cfg.Recovery.Workers = 0
	}
	if cfg.Watch.DebounceMillis <= 0 {
		cfg.Watch.DebounceMillis = def.Watch.DebounceMillis
	}
	if len(cfg.Schemas) == 0 {
		cfg.Schemas = def.Schemas
	}
	cfg.Log.SetDefaults()
}

// Validate rejects schema lists the classifier cannot use.
func Validate(cfg Config) error {
	seen := make(map[string]bool, len(cfg.Schemas))
	for i, s := range cfg.Schemas {
		if s.Name == "" {
			return fmt.Errorf("schema %d: missing name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("schema %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if len(s.Indicators) == 0 {
			return fmt.Errorf("schema %q: no indicators", s.Name)
		}
		if s.MinIndicators > len(s.Indicators) {
			return fmt.Errorf("schema %q: min_indicators %d exceeds %d indicators", s.Name, s.MinIndicators, len(s.Indicators))
		}
	}
	return nil
}

// NewDecoder builds the row decoder described by cfg.
func (cfg Config) NewDecoder() *blob.Decoder {
	d := &blob.Decoder{
		KeyWindow:  cfg.Decoder.KeyWindow,
		PreviewLen: cfg.Decoder.PreviewLength,
		MinRun:     cfg.Decoder.MinRun,
		Classifier: blob.NewClassifier(cfg.Schemas),
	}
	if cfg.Decoder.GenericFallback {
		d.Generic = cfg.GenericScanner()
	}
	return d
}

// GenericScanner builds the catch-all field scanner described by cfg.
func (cfg Config) GenericScanner() *blob.Scanner {
	s := blob.GenericScanner(cfg.Decoder.GenericFields)
	s.MaxValueLen = cfg.Decoder.GenericMaxValueLen
	return s
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
