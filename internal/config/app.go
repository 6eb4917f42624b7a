package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "pc_scorer.toml"

// AppConfig is the content of pc_scorer.toml.
type AppConfig struct {
	RaceDir     string  `toml:"race_dir"`
	SettingsDir string  `toml:"settings_dir"`
	Overlay     string  `toml:"overlay"`
	Scoring     Scoring `toml:"scoring"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type Scoring struct {
	COPoint       int            `toml:"co_point"`
	COWindowStart float64        `toml:"co_window_start"` // seconds from the reference time
	COWindowEnd   float64        `toml:"co_window_end"`
	COPoints      map[string]int `toml:"co_points,omitempty"`
}

func Default() *AppConfig {
	return &AppConfig{
		RaceDir:     "race",
		SettingsDir: "settings",
		Overlay:     "status.yaml",
		Scoring: Scoring{
			COPoint:       500,
			COWindowStart: 0,
			COWindowEnd:   60,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults with
// paths resolved against the directory of path.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %q: %w", path, err)
		}
		cfg.resolve(filepath.Dir(path))
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	for _, key := range []string{"race_dir", "settings_dir", "overlay"} {
		if meta.IsDefined(key) && strings.TrimSpace(cfg.field(key)) == "" {
			return nil, fmt.Errorf("%s: %s is empty", path, key)
		}
	}
	if err := cfg.Scoring.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *AppConfig) field(key string) string {
	switch key {
	case "race_dir":
		return c.RaceDir
	case "settings_dir":
		return c.SettingsDir
	case "overlay":
		return c.Overlay
	}
	return ""
}

func (c *AppConfig) resolve(base string) {
	for _, p := range []*string{&c.RaceDir, &c.SettingsDir, &c.Overlay} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(base, filepath.FromSlash(*p))
		}
	}
}

func (s Scoring) validate() error {
	if s.COPoint < 0 {
		return fmt.Errorf("[scoring].co_point must not be negative")
	}
	for id, p := range s.COPoints {
		if p < 0 {
			return fmt.Errorf("[scoring.co_points].%s must not be negative", id)
		}
	}
	if math.IsNaN(s.COWindowStart) || math.IsNaN(s.COWindowEnd) || s.COWindowEnd <= s.COWindowStart {
		return fmt.Errorf("[scoring] co_window_end must be greater than co_window_start")
	}
	return nil
}

// Window returns the CO clear window offsets from the reference time.
func (s Scoring) Window() (time.Duration, time.Duration) {
	return seconds(s.COWindowStart), seconds(s.COWindowEnd)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Write encodes c as TOML. Paths are written as they are held.
func (c *AppConfig) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
