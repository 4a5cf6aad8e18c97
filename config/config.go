// SPDX-License-Identifier: EPL-2.0

// Package config resolves msukit settings from defaults, an optional YAML
// file named by MSUKIT_CONFIG, and MSUKIT_* environment variables, in that
// order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/msukit/song"
)

const (
	defaultMsuPcmPath     = "msupcm"
	defaultLooperPath     = "pymusiclooper"
	defaultWorkers        = 10
	defaultCacheRetention = 720 * time.Hour
	defaultPreviewSeconds = 5.0
	defaultPlayer         = "auto"
	defaultPlayerCommand  = "aplay"
	defaultWatchDebounce  = 2 * time.Second
)

var players = []string{"auto", "device", "exec", "null"}

// ErrInvalidPlayer is returned for an unknown player mode.
var ErrInvalidPlayer = errors.New("player must be one of auto, device, exec or null")

// Config holds every setting the command line tool needs.
type Config struct {
	MsuPcmPath     string
	LooperPath     string
	CacheDir       string
	TempDir        string
	Workers        int
	CacheRetention time.Duration
	PreviewSeconds float64
	Player         string
	PlayerCommand  string
	WatchDebounce  time.Duration
	KeepTemps      bool
	Pack           Pack
}

// Pack holds defaults applied to every generated descriptor.
type Pack struct {
	Game          string
	Name          string
	Artist        string
	URL           string
	Normalization *float64
	Dither        *bool
}

type fileYAML struct {
	MsuPcmPath     string   `yaml:"msupcm_path"`
	LooperPath     string   `yaml:"looper_path"`
	CacheDir       string   `yaml:"cache_dir"`
	TempDir        string   `yaml:"temp_dir"`
	Workers        int      `yaml:"workers"`
	CacheRetention string   `yaml:"cache_retention"`
	PreviewSeconds float64  `yaml:"preview_seconds"`
	Player         string   `yaml:"player"`
	PlayerCommand  string   `yaml:"player_command"`
	WatchDebounce  string   `yaml:"watch_debounce"`
	KeepTemps      *bool    `yaml:"keep_temps"`
	Pack           packYAML `yaml:"pack"`
}

type packYAML struct {
	Game          string   `yaml:"game"`
	Name          string   `yaml:"name"`
	Artist        string   `yaml:"artist"`
	URL           string   `yaml:"url"`
	Normalization *float64 `yaml:"normalization"`
	Dither        *bool    `yaml:"dither"`
}

// Default returns the built-in settings.
func Default() Config {
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		cacheRoot = os.TempDir()
	}

	return Config{
		MsuPcmPath:     defaultMsuPcmPath,
		LooperPath:     defaultLooperPath,
		CacheDir:       filepath.Join(cacheRoot, "msukit"),
		TempDir:        filepath.Join(os.TempDir(), "msukit"),
		Workers:        defaultWorkers,
		CacheRetention: defaultCacheRetention,
		PreviewSeconds: defaultPreviewSeconds,
		Player:         defaultPlayer,
		PlayerCommand:  defaultPlayerCommand,
		WatchDebounce:  defaultWatchDebounce,
	}
}

// Load resolves the configuration.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("MSUKIT_CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.resolvePaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var f fileYAML
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parsing %s: %w", resolved, err)
	}

	setString(&c.MsuPcmPath, f.MsuPcmPath)
	setString(&c.LooperPath, f.LooperPath)
	setString(&c.CacheDir, f.CacheDir)
	setString(&c.TempDir, f.TempDir)
	setString(&c.Player, f.Player)
	setString(&c.PlayerCommand, f.PlayerCommand)

	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.PreviewSeconds > 0 {
		c.PreviewSeconds = f.PreviewSeconds
	}
	if f.KeepTemps != nil {
		c.KeepTemps = *f.KeepTemps
	}
	if d, ok := parseDuration(f.CacheRetention); ok {
		c.CacheRetention = d
	}
	if d, ok := parseDuration(f.WatchDebounce); ok {
		c.WatchDebounce = d
	}

	setString(&c.Pack.Game, f.Pack.Game)
	setString(&c.Pack.Name, f.Pack.Name)
	setString(&c.Pack.Artist, f.Pack.Artist)
	setString(&c.Pack.URL, f.Pack.URL)
	if f.Pack.Normalization != nil {
		c.Pack.Normalization = f.Pack.Normalization
	}
	if f.Pack.Dither != nil {
		c.Pack.Dither = f.Pack.Dither
	}

	return nil
}

func (c *Config) applyEnv() {
	setString(&c.MsuPcmPath, os.Getenv("MSUKIT_MSUPCM_PATH"))
	setString(&c.LooperPath, os.Getenv("MSUKIT_LOOPER_PATH"))
	setString(&c.CacheDir, os.Getenv("MSUKIT_CACHE_DIR"))
	setString(&c.TempDir, os.Getenv("MSUKIT_TEMP_DIR"))
	setString(&c.Player, os.Getenv("MSUKIT_PLAYER"))
	setString(&c.PlayerCommand, os.Getenv("MSUKIT_PLAYER_COMMAND"))

	if n, err := strconv.Atoi(env("MSUKIT_WORKERS")); err == nil && n > 0 {
		c.Workers = n
	}
	if f, err := strconv.ParseFloat(env("MSUKIT_PREVIEW_SECONDS"), 64); err == nil && f > 0 {
		c.PreviewSeconds = f
	}
	if d, ok := parseDuration(env("MSUKIT_CACHE_RETENTION")); ok {
		c.CacheRetention = d
	}
	if d, ok := parseDuration(env("MSUKIT_WATCH_DEBOUNCE")); ok {
		c.WatchDebounce = d
	}
	if b, err := strconv.ParseBool(env("MSUKIT_KEEP_TEMPS")); err == nil {
		c.KeepTemps = b
	}

	setString(&c.Pack.Game, os.Getenv("MSUKIT_GAME"))
	setString(&c.Pack.Name, os.Getenv("MSUKIT_PACK"))
	setString(&c.Pack.Artist, os.Getenv("MSUKIT_ARTIST"))
	setString(&c.Pack.URL, os.Getenv("MSUKIT_URL"))
	if f, err := strconv.ParseFloat(env("MSUKIT_NORMALIZATION"), 64); err == nil {
		c.Pack.Normalization = &f
	}
	if b, err := strconv.ParseBool(env("MSUKIT_DITHER")); err == nil {
		c.Pack.Dither = &b
	}
}

func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.CacheDir, &c.TempDir} {
		abs, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = abs
	}

	// Bare command names stay as they are and are looked up on PATH.
	for _, p := range []*string{&c.MsuPcmPath, &c.LooperPath} {
		if !strings.ContainsRune(*p, filepath.Separator) && !strings.HasPrefix(*p, "~") {
			continue
		}
		abs, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = abs
	}

	return nil
}

// Validate checks values that have no safe fallback.
func (c Config) Validate() error {
	for _, p := range players {
		if c.Player == p {
			return nil
		}
	}
	return fmt.Errorf("%w, got %q", ErrInvalidPlayer, c.Player)
}

// BuildCacheDir holds the records that let unchanged songs skip
// regeneration.
func (c Config) BuildCacheDir() string {
	return filepath.Join(c.CacheDir, "builds")
}

// LooperCacheDir holds cached loop detection results.
func (c Config) LooperCacheDir() string {
	return filepath.Join(c.CacheDir, "pymusiclooper")
}

// SongPack converts the pack defaults for descriptor generation.
func (c Config) SongPack() song.Pack {
	return song.Pack{
		Game:          c.Pack.Game,
		Name:          c.Pack.Name,
		Artist:        c.Pack.Artist,
		URL:           c.Pack.URL,
		Normalization: c.Pack.Normalization,
		Dither:        c.Pack.Dither,
		KeepTemps:     c.KeepTemps,
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func parseDuration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return abs, nil
}
