package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/obra/internal/gantt"
)

// Config holds the runtime settings of the obra CLI.
type Config struct {
	DBPath      string
	LogLevel    slog.Level
	LogUseCases bool
	DefaultZoom gantt.ZoomMode
	Layout      gantt.LayoutConfig

	// Source is the config file that was applied, empty when none was found.
	Source string
}

// DefaultConfig returns the stock settings. DBPath is left empty and resolved
// against the home directory by Load.
func DefaultConfig() Config {
	return Config{
		LogLevel:    slog.LevelWarn,
		DefaultZoom: gantt.ZoomWeek,
		Layout:      gantt.DefaultLayoutConfig(),
	}
}

type fileConfig struct {
	DBPath      string      `yaml:"db_path"`
	LogLevel    string      `yaml:"log_level"`
	LogUseCases *bool       `yaml:"log_use_cases"`
	DefaultZoom string      `yaml:"default_zoom"`
	Layout      *fileLayout `yaml:"layout"`
}

type fileLayout struct {
	PixelsPerDay  map[string]int `yaml:"pixels_per_day"`
	RowHeight     int            `yaml:"row_height"`
	BarMargin     *int           `yaml:"bar_margin"`
	MilestoneSize int            `yaml:"milestone_size"`
	RouteOffset   int            `yaml:"route_offset"`
	ArrowSize     int            `yaml:"arrow_size"`
}

// Load builds the configuration: defaults, then the YAML file named by
// OBRA_CONFIG (or ~/.obra/config.yaml when present), then environment
// overrides. Unparseable values are ignored.
func Load() (Config, error) {
	cfg := DefaultConfig()

	home, homeErr := os.UserHomeDir()

	path := os.Getenv("OBRA_CONFIG")
	explicit := path != ""
	if !explicit && homeErr == nil {
		path = filepath.Join(home, ".obra", "config.yaml")
	}
	if path != "" {
		applied, err := applyFile(&cfg, path)
		switch {
		case err != nil && (explicit || !errors.Is(err, os.ErrNotExist)):
			return cfg, err
		case applied:
			cfg.Source = path
		}
	}

	applyEnv(&cfg)

	if cfg.DBPath == "" {
		if homeErr != nil {
			return cfg, fmt.Errorf("finding home directory: %w", homeErr)
		}
		cfg.DBPath = filepath.Join(home, ".obra", "obra.db")
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return false, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if lvl, ok := parseLevel(fc.LogLevel); ok {
		cfg.LogLevel = lvl
	}
	if fc.LogUseCases != nil {
		cfg.LogUseCases = *fc.LogUseCases
	}
	if z, err := gantt.ParseZoom(fc.DefaultZoom); err == nil {
		cfg.DefaultZoom = z
	}
	if fc.Layout != nil {
		applyLayout(&cfg.Layout, fc.Layout)
	}
	return true, nil
}

func applyLayout(l *gantt.LayoutConfig, fl *fileLayout) {
	for name, v := range fl.PixelsPerDay {
		z, err := gantt.ParseZoom(name)
		if err != nil || v <= 0 {
			continue
		}
		l.PixelsPerDay[z] = v
	}
	if fl.RowHeight > 0 {
		l.RowHeight = fl.RowHeight
	}
	if fl.BarMargin != nil && *fl.BarMargin >= 0 {
		l.BarMargin = *fl.BarMargin
	}
	if fl.MilestoneSize > 0 {
		l.MilestoneSize = fl.MilestoneSize
	}
	if fl.RouteOffset > 0 {
		l.RouteOffset = fl.RouteOffset
	}
	if fl.ArrowSize > 0 {
		l.ArrowSize = fl.ArrowSize
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OBRA_DB"); v != "" {
		cfg.DBPath = v
	}
	if lvl, ok := parseLevel(os.Getenv("OBRA_LOG_LEVEL")); ok {
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("OBRA_LOG_USE_CASES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogUseCases = b
		}
	}
	if z, err := gantt.ParseZoom(os.Getenv("OBRA_ZOOM")); err == nil {
		cfg.DefaultZoom = z
	}
}

func parseLevel(s string) (slog.Level, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, false
	}
	return lvl, true
}
