// Package config loads the TOML configuration document described in
// spec.md §6. It replaces the teacher's env-var-only config.Load (see
// config/config.go) with a document-based loader, since the spec's
// configuration surface is explicitly a key-value document with nested
// feature tables rather than a flat set of env vars.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Notifications names the notification URIs played between phases.
type Notifications struct {
	Ready          string `toml:"ready"`
	PlaylistPrefix string `toml:"playlist_prefix"`
	PlaylistSuffix string `toml:"playlist_suffix"`
	Error          string `toml:"error"`
}

// CD configures the optional CD feature section.
type CD struct {
	Enabled bool   `toml:"enabled"`
	Device  string `toml:"device"`
}

// USB configures the optional USB feature section.
type USB struct {
	Enabled    bool   `toml:"enabled"`
	DevicePath string `toml:"device_path"`
}

// Ping configures the optional reachability-probing feature section. The
// Controller never consults this (probing is out of scope per spec.md §1);
// internal/netprobe owns it and only logs/exposes samples.
type Ping struct {
	Enabled  bool          `toml:"enabled"`
	Target   string        `toml:"target"`
	Interval time.Duration `toml:"interval"`
}

// Web configures the optional HTTP port feature section.
type Web struct {
	Enabled   bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr"`
	StaticDir string `toml:"static_dir"`
}

// Engine selects which driver.Engine backs playback. Command/Args spawn the
// external media engine process (spec.md §1's "external streaming library
// is assumed"), with "{uri}" in Args substituted for the track URI at load
// time. An empty Command falls back to the dependency-free localengine,
// useful for running rradiod against local files without a real decoder.
type Engine struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Config is the full parsed document, with every key spec.md §6 names.
type Config struct {
	StationsDirectory               string        `toml:"stations_directory"`
	InputTimeout                    time.Duration `toml:"input_timeout"`
	InitialVolume                   int           `toml:"initial_volume"`
	VolumeOffset                    int           `toml:"volume_offset"`
	BufferingDuration                time.Duration `toml:"buffering_duration"`
	PauseBeforePlayingIncrement     time.Duration `toml:"pause_before_playing_increment"`
	MaxPauseBeforePlaying            time.Duration `toml:"max_pause_before_playing"`
	SmartGotoPreviousTrackDuration   time.Duration `toml:"smart_goto_previous_track_duration"`
	PlayErrorSoundOnGstreamerError   bool          `toml:"play_error_sound_on_gstreamer_error"`

	Notifications Notifications `toml:"Notifications"`
	CD            CD            `toml:"CD"`
	USB           USB           `toml:"USB"`
	Ping          Ping          `toml:"ping"`
	Web           Web           `toml:"web"`
	Engine        Engine        `toml:"engine"`
}

// defaults mirrors spec.md §6's documented defaults.
func defaults() Config {
	return Config{
		StationsDirectory:             "stations",
		InputTimeout:                  2 * time.Second,
		InitialVolume:                 70,
		VolumeOffset:                  5,
		BufferingDuration:             2 * time.Second,
		PauseBeforePlayingIncrement:   1 * time.Second,
		MaxPauseBeforePlaying:         5 * time.Second,
		SmartGotoPreviousTrackDuration: 2 * time.Second,
		PlayErrorSoundOnGstreamerError: true,
		Web: Web{
			Enabled:    true,
			ListenAddr: ":8080",
		},
	}
}

// EnvPath is the environment variable that locates the config document.
const EnvPath = "RRADIO_CONFIG_PATH"

// Load reads and parses the config document. The path is taken from
// RRADIO_CONFIG_PATH, falling back to "config.toml" in the working
// directory. Missing optional feature sections keep their defaults: [web]
// is enabled on ":8080", every other section has Enabled: false.
func Load() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = "config.toml"
	}
	return LoadFile(path)
}

// LoadFile parses the document at path, seeding it with defaults first so
// that any key the document omits keeps its documented default.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects a config whose values would make the Controller's
// invariants unsatisfiable.
func (c *Config) Validate() error {
	if c.StationsDirectory == "" {
		return fmt.Errorf("config: stations_directory must not be empty")
	}
	if c.InitialVolume < 0 || c.InitialVolume > 100 {
		return fmt.Errorf("config: initial_volume must be within 0..100, got %d", c.InitialVolume)
	}
	if c.MaxPauseBeforePlaying < c.PauseBeforePlayingIncrement {
		return fmt.Errorf("config: max_pause_before_playing must be >= pause_before_playing_increment")
	}
	return nil
}
