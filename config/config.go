// Package config loads and validates the CLI configuration.
package config

// Config holds the main configuration for the CLI.
type Config struct {
	Version  string         `json:"version"            yaml:"version"`
	Token    string         `json:"token,omitempty"    yaml:"token,omitempty"`
	BaseURL  string         `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Defaults DefaultsConfig `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Output   OutputConfig   `json:"output,omitempty"   yaml:"output,omitempty"`
	Watch    WatchConfig    `json:"watch,omitempty"    yaml:"watch,omitempty"`
}

// DefaultsConfig holds synthesis parameters applied when a run omits them.
type DefaultsConfig struct {
	VoiceID          int     `json:"voice_id,omitempty"           yaml:"voice_id,omitempty"`
	Format           string  `json:"format,omitempty"             yaml:"format,omitempty"`
	Speed            float64 `json:"speed,omitempty"              yaml:"speed,omitempty"`
	Volume           float64 `json:"volume,omitempty"             yaml:"volume,omitempty"`
	ParagraphPauseMS int     `json:"paragraph_pause_ms,omitempty" yaml:"paragraph_pause_ms,omitempty"`
}

// OutputConfig holds configuration for where audio files are written.
type OutputConfig struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// WatchConfig holds configuration for watch mode.
type WatchConfig struct {
	Dir        string `json:"dir,omitempty"         yaml:"dir,omitempty"`
	OutDir     string `json:"out_dir,omitempty"     yaml:"out_dir,omitempty"`
	DebounceMS int    `json:"debounce_ms,omitempty" yaml:"debounce_ms,omitempty"`
}
