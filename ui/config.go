package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	// Initial contents of the text box.
	Text string

	// File the initial text was loaded from, if any.
	Path string

	// Read keys from the terminal rather than stdin, which held the text.
	InputTTY bool

	AltScreen       bool          `env:"VOICEOVER_ALT_SCREEN"    envDefault:"true"`
	EnableClipboard bool          `env:"VOICEOVER_CLIPBOARD"     envDefault:"true"`
	ToastTimeout    time.Duration `env:"VOICEOVER_TOAST_TIMEOUT" envDefault:"4s"`
	MaxWidth        int           `env:"VOICEOVER_MAX_WIDTH"     envDefault:"80"`
}
