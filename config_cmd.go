package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# speech engine: auto, espeak, piper or mock (default "auto")
engine: "auto"
# voice id to select when the engine offers it
voice: ""
# pitch multiplier (0.5 to 2.0)
pitch: 1.0
# rate multiplier (0.5 to 2.0)
rate: 1.0
# debug, info, warn or error
log_level: "info"

espeak:
  # path to espeak-ng; looked up on PATH when empty
  binary: ""

piper:
  # path to piper; looked up on PATH when empty
  binary: ""
  # directory holding *.onnx voices and their .onnx.json configs
  voices_dir: ""
  # fallback sample rate for voices without a config
  sample_rate: 22050

mock:
  # simulated speaking speed
  words_per_minute: 150
`

var (
	configPrint bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Open the voiceover settings in your editor",
		Long: paragraph(fmt.Sprintf("\n%s engine, voice, pitch and rate defaults in $EDITOR. A commented settings file is written first when none exists, and the result is checked when the editor closes.",
			keyword("Change"))),
		Example: paragraph("voiceover config\nvoiceover config --print\nvoiceover config --config ./voiceover.yml"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPrint {
				_, err := fmt.Fprint(cmd.OutOrStdout(), defaultConfig)
				return err
			}

			path, err := settingsPath()
			if err != nil {
				return err
			}
			if _, err := writeDefaultConfig(path); err != nil {
				return err
			}

			c, err := editor.Cmd("Voiceover", path)
			if err != nil {
				return fmt.Errorf("no editor for %s: %w", path, err)
			}
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("editor exited: %w", err)
			}

			if err := checkConfig(path); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Settings saved in", path)
			return err
		},
	}
)

func init() {
	configCmd.Flags().BoolVar(&configPrint, "print", false, "print the default settings instead of editing")
}

// settingsPath is --config when given, else the file viper picked up or
// the default location chosen at startup.
func settingsPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	return "", errors.New("no settings location: pass --config")
}

// writeDefaultConfig creates path with the commented defaults unless it
// already exists. It reports whether the file was created.
func writeDefaultConfig(path string) (bool, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
	default:
		return false, fmt.Errorf("settings must be a .yaml or .yml file, got %q", filepath.Base(path))
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("unable to check settings file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("unable to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return false, fmt.Errorf("unable to write settings file: %w", err)
	}
	log.Debug("wrote default settings", "path", path)
	return true, nil
}

// checkConfig parses path as YAML so editing mistakes surface right away.
func checkConfig(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read settings file: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return fmt.Errorf("%s is not valid YAML: %w", path, err)
	}
	return nil
}
