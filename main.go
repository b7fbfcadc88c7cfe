// Package main provides the entry point for the voiceover CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/voiceover/internal/plaintext"
	"github.com/dgnsrekt/voiceover/internal/speech"
	"github.com/dgnsrekt/voiceover/internal/speech/engines"
	"github.com/dgnsrekt/voiceover/ui"
)

const appName = "voiceover"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	markdownExtensions = []string{".md", ".mdown", ".mkdn", ".mkd", ".markdown"}

	configFile string
	engineName string
	voiceID    string
	pitch      float64
	rate       float64
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "voiceover [FILE|-]",
		Short: "Turn text into speech, right in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nType, paste or load text and %s through the speech engines installed on this machine.", keyword("hear it spoken")),
		),
		Example:          paragraph("voiceover\nvoiceover notes.md\necho 'hello there' | voiceover -"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		err := viper.ReadInConfig()
		switch {
		case err == nil:
		case cmd == configCmd && errors.Is(err, fs.ErrNotExist):
			// voiceover config creates it.
		default:
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	level := viper.GetString("log_level")
	if debug || viper.GetBool("debug") {
		level = "debug"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	engineName = strings.ToLower(strings.TrimSpace(viper.GetString("engine")))
	if engineName == "" {
		engineName = engines.AutoName
	}
	if valid := append([]string{engines.AutoName}, engines.Names()...); !slices.Contains(valid, engineName) {
		return fmt.Errorf("unknown engine %q: use one of %s", engineName, strings.Join(valid, ", "))
	}

	voiceID = viper.GetString("voice")

	pitch = viper.GetFloat64("pitch")
	if math.IsNaN(pitch) || pitch < speech.MinPitch || pitch > speech.MaxPitch {
		log.Warn("pitch out of range, clamping", "pitch", pitch, "min", speech.MinPitch, "max", speech.MaxPitch)
	}
	rate = viper.GetFloat64("rate")
	if math.IsNaN(rate) || rate < speech.MinRate || rate > speech.MaxRate {
		log.Warn("rate out of range, clamping", "rate", rate, "min", speech.MinRate, "max", speech.MaxRate)
	}

	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func isMarkdownFile(path string) bool {
	return slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(path)))
}

// readInput loads the text named by arg: a file, "-" for stdin, or nothing.
// Markdown files are reduced to their prose.
func readInput(arg string, markdown bool) (text string, path string, err error) {
	var b []byte
	switch arg {
	case "":
		return "", "", nil
	case "-":
		b, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read from stdin: %w", err)
		}
	default:
		b, err = os.ReadFile(arg)
		if err != nil {
			return "", "", fmt.Errorf("unable to open file: %w", err)
		}
		if path, err = filepath.Abs(arg); err != nil {
			return "", "", fmt.Errorf("unable to get absolute path: %w", err)
		}
	}

	text = string(b)
	if markdown || isMarkdownFile(path) {
		text = plaintext.FromMarkdown(text)
	}
	return text, path, nil
}

func execute(_ *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	piped, err := stdinIsPipe()
	if err != nil {
		return err
	}
	if piped && arg == "" {
		arg = "-"
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("voiceover needs a terminal; use `voiceover speak` in scripts")
	}

	text, path, err := readInput(arg, false)
	if err != nil {
		return err
	}
	return runTUI(path, text, arg == "-")
}

func runTUI(path, text string, inputTTY bool) error {
	// Read environment to get UI switches
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.Text = text
	cfg.InputTTY = inputTTY

	engine, err := newEngine(true)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn("engine close failed", "error", err)
		}
	}()

	p, err := ui.NewProgram(cfg, engine, controllerOptions()...)
	if err != nil {
		return err
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// newEngine builds the configured engine. watch enables the piper voices
// watcher, which only long-running sessions need.
func newEngine(watch bool) (speech.Engine, error) {
	e, err := engines.New(engineName, engineConfig(watch))
	if err != nil {
		return nil, fmt.Errorf("unable to start %s engine: %w", engineName, err)
	}
	log.Info("engine ready", "engine", e.Name())
	return e, nil
}

func engineConfig(watch bool) engines.Config {
	return engines.Config{
		Espeak: engines.EspeakConfig{
			Binary: viper.GetString("espeak.binary"),
			Logger: log.Default().WithPrefix("espeak"),
		},
		Piper: engines.PiperConfig{
			Binary:     viper.GetString("piper.binary"),
			VoiceDirs:  piperVoiceDirs(),
			SampleRate: viper.GetInt("piper.sample_rate"),
			Watch:      watch,
			Watcher:    engines.WatchConfig{Logger: log.Default().WithPrefix("watch")},
			Logger:     log.Default().WithPrefix("piper"),
		},
		Mock: engines.MockConfig{
			WordsPerMinute: viper.GetFloat64("mock.words_per_minute"),
			Logger:         log.Default().WithPrefix("mock"),
		},
	}
}

// piperVoiceDirs lists the configured voices dir followed by the user data
// dirs.
func piperVoiceDirs() []string {
	var dirs []string
	if d := viper.GetString("piper.voices_dir"); d != "" {
		dirs = append(dirs, expandPath(d))
	}
	data, err := gap.NewScope(gap.User, appName).DataDirs()
	if err != nil {
		log.Debug("no data dirs", "error", err)
		return dirs
	}
	for _, d := range data {
		dirs = append(dirs, filepath.Join(d, "voices"))
	}
	return dirs
}

func controllerOptions() []speech.Option {
	return []speech.Option{
		speech.WithLogger(log.Default().WithPrefix("speech")),
		speech.WithPitch(pitch),
		speech.WithRate(rate),
		speech.WithVoice(voiceID),
	}
}

// expandPath expands environment variables and a leading ~.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

func main() {
	setupColor()
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	loadDotEnv()
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("engine", "e", engines.AutoName, "speech engine: "+strings.Join(append([]string{engines.AutoName}, engines.Names()...), ", "))
	flags.String("voice", "", "voice id to select when available")
	flags.Float64("pitch", speech.DefaultPitch, fmt.Sprintf("pitch multiplier (%.1f-%.1f)", speech.MinPitch, speech.MaxPitch))
	flags.Float64("rate", speech.DefaultRate, fmt.Sprintf("rate multiplier (%.1f-%.1f)", speech.MinRate, speech.MaxRate))
	flags.BoolVar(&debug, "debug", false, "log debug output")

	// Config bindings
	_ = viper.BindPFlag("engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("pitch", flags.Lookup("pitch"))
	_ = viper.BindPFlag("rate", flags.Lookup("rate"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	viper.SetDefault("engine", engines.AutoName)
	viper.SetDefault("pitch", speech.DefaultPitch)
	viper.SetDefault("rate", speech.DefaultRate)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("piper.sample_rate", 22050)
	viper.SetDefault("mock.words_per_minute", speech.WordsPerMinute)

	rootCmd.AddCommand(configCmd, manCmd, speakCmd, voicesCmd)
}

// loadDotEnv reads a .env file from the working directory, if present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not parse .env file", "err", err)
	}
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("VOICEOVER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], appName+".yml")
	if _, err := writeDefaultConfig(configFile); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
