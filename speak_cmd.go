package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voiceover/internal/plaintext"
	"github.com/dgnsrekt/voiceover/internal/speech"
)

var (
	speakFile     string
	speakMarkdown bool

	speakCmd = &cobra.Command{
		Use:   "speak [TEXT...]",
		Short: "Speak text without the TUI",
		Long: paragraph(fmt.Sprintf("\n%s the arguments, a file or stdin and wait until the engine is done. Press ctrl+c to stop early.",
			keyword("Speak"))),
		Example: paragraph("voiceover speak hello there\nvoiceover speak -f notes.md\ncat notes.txt | voiceover speak --rate 1.5"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := speakText(args)
			if err != nil {
				return err
			}

			engine, err := newEngine(false)
			if err != nil {
				return err
			}
			defer func() {
				if err := engine.Close(); err != nil {
					log.Warn("engine close failed", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return speakAndWait(ctx, engine, text, voiceID, cmd.OutOrStdout(), controllerOptions()...)
		},
	}
)

func init() {
	speakCmd.Flags().StringVarP(&speakFile, "file", "f", "", "read text from a file (- for stdin)")
	speakCmd.Flags().BoolVarP(&speakMarkdown, "markdown", "m", false, "treat the text as markdown and speak only its prose")
}

// speakText picks the text to speak: arguments first, then --file, then a
// stdin pipe.
func speakText(args []string) (string, error) {
	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
		if speakMarkdown {
			text = plaintext.FromMarkdown(text)
		}
	case speakFile != "":
		t, _, err := readInput(speakFile, speakMarkdown)
		if err != nil {
			return "", err
		}
		text = t
	default:
		piped, err := stdinIsPipe()
		if err != nil {
			return "", err
		}
		if !piped {
			return "", errors.New("nothing to speak: pass text, --file or pipe to stdin")
		}
		t, _, err := readInput("-", speakMarkdown)
		if err != nil {
			return "", err
		}
		text = t
	}

	if strings.TrimSpace(text) == "" {
		return "", speech.ErrEmptyInput
	}
	return text, nil
}

// speakAndWait drives a controller for a single utterance, pumping engine
// events until it is idle again. Cancelling ctx stops the speech.
func speakAndWait(ctx context.Context, engine speech.Engine, text, voice string, w io.Writer, opts ...speech.Option) error {
	var notice *speech.Notice
	opts = append(opts, speech.WithNotifier(func(n speech.Notice) { notice = &n }))

	ctrl, err := speech.New(engine, opts...)
	if err != nil {
		return err
	}
	if _, err := ctrl.LoadVoices(ctx); err != nil {
		return err
	}
	if voice != "" {
		if v, ok := ctrl.Selected(); !ok || v.ID != voice {
			log.Warn("voice not available, using default", "voice", voice)
		}
	}

	req, err := ctrl.Speak(text)
	if err != nil {
		return fmt.Errorf("unable to speak: %w", err)
	}

	name := "the default voice"
	if req.Voice != nil {
		name = req.Voice.String()
	}
	_, _ = fmt.Fprintf(w, "Speaking %s words with %s %s\n",
		humanize.Comma(int64(speech.WordCount(text))),
		name,
		faint("(about "+speech.FormatDuration(ctrl.Estimate(text))+")"))

	for ctrl.Speaking() {
		select {
		case <-ctx.Done():
			ctrl.Stop()
			_, _ = fmt.Fprintln(w, "Stopped.")
			return nil
		case ev, ok := <-engine.Events():
			if !ok {
				ctrl.Stop()
				return errors.New("engine closed before speech finished")
			}
			ctrl.HandleEvent(ev)
		}
	}

	if notice != nil {
		return fmt.Errorf("%s %w", notice.Description, notice.Err)
	}
	return nil
}
