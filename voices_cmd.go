package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/voiceover/internal/speech"
	"github.com/dgnsrekt/voiceover/ui"
)

const listVoicesTimeout = 10 * time.Second

var (
	voicesFormat string

	voicesCmd = &cobra.Command{
		Use:     "voices",
		Short:   "List the voices of the selected engine",
		Example: paragraph("voiceover voices\nvoiceover voices -e piper --format yaml"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := newEngine(false)
			if err != nil {
				return err
			}
			defer func() {
				if err := engine.Close(); err != nil {
					log.Warn("engine close failed", "error", err)
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), listVoicesTimeout)
			defer cancel()

			voices, err := engine.ListVoices(ctx)
			if err != nil {
				return fmt.Errorf("unable to list voices: %w", err)
			}
			return writeVoices(cmd.OutOrStdout(), voices, voicesFormat)
		},
	}
)

func init() {
	voicesCmd.Flags().StringVar(&voicesFormat, "format", "table", "output format: table or yaml")
}

type voiceEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Language string `yaml:"language,omitempty"`
	Display  string `yaml:"display,omitempty"`
}

func writeVoices(w io.Writer, voices []speech.Voice, format string) error {
	switch format {
	case "yaml", "yml":
		entries := make([]voiceEntry, len(voices))
		for i, v := range voices {
			entries[i] = voiceEntry{
				ID:       v.ID,
				Name:     v.Name,
				Language: v.Language,
				Display:  ui.LanguageName(v.Language),
			}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("unable to encode voices: %w", err)
		}
		return enc.Close()

	case "table", "":
		if len(voices) == 0 {
			_, err := fmt.Fprintln(w, faint("No voices available."))
			return err
		}
		header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "NAME", "LANGUAGE").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}
				return cell
			})
		for _, v := range voices {
			lang := v.Language
			if name := ui.LanguageName(lang); name != "" {
				lang = fmt.Sprintf("%s (%s)", lang, name)
			}
			t.Row(v.ID, v.Name, lang)
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err

	default:
		return fmt.Errorf("unknown format %q: use table or yaml", format)
	}
}
