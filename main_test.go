package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voiceover/internal/speech"
	"github.com/dgnsrekt/voiceover/internal/speech/engines"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func TestIsMarkdownFile(t *testing.T) {
	tests := map[string]bool{
		"README.md":     true,
		"notes.MD":      true,
		"doc.markdown":  true,
		"post.mkdn":     true,
		"plain.txt":     false,
		"Makefile":      false,
		"archive.md.gz": false,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			if got := isMarkdownFile(path); got != want {
				t.Errorf("isMarkdownFile(%q) = %v, want %v", path, got, want)
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "notes.md")
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(md, []byte("# Title\n\nSome *bold* prose.\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(txt, []byte("# Title\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("markdown file", func(t *testing.T) {
		text, path, err := readInput(md, false)
		if err != nil {
			t.Fatalf("readInput() error = %v", err)
		}
		if path != md {
			t.Errorf("path = %q, want %q", path, md)
		}
		if strings.Contains(text, "#") || strings.Contains(text, "*") {
			t.Errorf("markdown syntax left in %q", text)
		}
		if !strings.Contains(text, "Some bold prose.") {
			t.Errorf("prose missing from %q", text)
		}
	})

	t.Run("plain file", func(t *testing.T) {
		text, _, err := readInput(txt, false)
		if err != nil {
			t.Fatalf("readInput() error = %v", err)
		}
		if text != "# Title\n" {
			t.Errorf("text = %q, want it untouched", text)
		}
	})

	t.Run("forced markdown", func(t *testing.T) {
		text, _, err := readInput(txt, true)
		if err != nil {
			t.Fatalf("readInput() error = %v", err)
		}
		if text != "Title" {
			t.Errorf("text = %q, want %q", text, "Title")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := readInput(filepath.Join(dir, "nope.txt"), false); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("no input", func(t *testing.T) {
		text, path, err := readInput("", false)
		if err != nil || text != "" || path != "" {
			t.Errorf("readInput(\"\") = %q, %q, %v", text, path, err)
		}
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	t.Setenv("VOICEOVER_TEST_DIR", "/tmp/voices")

	tests := map[string]string{
		"~/voices":              filepath.Join(home, "voices"),
		"$VOICEOVER_TEST_DIR/a": "/tmp/voices/a",
		"/abs/path":             "/abs/path",
	}
	for in, want := range tests {
		if got := expandPath(in); got != want {
			t.Errorf("expandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteVoices(t *testing.T) {
	voices := engines.DefaultMockVoices()

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeVoices(&buf, voices, "table"); err != nil {
			t.Fatalf("writeVoices() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"ID", "LANGUAGE", "mock-de", "Mock German", "de-DE (German"} {
			if !strings.Contains(out, want) {
				t.Errorf("table missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeVoices(&buf, voices, "yaml"); err != nil {
			t.Fatalf("writeVoices() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"- id: mock-en", "name: Mock Japanese", "language: ja-JP", "display: Japanese"} {
			if !strings.Contains(out, want) {
				t.Errorf("yaml missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeVoices(&buf, nil, "table"); err != nil {
			t.Fatalf("writeVoices() error = %v", err)
		}
		if !strings.Contains(buf.String(), "No voices available.") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := writeVoices(&bytes.Buffer{}, voices, "csv"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestSpeakAndWait(t *testing.T) {
	newMock := func(wpm float64) *engines.Mock {
		m := engines.NewMock(engines.MockConfig{WordsPerMinute: wpm, Logger: quietLogger()})
		t.Cleanup(func() { _ = m.Close() })
		return m
	}

	t.Run("completes", func(t *testing.T) {
		m := newMock(60000)
		var buf bytes.Buffer
		err := speakAndWait(context.Background(), m, "hello there", "", &buf, speech.WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("speakAndWait() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Speaking 2 words with Mock English (en-US)") {
			t.Errorf("unexpected output %q", buf.String())
		}
		if got := len(m.Requests()); got != 1 {
			t.Errorf("requests = %d, want 1", got)
		}
	})

	t.Run("preferred voice", func(t *testing.T) {
		m := newMock(60000)
		err := speakAndWait(context.Background(), m, "hallo", "mock-de", &bytes.Buffer{},
			speech.WithLogger(quietLogger()), speech.WithVoice("mock-de"))
		if err != nil {
			t.Fatalf("speakAndWait() error = %v", err)
		}
		if got := m.Requests()[0].VoiceID(); got != "mock-de" {
			t.Errorf("voice = %q, want mock-de", got)
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		m := newMock(60000)
		m.FailWith(errors.New("device busy"))
		err := speakAndWait(context.Background(), m, "hello", "", &bytes.Buffer{}, speech.WithLogger(quietLogger()))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "Failed to generate speech") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("interrupted", func(t *testing.T) {
		m := newMock(1)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		var buf bytes.Buffer
		if err := speakAndWait(ctx, m, "a long speech", "", &buf, speech.WithLogger(quietLogger())); err != nil {
			t.Fatalf("speakAndWait() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Stopped.") {
			t.Errorf("unexpected output %q", buf.String())
		}
		if m.Cancels() != 1 {
			t.Errorf("cancels = %d, want 1", m.Cancels())
		}
	})

	t.Run("listing failure", func(t *testing.T) {
		m := newMock(60000)
		m.FailListing(errors.New("no host"))
		if err := speakAndWait(context.Background(), m, "hello", "", &bytes.Buffer{}, speech.WithLogger(quietLogger())); err == nil {
			t.Error("expected error")
		}
	})
}
