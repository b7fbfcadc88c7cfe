package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const listVoicesTimeout = 10 * time.Second

type (
	// engineEventMsg carries one engine callback into the event loop.
	engineEventMsg struct{ event speech.Event }

	// engineClosedMsg is sent once the engine's event channel is closed.
	engineClosedMsg struct{}

	voicesLoadedMsg struct {
		voices []speech.Voice
		err    error
	}

	pasteMsg struct {
		text string
		err  error
	}

	toastTimeoutMsg struct{ seq int }
)

// waitForEvent blocks on the engine's channel; Update re-arms it after each
// event so callbacks are handled one at a time on the loop.
func waitForEvent(events <-chan speech.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg{event: ev}
	}
}

// loadVoicesCmd queries the engine off the loop; the controller is only
// touched when the result comes back.
func loadVoicesCmd(engine speech.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listVoicesTimeout)
		defer cancel()
		voices, err := engine.ListVoices(ctx)
		return voicesLoadedMsg{voices: voices, err: err}
	}
}

func pasteCmd() tea.Msg {
	text, err := clipboard.ReadAll()
	return pasteMsg{text: text, err: err}
}

func toastTimeoutCmd(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastTimeoutMsg{seq: seq}
	})
}
