package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

// eventBuffer is the capacity of an engine's event channel.
const eventBuffer = 16

// waitDelay bounds how long a killed command may hold its output pipes
// open through children it spawned.
const waitDelay = 500 * time.Millisecond

// job performs one utterance. It must call started once audio is audible
// and return when the utterance is over or ctx is cancelled.
type job func(ctx context.Context, started func()) error

// runner owns at most one in-flight job and translates its lifecycle into
// speech events tagged with the request identity.
type runner struct {
	logger *log.Logger
	events chan speech.Event
	done   chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	active uint64
	closed bool
	wg     sync.WaitGroup

	// sendMu is held shared by senders and exclusively by closeEvents.
	sendMu sync.RWMutex
}

func newRunner(logger *log.Logger) *runner {
	return &runner{
		logger: logger,
		events: make(chan speech.Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// start interrupts whatever is running and launches fn for request id.
func (r *runner) start(id uint64, fn job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New("engine closed")
	}
	r.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.active = id

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		err := fn(ctx, func() {
			r.emit(speech.Event{Kind: speech.EventStart, RequestID: id})
		})

		switch {
		case ctx.Err() != nil:
			// A cancelled request still ends; the controller decides
			// whether anyone is listening.
			r.logger.Debug("request cancelled", "id", id)
			r.emit(speech.Event{Kind: speech.EventEnd, RequestID: id})
		case err != nil:
			r.logger.Debug("request failed", "id", id, "error", err)
			r.emit(speech.Event{Kind: speech.EventError, RequestID: id, Err: err})
		default:
			r.emit(speech.Event{Kind: speech.EventEnd, RequestID: id})
		}

		r.mu.Lock()
		if r.active == id {
			r.active = 0
			r.cancel = nil
		}
		r.mu.Unlock()
	}()

	return nil
}

// cancelActive stops the in-flight job without waiting for it.
func (r *runner) cancelActive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

func (r *runner) cancelLocked() {
	if r.cancel == nil {
		return
	}
	r.logger.Debug("interrupting request", "id", r.active)
	r.cancel()
	r.cancel = nil
	r.active = 0
}

// emit delivers ev unless the runner is shutting down. It is safe to call
// after closeEvents.
func (r *runner) emit(ev speech.Event) {
	r.sendMu.RLock()
	defer r.sendMu.RUnlock()

	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// closeEvents closes the event channel. It must follow close.
func (r *runner) closeEvents() {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	close(r.events)
}

// close cancels the active job and waits for it to finish. It reports
// whether this call performed the shutdown.
func (r *runner) close() bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.closed = true
	r.cancelLocked()
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	return true
}

// runCommand runs name with args, calling started once the process is up.
// Stdout goes to stdout when non-nil; stderr is folded into the error.
func runCommand(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer, started func()) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	if started != nil {
		started()
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, exec.ErrWaitDelay) {
			// The command itself succeeded; a leftover child kept a pipe.
			return nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// lookBinary resolves the first of candidates found on PATH.
func lookBinary(candidates ...string) (string, error) {
	var tried []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
		tried = append(tried, c)
	}
	return "", speech.NewEngineError(speech.ErrorCodeEngineUnavailable,
		fmt.Sprintf("none of %s found in PATH", strings.Join(tried, ", ")), 0, exec.ErrNotFound)
}
