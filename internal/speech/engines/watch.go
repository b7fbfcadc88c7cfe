package engines

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const (
	defaultDebounce      = 250 * time.Millisecond
	defaultRelistEvery   = 2 * time.Second
	defaultRelistTimeout = 10 * time.Second
)

// WatchConfig tunes the voices watcher.
type WatchConfig struct {
	// Debounce is how long the directories must be quiet before the
	// voice list is rebuilt.
	Debounce time.Duration

	// MinInterval is the minimum time between two rebuilds.
	MinInterval time.Duration

	Logger *log.Logger
}

// Watcher pushes a fresh voice list whenever the watched directories gain
// or lose model files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	list     func(context.Context) ([]speech.Voice, error)
	emit     func(speech.Event)
	debounce time.Duration
	limiter  *rate.Limiter
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWatcher starts watching dirs. Directories that do not exist yet are
// skipped.
func NewWatcher(
	dirs []string,
	list func(context.Context) ([]speech.Voice, error),
	emit func(speech.Event),
	cfg WatchConfig,
) (*Watcher, error) {
	if list == nil || emit == nil {
		return nil, errors.New("watcher needs a list and an emit function")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("watch")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	every := cfg.MinInterval
	if every <= 0 {
		every = defaultRelistEvery
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Debug("not watching missing dir", "dir", dir)
			continue
		}
		if err := fsw.Add(dir); err != nil {
			logger.Error("error adding dir to fsnotify watcher", "dir", dir, "error", err)
			continue
		}
		logger.Info("fsnotify watching dir", "dir", dir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:      fsw,
		list:     list,
		emit:     emit,
		debounce: debounce,
		limiter:  rate.NewLimiter(rate.Every(every), 1),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isModelEvent(event) {
				continue
			}
			w.logger.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("fsnotify error", "error", err)

		case <-timer.C:
			w.refresh()
		}
	}
}

func (w *Watcher) refresh() {
	if err := w.limiter.Wait(w.ctx); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, defaultRelistTimeout)
	defer cancel()

	voices, err := w.list(ctx)
	if err != nil {
		w.logger.Warn("unable to list voices", "error", err)
		return
	}
	w.logger.Debug("voices changed", "count", len(voices))
	w.emit(speech.Event{Kind: speech.EventVoicesChanged, Voices: voices})
}

// Close stops the watcher and waits for it to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func isModelEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".onnx", ".json":
		return true
	}
	return false
}
