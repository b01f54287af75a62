package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

// DocumentWatcher reloads the document file whenever it changes on disk,
// so an operator can edit the evidence text and re-extract without restarting.
type DocumentWatcher struct {
	path    string
	updates chan messages.DocumentLoaded
}

// NewDocumentWatcher creates a watcher for path.
func NewDocumentWatcher(path string) *DocumentWatcher {
	return &DocumentWatcher{
		path:    path,
		updates: make(chan messages.DocumentLoaded, 1),
	}
}

// Path returns the watched file.
func (w *DocumentWatcher) Path() string {
	return w.path
}

// Load reads the file now.
func (w *DocumentWatcher) Load() tea.Msg {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return messages.DocumentLoaded{Path: w.path, Err: fmt.Errorf("read document: %w", err)}
	}
	return messages.DocumentLoaded{Path: w.path, Text: string(data)}
}

// Next waits for the next reload. The app re-issues it after each message.
func (w *DocumentWatcher) Next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.updates
		if !ok {
			return nil
		}
		return msg
	}
}

// Run watches the file's directory until ctx is cancelled.
// Directory watching survives editors that replace the file on save.
func (w *DocumentWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	defer close(w.updates)

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("document changed: %s", event)
			msg, _ := w.Load().(messages.DocumentLoaded)
			msg.Reload = true
			w.publish(msg)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("document watcher: %v", werr)
		}
	}
}

// publish keeps only the latest reload when the app is slow to drain.
func (w *DocumentWatcher) publish(msg messages.DocumentLoaded) {
	select {
	case w.updates <- msg:
		return
	default:
	}
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- msg:
	default:
	}
}
