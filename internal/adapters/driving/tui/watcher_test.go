package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/messages"
)

func TestDocumentWatcher_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paystub.txt")
	require.NoError(t, os.WriteFile(path, []byte("salary 9000"), 0600))

	msg, ok := NewDocumentWatcher(path).Load().(messages.DocumentLoaded)

	require.True(t, ok)
	assert.NoError(t, msg.Err)
	assert.Equal(t, "salary 9000", msg.Text)
	assert.Equal(t, path, msg.Path)
	assert.False(t, msg.Reload)
}

func TestDocumentWatcher_LoadMissingFile(t *testing.T) {
	msg, ok := NewDocumentWatcher(filepath.Join(t.TempDir(), "missing.txt")).Load().(messages.DocumentLoaded)

	require.True(t, ok)
	assert.Error(t, msg.Err)
	assert.Empty(t, msg.Text)
}

func TestDocumentWatcher_PublishKeepsLatest(t *testing.T) {
	w := NewDocumentWatcher("doc.txt")

	w.publish(messages.DocumentLoaded{Text: "first"})
	w.publish(messages.DocumentLoaded{Text: "second"})

	msg, ok := w.Next()().(messages.DocumentLoaded)
	require.True(t, ok)
	assert.Equal(t, "second", msg.Text)
}

func TestDocumentWatcher_RunReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paystub.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))
	w := NewDocumentWatcher(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watcher registers asynchronously; keep rewriting until a reload arrives
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var got messages.DocumentLoaded
loop:
	for {
		select {
		case got = <-w.updates:
			// A truncating write can be observed before the new content lands
			if got.Text == "v2" {
				break loop
			}
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))
		case <-deadline:
			t.Fatal("watcher did not report a reload")
		}
	}

	assert.True(t, got.Reload)
	assert.Equal(t, "v2", got.Text)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
