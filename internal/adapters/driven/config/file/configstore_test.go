package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".caseflow", "config.toml"), store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("gateway.base_url", "http://localhost:8000"))
	require.NoError(t, store.Set("underwrite.top_k", 7))
	require.NoError(t, store.Set("gateway.rate_limit_rps", 2.5))
	require.NoError(t, store.Set("history.enabled", true))

	assert.Equal(t, "http://localhost:8000", store.GetString("gateway.base_url"))
	assert.Equal(t, 7, store.GetInt("underwrite.top_k"))
	assert.InDelta(t, 2.5, store.GetFloat("gateway.rate_limit_rps"), 1e-9)
	assert.True(t, store.GetBool("history.enabled"))

	// Wrong types and missing keys fall back to zero values
	assert.Empty(t, store.GetString("underwrite.top_k"))
	assert.Zero(t, store.GetInt("gateway.base_url"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("gateway.base_url"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("gateway.base_url", "http://uw.example.com"))
	require.NoError(t, store.Set("underwrite.top_k", 3))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[gateway]")
	assert.Contains(t, string(raw), "[underwrite]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "http://uw.example.com", reloaded.GetString("gateway.base_url"))
	assert.Equal(t, 3, reloaded.GetInt("underwrite.top_k"))
}

func TestConfigStore_GetFloat_WidensIntegers(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[gateway]\nrate_limit_rps = 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, store.GetFloat("gateway.rate_limit_rps"), 1e-9)
	assert.Equal(t, 5, store.GetInt("gateway.rate_limit_rps"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("gateway.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetConflictingKeyRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("gateway", "flat"))

	err = store.Set("gateway.base_url", "http://x")

	assert.Error(t, err)
	_, ok := store.Get("gateway.base_url")
	assert.False(t, ok)
	assert.Equal(t, "flat", store.GetString("gateway"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory so the write fails
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Save())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Load_MissingFileResets(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("a.b", "c"))
	require.NoError(t, os.Remove(store.Path()))

	require.NoError(t, store.Load())

	_, ok := store.Get("a.b")
	assert.False(t, ok)
}

func TestFlattenUnflatten(t *testing.T) {
	nested := map[string]any{
		"gateway": map[string]any{"base_url": "u", "timeout_seconds": int64(30)},
		"top":     true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{
		"gateway.base_url":        "u",
		"gateway.timeout_seconds": int64(30),
		"top":                     true,
	}, flat)

	back, err := unflattenMap(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}

func TestConfigStore_WatchReloadsOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("underwrite.model_version", "baseline_v1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// The watcher registers asynchronously; keep rewriting until it notices
	content := []byte("[underwrite]\nmodel_version = \"candidate_v2\"\n")
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-changed:
			// A truncating write can be observed before the new content lands
			if store.GetString("underwrite.model_version") == "candidate_v2" {
				break loop
			}
		case <-ticker.C:
			require.NoError(t, os.WriteFile(store.Path(), content, 0600))
		case <-deadline:
			t.Fatal("watcher did not report a change")
		}
	}

	assert.Equal(t, "candidate_v2", store.GetString("underwrite.model_version"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
