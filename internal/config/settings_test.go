package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguaclip/internal/domain"
)

func TestSettingsStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewSettingsStore(filepath.Join(t.TempDir(), "conf", "settings.yaml"), nil)

	got, err := store.Load(domain.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	want := domain.Settings{
		AutoInsert:       false,
		MonitorClipboard: true,
		AlwaysOnTop:      false,
		AutoPlayAudio:    true,
		SourceLanguage:   domain.AutoLanguage,
		TargetLanguage:   "ja",
	}
	require.NoError(t, store.Save(want))

	got, err = store.Load(domain.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsStoreRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewSettingsStore(path, nil)

	bad := domain.DefaultSettings()
	bad.TargetLanguage = domain.AutoLanguage
	require.Error(t, store.Save(bad))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(path, []byte("target_language: klingon\n"), 0o600))
	_, err = store.Load(domain.DefaultSettings())
	require.Error(t, err)
}

func TestSettingsStoreFillsMissingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_play_audio: true\ntarget_language: PT-br\n"), 0o600))

	got, err := NewSettingsStore(path, nil).Load(domain.DefaultSettings())
	require.NoError(t, err)

	want := domain.DefaultSettings()
	want.AutoPlayAudio = true
	want.TargetLanguage = "pt"
	assert.Equal(t, want, got)
}

func TestSettingsStoreWatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewSettingsStore(path, nil)

	var (
		mu      sync.Mutex
		changes []domain.Settings
	)
	require.NoError(t, store.Watch(domain.DefaultSettings(), func(s domain.Settings) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, s)
	}))
	_, err := os.Stat(path)
	require.NoError(t, err, "watch should create the settings file")

	updated := domain.DefaultSettings()
	updated.TargetLanguage = "it"
	require.NoError(t, store.Save(updated))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range changes {
			if s.TargetLanguage == "it" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSettingsStorePersistSkipsUnchanged(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source_language: French\n"), 0o600))
	store := NewSettingsStore(path, nil)

	loaded, err := store.Load(domain.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "fr", loaded.SourceLanguage)

	written, err := store.Persist(loaded)
	require.NoError(t, err)
	assert.False(t, written, "settings equal to the file must not be rewritten")

	changed := loaded
	changed.AlwaysOnTop = false
	written, err = store.Persist(changed)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = store.Persist(changed)
	require.NoError(t, err)
	assert.False(t, written)

	got, err := NewSettingsStore(path, nil).Load(domain.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, changed, got)
}
