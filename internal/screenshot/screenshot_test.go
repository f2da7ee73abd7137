package screenshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testManager(tb testing.TB) *Manager {
	m, err := NewManager(tb.TempDir())
	require.NoError(tb, err)
	return m
}

func TestSaveAndLatest(t *testing.T) {
	m := testManager(t)

	_, err := m.Latest()
	require.ErrorIs(t, err, ErrNoScreenshots)

	first, err := m.Save([]byte("one"))
	require.NoError(t, err)
	require.FileExists(t, first)

	// same second: gets a collision suffix
	second, err := m.Save([]byte("two"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	latest, err := m.Latest()
	require.NoError(t, err)
	require.Equal(t, second, latest)
}

func TestLatestOrdersByTimestamp(t *testing.T) {
	m := testManager(t)

	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return ts }
	_, err := m.Save([]byte("old"))
	require.NoError(t, err)

	m.now = func() time.Time { return ts.Add(time.Minute) }
	newest, err := m.Save([]byte("new"))
	require.NoError(t, err)

	latest, err := m.Latest()
	require.NoError(t, err)
	require.Equal(t, newest, latest)
}

func TestPrune(t *testing.T) {
	m := testManager(t)

	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var paths []string
	for i := 0; i < 5; i++ {
		tick := ts.Add(time.Duration(i) * time.Second)
		m.now = func() time.Time { return tick }
		p, err := m.Save([]byte("x"))
		require.NoError(t, err)
		paths = append(paths, p)
	}

	removed, err := m.Prune(2)
	require.NoError(t, err)
	require.Equal(t, 3, removed)

	for _, p := range paths[:3] {
		require.NoFileExists(t, p)
	}
	for _, p := range paths[3:] {
		require.FileExists(t, p)
	}

	removed, err = m.Prune(2)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestCapture(t *testing.T) {
	t.Run("no command", func(t *testing.T) {
		m := testManager(t)
		_, err := m.Capture(context.Background(), "")
		require.ErrorIs(t, err, ErrNoGrabber)
	})

	t.Run("grabber writes the file", func(t *testing.T) {
		m := testManager(t)
		src := filepath.Join(t.TempDir(), "fake.png")
		require.NoError(t, os.WriteFile(src, []byte("pixels"), 0o600))

		path, err := m.Capture(context.Background(), "cp "+src)
		require.NoError(t, err)
		require.FileExists(t, path)

		latest, err := m.Latest()
		require.NoError(t, err)
		require.Equal(t, path, latest)
	})

	t.Run("grabber fails", func(t *testing.T) {
		m := testManager(t)
		_, err := m.Capture(context.Background(), "false --")
		require.Error(t, err)
	})

	t.Run("grabber writes nothing", func(t *testing.T) {
		m := testManager(t)
		_, err := m.Capture(context.Background(), "true --ignore")
		require.Error(t, err)
	})
}
