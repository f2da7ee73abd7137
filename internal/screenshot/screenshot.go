// Package screenshot manages the directory of captured screenshots.
//
// Capturing pixels is left to an external grabber command (grim,
// screencapture, spectacle, ...) configured by the user; this package owns
// naming, lookup and cleanup of the resulting files.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	shellwords "github.com/caarlos0/go-shellwords"
)

const (
	filePrefix = "screenshot_"
	fileExt    = ".png"
	timeLayout = "20060102_150405"
)

// ErrNoScreenshots is returned by Latest when the directory has no captures.
var ErrNoScreenshots = errors.New("no screenshots found")

// ErrNoGrabber is returned by Capture when no grabber command is configured.
var ErrNoGrabber = errors.New("no screenshot command configured")

// Manager owns a screenshots directory.
type Manager struct {
	dir string
	now func() time.Time
}

// NewManager creates the directory if needed and returns a manager for it.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create screenshots directory: %w", err)
	}
	return &Manager{dir: dir, now: time.Now}, nil
}

// Dir returns the managed directory.
func (m *Manager) Dir() string { return m.dir }

// Save writes data to a timestamped file and returns its path.
func (m *Manager) Save(data []byte) (string, error) {
	path := m.nextPath()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}

// Latest returns the path of the most recent capture.
func (m *Manager) Latest() (string, error) {
	paths, err := m.list()
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", ErrNoScreenshots
	}
	return paths[len(paths)-1], nil
}

// Prune deletes all but the keep most recent captures and returns how many
// files were removed.
func (m *Manager) Prune(keep int) (int, error) {
	paths, err := m.list()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(paths) <= keep {
		return 0, nil
	}
	var removed int
	for _, path := range paths[:len(paths)-keep] {
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("prune screenshots: %w", err)
		}
		removed++
	}
	return removed, nil
}

// Capture runs the grabber command with the target path appended as its
// last argument, then verifies the capture landed there.
func (m *Manager) Capture(ctx context.Context, command string) (string, error) {
	if command == "" {
		return "", ErrNoGrabber
	}
	args, err := shellwords.Parse(command)
	if err != nil {
		return "", fmt.Errorf("parse screenshot command: %w", err)
	}
	if len(args) == 0 {
		return "", ErrNoGrabber
	}

	path := m.nextPath()
	args = append(args, path)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("screenshot command failed: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("screenshot command produced no file: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(path)
		return "", errors.New("screenshot command produced an empty file")
	}
	return path, nil
}

// nextPath returns a fresh timestamped path, avoiding collisions within the
// same second.
func (m *Manager) nextPath() string {
	base := filePrefix + m.now().Format(timeLayout)
	path := filepath.Join(m.dir, base+fileExt)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s_%d%s", base, i, fileExt))
	}
}

// list returns the capture paths sorted oldest first. The timestamped names
// sort chronologically.
func (m *Manager) list() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(m.dir, filePrefix+"*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
