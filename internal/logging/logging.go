package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skobkin/maptip/internal/config"
)

// Manager owns app logger configuration and the optional log file.
type Manager struct {
	mu     sync.RWMutex
	level  *slog.LevelVar
	out    io.Writer
	logger *slog.Logger
	file   *os.File
}

func NewManager() *Manager {
	return newManager(os.Stdout)
}

func newManager(out io.Writer) *Manager {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	return &Manager{
		level:  level,
		out:    out,
		logger: slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})),
	}
}

// Configure applies cfg and installs the resulting logger as slog default.
// When LogToFile is set, records go to both the console and filePath.
func (m *Manager) Configure(cfg config.LoggingConfig, filePath string) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file != nil {
		_ = m.file.Close()
		m.file = nil
	}

	writer := m.out
	if cfg.LogToFile {
		cleanPath := filepath.Clean(filePath)
		// #nosec G304 -- path is resolved by app runtime and points to user config dir.
		file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		m.file = file
		writer = newFanoutWriter(m.out, file)
	}

	m.level.Set(level)
	m.logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: m.level}))
	slog.SetDefault(m.logger)

	return nil
}

// SetLevel changes the level of every logger handed out by the manager.
func (m *Manager) SetLevel(raw string) error {
	level, err := ParseLevel(raw)
	if err != nil {
		return err
	}
	m.level.Set(level)

	return nil
}

func (m *Manager) Logger(component string) *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logger.With("component", component)
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	if err := m.file.Close(); err != nil {
		return err
	}
	m.file = nil

	return nil
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %q", raw)
	}
}

// fanoutWriter keeps writing to the remaining destinations when one of them
// fails, so a closed console does not silence the log file.
type fanoutWriter struct {
	writers []io.Writer
}

func newFanoutWriter(writers ...io.Writer) io.Writer {
	filtered := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			filtered = append(filtered, w)
		}
	}

	return &fanoutWriter{writers: filtered}
}

func (w *fanoutWriter) Write(p []byte) (int, error) {
	var firstErr error
	delivered := false
	for _, dst := range w.writers {
		n, err := dst.Write(p)
		switch {
		case err != nil:
			if firstErr == nil {
				firstErr = err
			}
		case n != len(p):
			if firstErr == nil {
				firstErr = io.ErrShortWrite
			}
		default:
			delivered = true
		}
	}
	if !delivered && firstErr != nil {
		return 0, firstErr
	}

	return len(p), nil
}
