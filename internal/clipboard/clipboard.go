// Package clipboard writes text and images to the system clipboard.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrUnsupported is returned when no image clipboard tool is available.
var ErrUnsupported = errors.New("clipboard: unsupported on this platform")

// Writer is the clipboard surface the exporters need.
type Writer interface {
	WriteText(text string) error
	WriteImage(mime string, data []byte) error
}

// Config wires a System clipboard.
type Config struct {
	// OSC52 is where the terminal escape fallback for text is written.
	// Nil uses os.Stderr.
	OSC52 io.Writer
	// Timeout bounds external clipboard tools.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.OSC52 == nil {
		c.OSC52 = os.Stderr
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// System is the host clipboard.
type System struct {
	cfg Config
	// lookPath and command are swapped in tests.
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
	goos     string
	getenv   func(string) string
}

// NewSystem returns the host clipboard.
func NewSystem(cfg Config) *System {
	cfg.defaults()
	return &System{
		cfg:      cfg,
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
	}
}

// WriteText copies text. When no native clipboard is reachable (for
// example over SSH) it falls back to an OSC 52 escape sequence.
func (s *System) WriteText(text string) error {
	err := clipboard.WriteAll(text)
	if err == nil {
		return nil
	}
	s.cfg.Logger.Debug("clipboard: native text write failed, using osc52", "error", err)
	seq := osc52.New(text)
	if s.getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if s.getenv("STY") != "" {
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(s.cfg.OSC52); err != nil {
		return fmt.Errorf("clipboard: osc52: %w", err)
	}
	return nil
}

// WriteImage copies image bytes tagged with mime using the platform's
// clipboard tool.
func (s *System) WriteImage(mime string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	switch s.goos {
	case "darwin":
		return s.writeImageDarwin(ctx, mime, data)
	case "linux", "freebsd", "openbsd", "netbsd":
		name, args, err := s.unixImageTool(mime)
		if err != nil {
			return err
		}
		return s.run(ctx, data, name, args...)
	default:
		return ErrUnsupported
	}
}

func (s *System) unixImageTool(mime string) (string, []string, error) {
	if s.getenv("WAYLAND_DISPLAY") != "" {
		if _, err := s.lookPath("wl-copy"); err == nil {
			return "wl-copy", []string{"--type", mime}, nil
		}
	}
	if _, err := s.lookPath("xclip"); err == nil {
		return "xclip", []string{"-selection", "clipboard", "-t", mime, "-i"}, nil
	}
	return "", nil, fmt.Errorf("%w: install wl-copy or xclip", ErrUnsupported)
}

func (s *System) writeImageDarwin(ctx context.Context, mime string, data []byte) error {
	class := "PNGf"
	if mime == "image/jpeg" {
		class = "JPEG"
	}
	dir, err := os.MkdirTemp("", "latexr-clip-")
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "image")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	script := fmt.Sprintf(`set the clipboard to (read (POSIX file %q) as «class %s»)`, path, class)
	return s.run(ctx, nil, "osascript", "-e", script)
}

// waitDelay bounds how long Run waits on stdio after the tool exits.
const waitDelay = 500 * time.Millisecond

// run executes a clipboard tool. wl-copy and xclip fork a child that keeps
// serving the selection and inherits the tool's stdio, so stderr goes to a
// file rather than a pipe Run would wait on.
func (s *System) run(ctx context.Context, stdin []byte, name string, args ...string) error {
	stderr, err := os.CreateTemp("", "latexr-clip-err-")
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	defer os.Remove(stderr.Name())
	defer stderr.Close()

	cmd := s.command(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		msg, _ := os.ReadFile(stderr.Name())
		return fmt.Errorf("clipboard: %s: %w: %s", name, err, bytes.TrimSpace(msg))
	}
	return nil
}
