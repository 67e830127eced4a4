// Package tuitest drives the latexr binary inside a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 100
	defaultHeight  = 40
	defaultTimeout = 10 * time.Second
)

// Step is one scripted interaction: wait Delay, then wait until the screen
// shows Until (when set), then write Input.
type Step struct {
	Delay time.Duration
	Until string
	Input []byte
}

// Config describes the program under test and the script to replay.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
}

func (c *Config) defaults() {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

func (c *Config) allowed(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	for _, code := range c.AllowedExitCodes {
		if exitErr.ExitCode() == code {
			return true
		}
	}
	return false
}

// Run starts cfg.Command in a PTY, plays the steps and returns everything
// the program wrote once it exits.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg.defaults()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	scr := newScreen(ptmx)
	go scr.pump(ptmx)

	start := time.Now()
	for i, step := range cfg.Steps {
		if err := scr.play(ctx, step); err != nil {
			return nil, fmt.Errorf("tuitest: step %d: %w", i, err)
		}
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()
	select {
	case err := <-waitErr:
		if err != nil && !cfg.allowed(err) {
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	_ = ptmx.Close()
	raw := scr.drain()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// terminalQueries are the reports lipgloss and termenv request while
// probing colors, answered as a dark xterm would.
var terminalQueries = []struct{ query, reply string }{
	{"\x1b]11;?\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:0000/0000/0000\x1b\\"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{"\x1b[6n", "\x1b[1;1R"},
}

// queryTail is kept between reads so a query split across chunks still
// matches.
const queryTail = 16

// answerQueries replies to every complete query in pending, in the order
// the program sent them, and returns the unanswered tail.
func answerQueries(pending []byte, reply io.Writer) []byte {
	for {
		at, which := -1, -1
		for i, q := range terminalQueries {
			if idx := bytes.Index(pending, []byte(q.query)); idx >= 0 && (at < 0 || idx < at) {
				at, which = idx, i
			}
		}
		if which < 0 {
			break
		}
		_, _ = io.WriteString(reply, terminalQueries[which].reply)
		pending = pending[at+len(terminalQueries[which].query):]
	}
	if len(pending) > queryTail {
		pending = append([]byte(nil), pending[len(pending)-queryTail:]...)
	}
	return pending
}

// screen accumulates program output so steps can wait on what is drawn.
type screen struct {
	reply   io.Writer
	mu      sync.Mutex
	raw     []byte
	pending []byte
	changed chan struct{}
	done    chan struct{}
}

func newScreen(reply io.Writer) *screen {
	return &screen{
		reply:   reply,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (s *screen) pump(r io.Reader) {
	defer close(s.done)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func (s *screen) write(chunk []byte) {
	s.mu.Lock()
	s.raw = append(s.raw, chunk...)
	s.pending = answerQueries(append(s.pending, chunk...), s.reply)
	s.mu.Unlock()
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *screen) play(ctx context.Context, step Step) error {
	if step.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step.Delay):
		}
	}
	if step.Until != "" {
		if err := s.waitFor(ctx, step.Until); err != nil {
			return err
		}
	}
	if len(step.Input) > 0 {
		if _, err := s.reply.Write(step.Input); err != nil {
			return fmt.Errorf("write input: %w", err)
		}
	}
	return nil
}

func (s *screen) waitFor(ctx context.Context, text string) error {
	for {
		if s.shows(text) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %q: %w", text, ctx.Err())
		case <-s.done:
			if s.shows(text) {
				return nil
			}
			return fmt.Errorf("program exited before showing %q", text)
		case <-s.changed:
		}
	}
}

func (s *screen) shows(text string) bool {
	s.mu.Lock()
	plain := stripANSI(string(s.raw))
	s.mu.Unlock()
	return strings.Contains(plain, text)
}

// drain waits for the reader to stop and returns the full output.
func (s *screen) drain() []byte {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}
