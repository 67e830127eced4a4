package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

const (
	jobKindCopy     jobKind = "copy"
	jobKindDownload jobKind = "download"
	jobKindPreview  jobKind = "preview"
)

type jobSnapshot struct {
	ID        string
	Kind      jobKind
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

type jobStartedMsg struct {
	Snapshot jobSnapshot
}

type jobDoneMsg struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs exports off the update loop and keeps the in-flight list the
// status bar shows. IDs and the list are only touched on the update loop;
// runners share one context that Stop cancels.
type jobBus struct {
	seq     int
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	running []jobSnapshot
}

func newJobBus(logger *slog.Logger) *jobBus {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &jobBus{ctx: ctx, cancel: cancel, logger: logger}
}

func (b *jobBus) nextID(kind jobKind) string {
	b.seq++
	return fmt.Sprintf("%s-%d", kind, b.seq)
}

// Start announces a job with jobStartedMsg, then runs it and delivers the
// runner's payload inside jobDoneMsg.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	started := jobSnapshot{ID: b.nextID(kind), Kind: kind, StartedAt: time.Now()}
	ctx, logger := b.ctx, b.logger
	announce := func() tea.Msg {
		return jobStartedMsg{Snapshot: started}
	}
	run := func() tea.Msg {
		payload, err := runner(ctx)
		done := started
		done.Duration = time.Since(started.StartedAt)
		done.Err = err
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "[jobs] "+string(kind)+" finished",
			"id", done.ID, "duration", done.Duration, "err", err)
		return jobDoneMsg{Snapshot: done, Payload: payload}
	}
	return tea.Sequence(announce, run)
}

// track records a started job and reports whether it is the only one in
// flight, which is when the spinner needs a fresh tick.
func (b *jobBus) track(s jobSnapshot) bool {
	b.running = append(b.running, s)
	return len(b.running) == 1
}

func (b *jobBus) finish(id string) {
	for i, s := range b.running {
		if s.ID == id {
			b.running = append(b.running[:i], b.running[i+1:]...)
			return
		}
	}
}

// Running lists in-flight jobs in start order.
func (b *jobBus) Running() []jobSnapshot {
	return b.running
}

// Stop cancels every job still running.
func (b *jobBus) Stop() {
	b.cancel()
}
