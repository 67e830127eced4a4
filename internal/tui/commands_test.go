package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/latexr/internal/export"
	"github.com/csheth/latexr/internal/session"
)

func TestJobKindFor(t *testing.T) {
	cases := map[export.Action]jobKind{
		export.ActionCopy:     jobKindCopy,
		export.ActionDownload: jobKindDownload,
		export.ActionPreview:  jobKindPreview,
	}
	for action, want := range cases {
		if got := jobKindFor(action); got != want {
			t.Fatalf("jobKindFor(%s) = %s, want %s", action, got, want)
		}
	}
}

func TestJobBusIDs(t *testing.T) {
	bus := newJobBus(nil)
	if got := bus.nextID(jobKindCopy); got != "copy-1" {
		t.Fatalf("first id = %q", got)
	}
	if got := bus.nextID(jobKindPreview); got != "preview-2" {
		t.Fatalf("second id = %q", got)
	}
	if cmd := bus.Start(jobKindCopy, func(context.Context) (tea.Msg, error) { return nil, nil }); cmd == nil {
		t.Fatal("Start should return a command")
	}
}

func TestJobBusTracksRunningInStartOrder(t *testing.T) {
	bus := newJobBus(nil)
	if !bus.track(jobSnapshot{ID: "copy-1"}) {
		t.Fatal("first job should ask for a spinner tick")
	}
	if bus.track(jobSnapshot{ID: "preview-2"}) {
		t.Fatal("second job should reuse the running spinner")
	}
	bus.finish("copy-1")
	running := bus.Running()
	if len(running) != 1 || running[0].ID != "preview-2" {
		t.Fatalf("running = %+v", running)
	}
	bus.finish("missing")
	bus.finish("preview-2")
	if len(bus.Running()) != 0 {
		t.Fatalf("running = %+v, want empty", bus.Running())
	}
}

func TestJobBusStopCancelsRunners(t *testing.T) {
	bus := newJobBus(nil)
	if bus.ctx.Err() != nil {
		t.Fatal("fresh bus should not be canceled")
	}
	bus.Stop()
	if !errors.Is(bus.ctx.Err(), context.Canceled) {
		t.Fatalf("runner context err = %v, want canceled", bus.ctx.Err())
	}
}

func TestSpinnerStartsWhenFirstJobIsTracked(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(m, jobStartedMsg{Snapshot: jobSnapshot{ID: "copy-1", Kind: jobKindCopy}})
	if cmd == nil {
		t.Fatal("first started job should start the spinner")
	}
	if _, ok := cmd().(spinner.TickMsg); !ok {
		t.Fatal("first started job should emit a spinner tick")
	}
	if cmd := press(m, jobStartedMsg{Snapshot: jobSnapshot{ID: "copy-2", Kind: jobKindCopy}}); cmd != nil {
		t.Fatal("second started job should not start another spinner")
	}
	if !strings.Contains(m.View(), "copy…") {
		t.Fatal("status bar should list the running job")
	}
	press(m, jobDoneMsg{Snapshot: jobSnapshot{ID: "copy-1"}}, jobDoneMsg{Snapshot: jobSnapshot{ID: "copy-2"}})
	if cmd := press(m, m.spinner.Tick()); cmd != nil {
		t.Fatal("spinner should stop once no job is running")
	}
}

func TestExportJobWithoutExporterFails(t *testing.T) {
	s := session.New(session.Config{})
	s.SetText("x")
	req, ok := s.Begin(export.ActionDownload)
	if !ok {
		t.Fatal("download should be available")
	}
	msg, err := exportJob(s, req)(context.Background())
	if err == nil {
		t.Fatal("expected an error without an exporter")
	}
	if res, ok := msg.(exportResultMsg); !ok || res.result.Err == nil {
		t.Fatalf("payload = %#v", msg)
	}
}
