package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/latexr/internal/export"
	"github.com/csheth/latexr/internal/notify"
	"github.com/csheth/latexr/internal/session"
)

type exportResultMsg struct {
	result export.Result
}

type bannerExpiredMsg struct {
	token notify.Token
}

func jobKindFor(action export.Action) jobKind {
	switch action {
	case export.ActionCopy:
		return jobKindCopy
	case export.ActionDownload:
		return jobKindDownload
	default:
		return jobKindPreview
	}
}

// exportJob runs req off the update loop. The session is only read through
// Run, which touches no mutable state.
func exportJob(s *session.Session, req session.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		res := s.Run(ctx, req)
		return exportResultMsg{result: res}, res.Err
	}
}

func bannerTimerCmd(token notify.Token, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return bannerExpiredMsg{token: token}
	})
}
