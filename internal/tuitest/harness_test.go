package tuitest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestAnswerQueriesInOrderAcrossReads(t *testing.T) {
	var out bytes.Buffer
	pending := answerQueries([]byte("junk\x1b]11;?\x07\x1b[6"), &out)
	pending = answerQueries(append(pending, []byte("n tail")...), &out)
	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("replies = %q, want %q", out.String(), want)
	}
	if len(pending) > queryTail {
		t.Fatalf("pending grew to %d bytes", len(pending))
	}
}

func TestAnswerQueriesIgnoresPlainOutput(t *testing.T) {
	var out bytes.Buffer
	answerQueries([]byte(strings.Repeat("latexr ", 20)), &out)
	if out.Len() != 0 {
		t.Fatalf("unexpected reply %q", out.String())
	}
}

func TestScreenWaitsForText(t *testing.T) {
	pr, pw := io.Pipe()
	var reply bytes.Buffer
	scr := newScreen(&reply)
	go scr.pump(pr)

	go func() {
		_, _ = pw.Write([]byte("\x1b[2J\x1b[1m Image \x1b[0m"))
		time.Sleep(20 * time.Millisecond)
		_, _ = pw.Write([]byte("Saved"))
		_ = pw.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := scr.waitFor(ctx, "Saved"); err != nil {
		t.Fatalf("waitFor: %v", err)
	}
	if raw := scr.drain(); !bytes.Contains(raw, []byte("Saved")) {
		t.Fatalf("raw output = %q", raw)
	}
}

func TestScreenReportsExitBeforeText(t *testing.T) {
	pr, pw := io.Pipe()
	scr := newScreen(io.Discard)
	go scr.pump(pr)
	_ = pw.Close()

	err := scr.waitFor(context.Background(), "never")
	if err == nil || !strings.Contains(err.Error(), "exited") {
		t.Fatalf("expected exit error, got %v", err)
	}
}

func TestKey(t *testing.T) {
	cases := map[string]string{
		"shift+tab": "\x1b[Z",
		"esc":       "\x1b",
		"q":         "q",
		"?":         "?",
	}
	for name, want := range cases {
		if got := string(Key(name)); got != want {
			t.Fatalf("Key(%q) = %q, want %q", name, got, want)
		}
	}
	if step := Press("enter", "History"); step.Until != "History" || string(step.Input) != "\r" {
		t.Fatalf("Press = %+v", step)
	}
}

func TestConfigAllowedExitCodes(t *testing.T) {
	cfg := Config{AllowedExitCodes: []int{2}}
	if cfg.allowed(io.EOF) {
		t.Fatal("non-exit errors are never allowed")
	}
}
