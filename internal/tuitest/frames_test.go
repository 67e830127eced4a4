package tuitest

import (
	"testing"
	"time"
)

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst  \r\n\x1b[1mbold\x1b[0m\n\n\x1b[2J\x1b[Hsecond\x1b]0;title\x07")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Plain != "first\nbold" {
		t.Fatalf("frame 0 = %q", frames[0].Plain)
	}
	if frames[1].Plain != "second" {
		t.Fatalf("frame 1 = %q", frames[1].Plain)
	}
}

func TestRecordingSearch(t *testing.T) {
	rec := &Recording{Frames: parseFrames([]byte("\x1b[2Jalpha\x1b[2Jbeta\x1b[2Jalphabet"))}
	if !rec.Contains("beta") || rec.Contains("gamma") {
		t.Fatal("Contains should scan every frame")
	}
	frame, ok := rec.Last("alpha")
	if !ok || frame.Plain != "alphabet" {
		t.Fatalf("Last = %q, %v", frame.Plain, ok)
	}
	var nilRec *Recording
	if nilRec.Contains("x") {
		t.Fatal("nil recording contains nothing")
	}
}

func TestType(t *testing.T) {
	steps := Type("ab", time.Millisecond)
	if len(steps) != 2 || string(steps[1].Input) != "b" || steps[0].Delay != time.Millisecond {
		t.Fatalf("steps = %+v", steps)
	}
}
