package main

import (
	"context"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/latexr/internal/tuitest"
)

func TestHelpModalShowsShortcuts(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	env := glyphEnv(t)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--config", filepath.Join(t.TempDir(), "none.yaml")},
		Dir:     cmdDir,
		Env:     env,
		Width:   100,
		Height:  48,
		Steps: []tuitest.Step{
			tuitest.Press("?", "Save image"),
			tuitest.Press("q", "Shortcuts"),
		},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	for _, want := range []string{"Image Format", "Shortcuts", "Render errors"} {
		if !rec.Contains(want) {
			frame, _ := rec.FinalFrame()
			t.Fatalf("no frame contains %q; final frame:\n%s", want, frame.Plain)
		}
	}
}

func TestShareLinkSeedsInput(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--config", filepath.Join(t.TempDir(), "none.yaml"),
			"https://latexr.web.app/?f=a%5E2%2Bb%5E2"},
		Dir:   cmdDir,
		Env:   glyphEnv(t),
		Width: 100,
		Steps: []tuitest.Step{
			tuitest.Press("q", "a^2+b^2"),
		},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if !rec.Contains("a^2+b^2") {
		frame, _ := rec.FinalFrame()
		t.Fatalf("shared formula missing; final frame:\n%s", frame.Plain)
	}
}

func TestSaveFromTUIWritesFile(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	env := glyphEnv(t)
	outDir := strings.TrimPrefix(env[2], "LATEXR_OUTPUT_DIR=")

	steps := []tuitest.Step{tuitest.Press("tab", "Save image")}
	steps = append(steps, tuitest.Type("x^2", 20*time.Millisecond)...)
	steps = append(steps,
		tuitest.Step{Delay: 200 * time.Millisecond, Input: tuitest.Key("esc")},
		tuitest.Step{Delay: 300 * time.Millisecond, Input: tuitest.Key("s")},
		tuitest.Press("q", "Image Saved"),
	)
	_, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--config", filepath.Join(t.TempDir(), "none.yaml")},
		Dir:     cmdDir,
		Env:     env,
		Steps:   steps,
		Timeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "x^2.png")); err != nil {
		t.Fatalf("saved image missing: %v", err)
	}
}

func TestRenderCommandWritesPNG(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	out := filepath.Join(t.TempDir(), "half.png")

	cmd := exec.Command(binary, "render", "--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--text", `\frac{1}{2}`, "--out", out, "--scale", "2")
	cmd.Env = append(os.Environ(), glyphEnv(t)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("render: %v\n%s", err, output)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if !strings.Contains(string(output), out) {
		t.Fatalf("output should name the file, got %q", output)
	}
}

func TestLinkCommand(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	cmd := exec.Command(binary, "link", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--text", "a&b")
	cmd.Env = append(os.Environ(), glyphEnv(t)...)
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if got := strings.TrimSpace(string(output)); got != "https://latexr.web.app/?f=a%26b" {
		t.Fatalf("link = %q", got)
	}
}

func glyphEnv(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"LATEXR_RENDERER=glyph",
		"LATEXR_PREFS_PATH=" + filepath.Join(dir, "prefs.json"),
		"LATEXR_OUTPUT_DIR=" + filepath.Join(dir, "out"),
		"LATEXR_LOG__PATH=" + filepath.Join(dir, "latexr.log"),
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "latexr-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
