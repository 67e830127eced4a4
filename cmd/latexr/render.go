package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/csheth/latexr/internal/capture"
	"github.com/csheth/latexr/internal/options"
	"github.com/csheth/latexr/internal/prefs"
)

var (
	renderText       string
	renderOut        string
	renderMath       bool
	renderScale      float64
	renderBackground string
	renderFormat     string
	renderQuality    int
	renderCopy       bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a formula to an image without the editor",
	Long: `Render captures one formula and saves it. Without --out the file is named
after the formula and written to output_dir. With --copy the PNG goes to the
clipboard instead.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderText, "text", "t", "", "LaTeX markup to render")
	f.StringVarP(&renderOut, "out", "o", "", "output file path")
	f.BoolVar(&renderMath, "math", true, "wrap the markup in math delimiters")
	f.Float64Var(&renderScale, "scale", 0, "magnification (default: the saved preference)")
	f.StringVar(&renderBackground, "background", options.DefaultBackground, "background color as #rgb[a] or #rrggbb[aa]")
	f.StringVarP(&renderFormat, "format", "f", "png", "image format: png, jpeg or webp")
	f.IntVar(&renderQuality, "quality", options.DefaultQuality, "quality for jpeg and webp, 0-100")
	f.BoolVar(&renderCopy, "copy", false, "copy the image to the clipboard instead of saving it")
	_ = renderCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := renderOptions(cmd, a.prefs)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if renderCopy {
		blob, err := a.exporter.Copy(ctx, opts)
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %dx%d %s\n", blob.Width, blob.Height, blob.Type.Label())
		return nil
	}

	if renderOut == "" {
		blob, path, err := a.exporter.Download(ctx, opts)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d)\n", path, blob.Width, blob.Height)
		return nil
	}

	blob, err := a.exporter.Pipeline().Capture(ctx, capture.SourceFrom(opts), opts)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if dir := filepath.Dir(renderOut); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(renderOut, blob.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", renderOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d)\n", renderOut, blob.Width, blob.Height)
	return nil
}

func renderOptions(cmd *cobra.Command, store *prefs.Store) (options.Options, error) {
	opts := options.Default()
	opts.Text = renderText
	opts.MathMode = renderMath
	if opts.TextEmpty() {
		return opts, fmt.Errorf("--text must not be blank")
	}
	t, err := options.ParseImageType(renderFormat)
	if err != nil {
		return opts, err
	}
	opts.Type = t
	if cmd.Flags().Changed("scale") {
		opts.Scale = options.ClampScale(renderScale)
	} else {
		opts.Scale = prefs.LoadScale(store)
	}
	opts.SetBackground(renderBackground)
	opts.SetQualityInput(strconv.Itoa(renderQuality))
	return opts, nil
}
