package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/tile-filter-mcp/internal/config"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

// createTestImageFile writes a gradient PNG and returns its path
func createTestImageFile(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 4), uint8(y * 4), 128, 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cmd := newRootCmd(cfg)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestTilesCommand(t *testing.T) {
	out, _, err := run(t, "tiles", "--tile", "50", "101", "99")
	if err != nil {
		t.Fatalf("tiles failed: %v", err)
	}
	if !strings.Contains(out, "6 tiles (3 cols x 2 rows)") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "tile 5 (100,50 1x49)") {
		t.Errorf("missing ragged corner tile:\n%s", out)
	}
}

func TestTilesCommand_Invalid(t *testing.T) {
	if _, _, err := run(t, "tiles", "--tile", "0", "10", "10"); err == nil {
		t.Error("expected error for zero tile size")
	}
	if _, _, err := run(t, "tiles", "ten", "10"); err == nil {
		t.Error("expected error for non-numeric width")
	}
}

func TestFiltersCommand(t *testing.T) {
	out, _, err := run(t, "filters")
	if err != nil {
		t.Fatalf("filters failed: %v", err)
	}
	for _, want := range []string{"grayscale", "edge-detection", "pointwise", "context"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	in := createTestImageFile(t, dir, "in.png", 60, 45)
	outPath := filepath.Join(dir, "out.png")
	frames := filepath.Join(dir, "frames")

	out, stderr, err := run(t, "apply", "--filter", "invert", "--tile", "20", "--live", "--frames", frames, in, outPath)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !strings.Contains(out, "Tiles Processed: 9/9") {
		t.Errorf("missing metrics:\n%s", out)
	}
	if strings.Count(stderr, "[") != 9 {
		t.Errorf("expected 9 live lines:\n%s", stderr)
	}

	src, err := pixel.Load(in)
	if err != nil {
		t.Fatalf("load input: %v", err)
	}
	dst, err := pixel.Load(outPath)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if got, want := dst.At(5, 5)[0], 255-src.At(5, 5)[0]; got != want {
		t.Errorf("inverted red: got %d, want %d", got, want)
	}

	entries, err := os.ReadDir(frames)
	if err != nil {
		t.Fatalf("frames dir: %v", err)
	}
	if len(entries) != 9 {
		t.Errorf("got %d frames, want 9", len(entries))
	}
}

func TestApplyCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	in := createTestImageFile(t, dir, "in.png", 10, 10)

	tests := []struct {
		name string
		args []string
	}{
		{"missing filter flag", []string{"apply", in}},
		{"unknown filter", []string{"apply", "--filter", "posterize", in}},
		{"missing input", []string{"apply", "--filter", "blur", filepath.Join(dir, "nope.png")}},
		{"bad tile size", []string{"apply", "--filter", "blur", "--tile", "-1", in}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := createTestImageFile(t, dir, "a.png", 30, 30)
	b := createTestImageFile(t, dir, "b.png", 45, 20)

	out, _, err := run(t, "batch", "--filter", "sepia", "--tile", "16", "--out", outDir, a, b)
	if err != nil {
		t.Fatalf("batch failed: %v\n%s", err, out)
	}
	for _, name := range []string{"000_a_sepia.png", "001_b_sepia.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestBatchCommand_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := createTestImageFile(t, dir, "a.png", 30, 30)

	out, _, err := run(t, "batch", "--filter", "blur", "--out", outDir, a, filepath.Join(dir, "notes.txt"))
	if err == nil {
		t.Fatal("expected error when one image fails")
	}
	if !strings.Contains(out, "FAILED") {
		t.Errorf("failure not reported:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "000_a_blur.png")); err != nil {
		t.Errorf("successful image not written: %v", err)
	}
}
