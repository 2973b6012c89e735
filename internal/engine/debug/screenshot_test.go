package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/quadgl/internal/engine/gpu/gputest"
)

func TestCaptureFlipsRows(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "frame")

	// Bottom row red, top row blue, as glReadPixels returns them.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if r, _, b, _ := img.At(0, 0).RGBA(); b>>8 != 255 || r != 0 {
		t.Errorf("expected blue at top, got r=%d b=%d", r>>8, b>>8)
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r>>8 != 255 || b != 0 {
		t.Errorf("expected red at bottom, got r=%d b=%d", r>>8, b>>8)
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "frame")
	if _, err := sc.CaptureFromPixels(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestCaptureFromDevice(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(filepath.Join(dir, "shots"), "quad")
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	dev := gputest.New()
	dev.ClearColor(0.2, 0.3, 0.3, 1)

	path, err := sc.Capture(dev, 4, 3)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !strings.HasSuffix(path, "quad_2024-05-01_12-00-00.000.png") {
		t.Errorf("unexpected filename %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("capture not written: %v", err)
	}

	if _, err := sc.Capture(dev, 0, 3); err == nil {
		t.Error("expected error for empty capture")
	}
}
