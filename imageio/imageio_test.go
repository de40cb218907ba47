package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newRGBA(w, h int, fill func(x, y int) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	src := newRGBA(4, 3, func(x, y int) color.NRGBA { return color.NRGBA{R: 200, A: 255} })
	data := encodePNG(t, src)

	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "png" {
		t.Errorf("exp format png, got %q", format)
	}
	if diff := cmp.Diff(src.Bounds(), img.Bounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}

	cfg, format, err := DecodeConfig(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "png" || cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("unexpected config %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); !errors.Is(err, image.ErrFormat) {
		t.Errorf("exp image.ErrFormat, got: %v", err)
	}
	if _, _, err := DecodeConfig(nil); err == nil {
		t.Error("exp error for empty data")
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	src := newRGBA(8, 8, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), B: 90, A: 255}
	})

	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".TIFF"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)

			if err := Write(path, src); err != nil {
				t.Fatalf("write: %v", err)
			}

			got, err := Read(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if diff := cmp.Diff(src.Bounds(), got.Bounds()); diff != "" {
				t.Errorf("bounds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xyz")

	err := Write(path, image.NewGray(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("exp ErrUnsupportedFormat, got: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("exp no files left behind, got %d", len(entries))
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("exp os.ErrNotExist, got: %v", err)
	}
}

func TestIsGray(t *testing.T) {
	testCases := []struct {
		name string
		img  image.Image
		exp  bool
	}{
		{
			name: "single channel",
			img:  image.NewGray(image.Rect(0, 0, 4, 4)),
			exp:  true,
		},
		{
			name: "equal channels",
			img: newRGBA(4, 4, func(x, y int) color.NRGBA {
				v := uint8(x * 60)
				return color.NRGBA{R: v, G: v, B: v, A: 255}
			}),
			exp: true,
		},
		{
			name: "slight tint within tolerance",
			img: newRGBA(4, 4, func(x, y int) color.NRGBA {
				return color.NRGBA{R: 101, G: 100, B: 99, A: 255}
			}),
			exp: true,
		},
		{
			name: "saturated red",
			img: newRGBA(4, 4, func(x, y int) color.NRGBA {
				return color.NRGBA{R: 255, A: 255}
			}),
			exp: false,
		},
		{
			name: "empty",
			img:  image.NewNRGBA(image.Rectangle{}),
			exp:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsGray(tc.img, DefaultGrayTolerance); got != tc.exp {
				t.Errorf("exp %v, got %v", tc.exp, got)
			}
		})
	}
}
