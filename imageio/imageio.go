// Package imageio decodes downloaded image bytes and reads and writes
// image files, picking the codec from content or file extension.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultGrayTolerance is the mean absolute difference below which
// [IsGray] treats a color image as gray.
const DefaultGrayTolerance = 3.0

// ErrUnsupportedFormat is returned by [Write] for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode decodes png, jpeg, gif, bmp, tiff or webp data and reports the
// detected format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	return img, format, nil
}

// DecodeConfig returns the dimensions and color model without decoding
// the pixel data.
func DecodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decoding image config: %w", err)
	}

	return cfg, format, nil
}

// Read decodes the image file at path.
func Read(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return img, nil
}

// Write encodes img to path using the codec matching its extension.
// Data is written to a temp file in the same directory, then renamed
// to path on success.
func Write(path string, img image.Image) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	file, err := os.CreateTemp(filepath.Dir(path), ".imageio-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if !successful {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if err := encode(file, img); err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}

type encodeFn func(io.Writer, image.Image) error

func encoderFor(path string) (encodeFn, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case ".gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, nil)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsGray reports whether img carries no meaningful color: the mean
// absolute difference between each channel and the pixel's luma is at
// most tol. Single-channel images are always gray. Alpha is ignored.
func IsGray(img image.Image, tol float64) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}

	b := img.Bounds()
	if b.Empty() {
		return true
	}

	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			r, g, bl := int(c.R), int(c.G), int(c.B)

			// Same integer luma weights as color.GrayModel.
			luma := (19595*r + 38470*g + 7471*bl + 1<<15) >> 16

			sum += float64(absInt(r-luma) + absInt(g-luma) + absInt(bl-luma))
		}
	}

	mae := sum / float64(3*b.Dx()*b.Dy())

	return mae <= tol
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
