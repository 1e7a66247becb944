package layout

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	DefaultOverlayWidth  = 1920
	DefaultOverlayHeight = 1080

	minFraction      = 0.05
	fallbackFraction = 0.2
)

// ProbeDimensions reads only the image header from r.
func ProbeDimensions(r io.Reader) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

func ProbeFile(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	width, height, _, err = ProbeDimensions(f)
	return width, height, err
}

// WidthFraction converts a pixel width into a fraction of the overlay,
// clamped to [0.05, 1].
func WidthFraction(widthPx, overlayWidthPx int) float64 {
	if overlayWidthPx <= 0 {
		return fallbackFraction
	}
	return clampFraction(float64(widthPx) / float64(overlayWidthPx))
}

// HeightForWidth keeps the image aspect ratio when it is drawn at
// widthFraction of the overlay.
func HeightForWidth(widthPx, heightPx int, widthFraction float64, overlayWidthPx, overlayHeightPx int) float64 {
	if widthPx <= 0 || overlayWidthPx <= 0 || overlayHeightPx <= 0 {
		return fallbackFraction
	}
	drawnW := widthFraction * float64(overlayWidthPx)
	drawnH := drawnW * float64(heightPx) / float64(widthPx)
	return clampFraction(drawnH / float64(overlayHeightPx))
}

func AspectRatio(widthPx, heightPx int) float64 {
	if heightPx <= 0 {
		return 1
	}
	return float64(widthPx) / float64(heightPx)
}

func clampFraction(f float64) float64 {
	if f < minFraction {
		return minFraction
	}
	if f > 1 {
		return 1
	}
	return f
}
