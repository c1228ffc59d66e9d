package strata

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Screenshot queues a labeled capture of the default framebuffer. Run writes
// the queued captures as PNG files to RunConfig.ScreenshotDir after the frame
// is rendered. Safe to call from an UpdateFunc.
func (d *EbitenDevice) Screenshot(label string) {
	d.shots = append(d.shots, label)
}

// ReadPixels returns the contents of colour attachment 0 of fb, or of the
// screen for DefaultFramebuffer, with straight alpha. It may only be called
// while the game loop is running.
func (d *EbitenDevice) ReadPixels(fb FramebufferID) (*image.NRGBA, error) {
	img := d.screen
	if fb != DefaultFramebuffer {
		f, ok := d.framebuffers[fb]
		if !ok || len(f.colors) == 0 {
			return nil, fmt.Errorf("read pixels of framebuffer %d: %w", fb, ErrNilResource)
		}
		img = d.textures[f.colors[0]]
	}
	if img == nil {
		return nil, fmt.Errorf("read pixels: no image bound: %w", ErrNilResource)
	}
	b := img.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	img.ReadPixels(pixels)
	return unpremultiply(pixels, b.Dx(), b.Dy()), nil
}

// flushScreenshots writes every queued capture to dir.
func (d *EbitenDevice) flushScreenshots(dir string) {
	if len(d.shots) == 0 {
		return
	}
	defer func() { d.shots = d.shots[:0] }()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.log.Error("screenshot: mkdir", zap.String("dir", dir), zap.Error(err))
		return
	}
	img, err := d.ReadPixels(DefaultFramebuffer)
	if err != nil {
		d.log.Error("screenshot", zap.Error(err))
		return
	}
	stamp := time.Now().Format("20060102_150405")
	for _, label := range d.shots {
		path := filepath.Join(dir, stamp+"_"+sanitizeLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			d.log.Error("screenshot", zap.Error(err))
			continue
		}
		d.log.Info("screenshot saved", zap.String("path", path))
	}
}

// unpremultiply converts premultiplied RGBA bytes to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
