package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"

	"storybook-media-api/internal/config"
	"storybook-media-api/internal/workflow/port"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestNormalize_DownscalesKeepingAspect(t *testing.T) {
	n := NewNormalizer(&config.ImagingConfig{MaxWidth: 100, MaxHeight: 100, Format: "png"})

	out, ct, err := n.Normalize(encodePNG(t, 200, 100))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ct != "image/png" {
		t.Fatalf("content type: want=image/png got=%s", ct)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("size: want=100x50 got=%dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalize_SmallImageKeepsSize(t *testing.T) {
	n := NewNormalizer(&config.ImagingConfig{MaxWidth: 1024, MaxHeight: 1024, Format: "webp", Quality: 80})

	out, ct, err := n.Normalize(encodePNG(t, 32, 16))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ct != "image/webp" {
		t.Fatalf("content type: want=image/webp got=%s", ct)
	}
	img, err := webp.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("size: want=32x16 got=%dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	n := NewNormalizer(&config.ImagingConfig{Format: "png"})
	if _, _, err := n.Normalize([]byte("plain text")); err == nil {
		t.Fatalf("want error for non-image content")
	}
}

type stubGenerator struct {
	asset *port.GeneratedAsset
}

func (s *stubGenerator) GenerateImage(context.Context, string, string) (*port.GeneratedAsset, error) {
	return s.asset, nil
}

func (s *stubGenerator) GenerateAudio(context.Context, string, string, string) (*port.GeneratedAsset, error) {
	return s.asset, nil
}

func TestGenerator_KeepsOriginalWhenUndecodable(t *testing.T) {
	raw := &port.GeneratedAsset{Content: []byte("not an image"), ContentType: "image/png"}
	g := WrapGenerator(&stubGenerator{asset: raw}, NewNormalizer(&config.ImagingConfig{Format: "png"}))

	out, err := g.GenerateImage(context.Background(), "p", "1024x1024")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if out != raw {
		t.Fatalf("want original asset passed through")
	}
}
