package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"

	"github.com/cha-revelacao/guest-sync/pkg/config"
	"github.com/nfnt/resize"
)

// Processor downscales and re-encodes images before persistence or upload.
// Output is deterministic for identical input pixels and target dimensions.
type Processor struct {
	maxDimension   int
	galleryQuality int
	profileQuality int
}

func New(cfg *config.Config) *Processor {
	return &Processor{
		maxDimension:   cfg.Media.MaxDimension,
		galleryQuality: cfg.Media.GalleryQuality,
		profileQuality: cfg.Media.ProfileQuality,
	}
}

// ResizeGalleryImage bounds the image to the configured dimension at the
// gallery compression level.
func (p *Processor) ResizeGalleryImage(data []byte) ([]byte, error) {
	return p.resizeImage(data, p.galleryQuality)
}

// ResizeProfileImage uses the gentler compression level for avatars.
func (p *Processor) ResizeProfileImage(data []byte) ([]byte, error) {
	return p.resizeImage(data, p.profileQuality)
}

func (p *Processor) resizeImage(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Thumbnail preserves aspect ratio and never upscales.
	scaled := resize.Thumbnail(uint(p.maxDimension), uint(p.maxDimension), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI embeds media for local-only fallback persistence.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
