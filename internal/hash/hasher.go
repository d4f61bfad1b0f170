// Package hash computes perceptual hashes for images.
package hash

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"

	"simindex/internal/models"
)

// Hasher computes perceptual hashes for images
type Hasher struct{}

// NewHasher creates a new Hasher
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile computes the perceptual hash and basic metadata for an image file.
func (h *Hasher) HashFile(path string) (*models.ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	phash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	bounds := img.Bounds()
	return &models.ImageInfo{
		Path:     path,
		Hash:     phash.GetHash(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   strings.ToLower(format),
		FileSize: stat.Size(),
		ModTime:  stat.ModTime(),
	}, nil
}

// supportedExtensions lists the image formats we can decode
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsSupportedImage reports whether the file extension is a decodable
// image format.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return supportedExtensions[ext]
}
