package models

import "time"

// Dictionary describes a stored word list.
type Dictionary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Source     string    `json:"source,omitempty"`
	WordCount  int       `json:"word_count"`
	ImportedAt time.Time `json:"imported_at"`
}

// ImageInfo holds metadata and the perceptual hash for an image.
type ImageInfo struct {
	Path     string    `json:"path"`
	Hash     uint64    `json:"hash"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Format   string    `json:"format"`
	FileSize int64     `json:"file_size"`
	ModTime  time.Time `json:"mod_time"`
}

// DuplicateGroup represents a group of near-duplicate images.
type DuplicateGroup struct {
	ID     int          `json:"id"`
	Images []*ImageInfo `json:"images"`
}
