// Package upload validates and stores post images.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage means the payload's content is not a recognized image format,
// whatever its filename or declared content type claims.
var ErrNotImage = errors.New("file is not a valid image")

const maxImageSize = 10 << 20 // 10 MiB

// Store saves validated images under a media directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DetectImage sniffs r and returns the detected extension (".png", ".gif",
// ...) or ErrNotImage. Detection is by magic bytes, never by filename.
func DetectImage(r io.Reader) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to sniff content: %w", err)
	}
	if !mtype.Is("image/png") && !mtype.Is("image/jpeg") &&
		!mtype.Is("image/gif") && !mtype.Is("image/webp") {
		return "", ErrNotImage
	}
	return mtype.Extension(), nil
}

// Save validates the uploaded file and writes it to the media dir under a
// random name, returning the stored filename.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxImageSize {
		return "", ErrNotImage
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	ext, err := DetectImage(f)
	if err != nil {
		return "", err
	}

	// DetectImage consumed a sniff window; rewind before copying.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return name, nil
}
