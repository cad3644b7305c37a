// Package filestorage keeps uploaded profile files on the local disk.
package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Storage saves uploads and hands back a reference the client can fetch them by
type Storage interface {
	// Save writes r under subPath with a generated name ending in ext
	Save(r io.Reader, subPath, ext string) (string, error)
	// Delete removes the file behind a reference returned by Save
	Delete(ref string) error
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory on disk
	baseURL  string // prefix for returned references
	log      zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance, making sure basePath exists.
// References are baseURL/subPath/name, or uploads/subPath/name when baseURL is empty.
func NewLocalStorage(basePath, baseURL string, log zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		log.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	log.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}, nil
}

// BasePath returns the directory files are written to
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save writes the content to a uniquely named file
func (ls *LocalStorage) Save(r io.Reader, subPath, ext string) (string, error) {
	subPath = filepath.Clean("/" + subPath)[1:]

	dir := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ls.log.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + ext
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		ls.log.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		ls.log.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}

	ref := ls.reference(subPath, name)
	ls.log.Debug().Str("saved_as", name).Str("ref", ref).Msg("File saved")
	return ref, nil
}

func (ls *LocalStorage) reference(subPath, name string) string {
	prefix := ls.baseURL
	if prefix == "" {
		prefix = "uploads"
	}
	if subPath == "" {
		return prefix + "/" + name
	}
	return prefix + "/" + filepath.ToSlash(subPath) + "/" + name
}

// FullPath maps a reference back to its location on disk, or "" if it is not ours
func (ls *LocalStorage) FullPath(ref string) string {
	prefix := ls.baseURL
	if prefix == "" {
		prefix = "uploads"
	}
	rel, ok := strings.CutPrefix(ref, prefix+"/")
	if !ok || rel == "" {
		return ""
	}
	rel = filepath.Clean("/" + filepath.FromSlash(rel))[1:]
	if rel == "" {
		return ""
	}
	return filepath.Join(ls.basePath, rel)
}

// Delete removes a stored file; missing files are not an error
func (ls *LocalStorage) Delete(ref string) error {
	path := ls.FullPath(ref)
	if path == "" {
		return fmt.Errorf("reference %q is outside storage", ref)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
