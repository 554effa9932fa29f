package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStorage handles saving and deleting files on local disk.
type FileStorage struct {
	BaseDir string // e.g. "./uploads"
	BaseURL string // e.g. "http://localhost:8080/uploads"
}

// NewFileStorage creates a FileStorage rooted at baseDir and served at baseURL.
func NewFileStorage(baseDir, baseURL string) *FileStorage {
	return &FileStorage{BaseDir: baseDir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// SaveFile writes the contents of reader to <BaseDir>/<subDir>/<uniqueFilename>.
// It returns the key (relative path from BaseDir) that is stored on the payment.
// subDir examples: "receipts/USR00ALEX1"
func (fs *FileStorage) SaveFile(ctx context.Context, subDir, originalFilename string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(fs.BaseDir, filepath.FromSlash(subDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	ext := filepath.Ext(originalFilename)
	uniqueName := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	fullPath := filepath.Join(dir, uniqueName)

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	// key is the path relative to BaseDir, using forward slashes
	return filepath.ToSlash(filepath.Join(subDir, uniqueName)), nil
}

// DeleteFile removes the file at <BaseDir>/<key>.
// It is safe to call if the file does not exist.
func (fs *FileStorage) DeleteFile(ctx context.Context, key string) error {
	fullPath := filepath.Join(fs.BaseDir, filepath.FromSlash(key))
	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

func (fs *FileStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return fs.BaseURL + "/" + key, nil
}
