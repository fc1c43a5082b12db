package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage keeps uploads on the local filesystem and serves them back
// through the /videos route.
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SaveFile writes the upload under a fresh <timestamp>-<token>.<ext> key.
// Exactly one attempt is made; any failure removes the partial file.
func (ls *LocalStorage) SaveFile(file io.Reader, info FileInfo, progress ProgressFunc) (string, error) {
	ext := filepath.Ext(info.Filename)
	if ext == "" {
		ext = ".mp4"
	}

	key := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.New().String(), ext)
	fullPath := filepath.Join(ls.basePath, key)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file: %v", ErrUploadFailed, err)
	}
	defer dst.Close()

	reader := file
	if progress != nil {
		progress(0)
		reader = &progressReader{r: file, total: info.Size, progress: progress}
	}

	if _, err := io.Copy(dst, reader); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("%w: failed to save file: %v", ErrUploadFailed, err)
	}

	if progress != nil {
		progress(100)
	}

	return key, nil
}

func (ls *LocalStorage) PublicURL(key string) string {
	return ls.baseURL + "/videos/" + key
}

func (ls *LocalStorage) LocalPath(key string) (string, error) {
	fullPath, err := ls.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); err != nil {
		return "", fmt.Errorf("stored object not accessible: %w", err)
	}
	return fullPath, nil
}

func (ls *LocalStorage) OpenFile(key string) (io.ReadSeekCloser, error) {
	fullPath, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (ls *LocalStorage) DeleteFile(key string) error {
	fullPath, err := ls.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (ls *LocalStorage) resolve(key string) (string, error) {
	cleanKey := filepath.Clean(key)
	if strings.Contains(cleanKey, "..") || filepath.IsAbs(cleanKey) {
		return "", fmt.Errorf("invalid key")
	}
	return filepath.Join(ls.basePath, cleanKey), nil
}

// progressReader emits synthetic ticks from 0 to 90 as bytes move; the
// caller jumps to 100 once the copy is confirmed complete.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read += int64(n)

	percent := 90
	if pr.total > 0 && pr.read < pr.total {
		percent = int(pr.read * 90 / pr.total)
	}
	if percent > pr.last {
		pr.last = percent
		pr.progress(percent)
	}

	return n, err
}
