package storage

import (
	"errors"
	"io"
)

// ErrUploadFailed wraps the provider's error message verbatim. One save
// call is at most one upload attempt; retries happen above this layer.
var ErrUploadFailed = errors.New("upload failed")

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// ProgressFunc receives coarse percentage ticks during a save. The signal
// is a UX approximation: it climbs to 90 while bytes move and jumps to 100
// on confirmed completion.
type ProgressFunc func(percent int)

// Storage stores raw performance videos under collision-resistant keys.
type Storage interface {
	// SaveFile streams the file into the store and returns its key.
	// progress may be nil.
	SaveFile(file io.Reader, info FileInfo, progress ProgressFunc) (string, error)
	// PublicURL resolves a non-empty serving URL for a stored key.
	PublicURL(key string) string
	// LocalPath materializes a stored object as a local file path for
	// ffmpeg to read.
	LocalPath(key string) (string, error)
	OpenFile(key string) (io.ReadSeekCloser, error)
	DeleteFile(key string) error
}
