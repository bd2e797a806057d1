package storage

import (
	"context"
	"io"
)

// BlobStore abstracts the external image host. Reusing a key overwrites the
// previously stored blob, which is how avatar replacement works.
type BlobStore interface {
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Folder      string
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}
