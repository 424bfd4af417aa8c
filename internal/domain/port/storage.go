package port

import (
	"context"
	"io"
)

// MediaStorage moves source videos and narration results between the worker
// and object storage.
type MediaStorage interface {
	DownloadVideo(ctx context.Context, objectKey string, destPath string) error
	UploadResult(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
}
