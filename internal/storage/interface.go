package storage

import "context"

// ImageStore is the external picture store. Satisfied by S3Uploader;
// tests plug in an in-memory fake.
type ImageStore interface {
	UploadImage(ctx context.Context, data []byte, uploaderID, originalFilename string) (*UploadResult, error)
	DeleteImage(ctx context.Context, key string) error
}

var _ ImageStore = (*S3Uploader)(nil)
