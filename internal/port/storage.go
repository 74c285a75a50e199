package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
// A Body that is also an io.Seeker is rewound before each retry.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
	// PublicURL is the stable address of an object, used for logos and product images.
	PublicURL(bucket, key string) string
}
