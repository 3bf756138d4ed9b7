package server

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3BlobStore implements the BlobStore interface using AWS S3
type S3BlobStore struct {
	uploader   *s3manager.Uploader
	bucketName string
}

// NewS3BlobStore creates a new S3 blob store
func NewS3BlobStore(region, bucketName string) (*S3BlobStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3BlobStore{
		uploader:   s3manager.NewUploader(sess),
		bucketName: bucketName,
	}, nil
}

// Put uploads a blob to S3 and returns its object URL. Objects are written
// with a public-read ACL: presigned GET URLs cap out at seven days, which is
// too short to serve as durable file links in instruction documents.
func (s *S3BlobStore) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	output, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %v", err)
	}

	return output.Location, nil
}
