package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lakeboot/internal/config"
	"lakeboot/internal/domain"
)

var _ domain.BucketManager = (*MinioClient)(nil)

// MinioClient manages buckets through the MinIO SDK.
type MinioClient struct {
	client   *minio.Client
	endpoint string
}

// NewMinioClient builds a MinIO client from resolved credentials.
func NewMinioClient(creds config.Credentials) (*MinioClient, error) {
	lookup := minio.BucketLookupPath
	if creds.URLStyle == "vhost" {
		lookup = minio.BucketLookupDNS
	}
	client, err := minio.New(creds.HostPort(), &minio.Options{
		Creds:        credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure:       creds.UseSSL,
		Region:       creds.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, domain.WrapConfig(err, "storage endpoint %q", creds.Endpoint)
	}
	return &MinioClient{client: client, endpoint: creds.EndpointURL()}, nil
}

// Endpoint returns the URL the client talks to.
func (c *MinioClient) Endpoint() string { return c.endpoint }

// BucketExists reports whether bucket exists.
func (c *MinioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ok, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("minio: bucket exists: %w", err)
	}
	return ok, nil
}

// MakeBucket creates bucket in region. A bucket already owned by the caller counts as success.
func (c *MinioClient) MakeBucket(ctx context.Context, bucket, region string) error {
	err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
		return nil
	}
	return fmt.Errorf("minio: make bucket: %w", err)
}
