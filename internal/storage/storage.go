// Package storage manages the object-storage bucket that holds the catalog's data files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"lakeboot/internal/config"
	"lakeboot/internal/domain"
)

// NewClient returns the bucket client selected by storage.type.
func NewClient(ctx context.Context, storageType string, creds config.Credentials) (domain.BucketManager, error) {
	switch storageType {
	case config.StorageS3:
		return NewS3Client(ctx, creds)
	case config.StorageMinIO, "":
		return NewMinioClient(creds)
	default:
		return nil, domain.ErrConfig("storage.type %q is not supported (use minio or s3)", storageType)
	}
}

// EnsureBucket creates bucket when it does not exist and reports whether it
// did. An existing bucket is left untouched.
func EnsureBucket(ctx context.Context, client domain.BucketManager, bucket, region string) (bool, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return false, classify(client.Endpoint(), fmt.Errorf("check bucket %s: %w", bucket, err))
	}
	if exists {
		return false, nil
	}
	if err := client.MakeBucket(ctx, bucket, region); err != nil {
		return false, classify(client.Endpoint(), fmt.Errorf("create bucket %s: %w", bucket, err))
	}
	return true, nil
}

// classify turns transport failures into a StorageUnavailableError and leaves
// service responses (access denied, invalid name, ...) as they are.
func classify(endpoint string, err error) error {
	if err == nil {
		return nil
	}
	if IsUnavailable(err) {
		return domain.ErrStorageUnavailable(endpoint, err)
	}
	return err
}

// IsUnavailable reports whether err means the endpoint could not be reached
// at all: refused or reset connections, DNS failures, timeouts and canceled
// contexts.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var unavailable *domain.StorageUnavailableError
	if errors.As(err, &unavailable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}
