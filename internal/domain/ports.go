package domain

import (
	"context"
)

// SecretManager handles DuckDB secret lifecycle.
// Implemented by engine.Session.
type SecretManager interface {
	CreateS3Secret(ctx context.Context, s S3Secret) error
}

// CatalogAttacher manages DuckLake catalog attachment.
// Implemented by engine.Attacher.
type CatalogAttacher interface {
	Attach(ctx context.Context) (*AttachResult, error)
}

// BucketManager checks for and creates object-storage buckets.
// Implemented by storage.S3Client and storage.MinioClient.
type BucketManager interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket, region string) error
	Endpoint() string
}

// MetastoreQuerier provides read-only access to the DuckLake metastore.
// Implemented by engine.MetastoreReader for every metadata backend.
type MetastoreQuerier interface {
	// ReadDataPath returns the global data_path from ducklake_metadata.
	ReadDataPath(ctx context.Context) (string, error)
	// CountSnapshots returns the number of committed catalog snapshots.
	CountSnapshots(ctx context.Context) (int64, error)
	// ListTables returns the live tables as schema-qualified names.
	ListTables(ctx context.Context) ([]string, error)
}
