package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"

	"scene-merge/core/storage"
)

// Loader fetches snapshot and comparison documents from object storage.
type Loader struct {
	client storage.Client
	bucket string
}

// NewLoader creates a loader reading from the given bucket.
func NewLoader(client storage.Client, bucket string) *Loader {
	return &Loader{client: client, bucket: bucket}
}

// Snapshot fetches and decodes a snapshot document by object name.
func (l *Loader) Snapshot(ctx context.Context, objectName string) (*Document, error) {
	obj, err := l.client.GetObject(ctx, l.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot %q: %w", objectName, err)
	}
	defer obj.Close()

	doc, err := Decode(obj)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", objectName, err)
	}
	return doc, nil
}

// Comparison fetches and decodes a comparison document by object name.
func (l *Loader) Comparison(ctx context.Context, objectName string) (*Comparison, error) {
	obj, err := l.client.GetObject(ctx, l.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comparison %q: %w", objectName, err)
	}
	defer obj.Close()

	doc, err := DecodeComparison(obj)
	if err != nil {
		return nil, fmt.Errorf("comparison %q: %w", objectName, err)
	}
	return doc, nil
}

// Put encodes a snapshot document and uploads it under the object name.
func (l *Loader) Put(ctx context.Context, objectName string, doc *Document) error {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return err
	}
	_, err := l.client.PutObject(ctx, l.bucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %q: %w", objectName, err)
	}
	return nil
}

// List returns the object names of all documents in the bucket.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	exists, err := l.client.BucketExists(ctx, l.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", l.bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", l.bucket)
	}

	var names []string
	for obj := range l.client.ListObjects(ctx, l.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %q: %w", l.bucket, obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// ReadFile decodes a snapshot document from disk.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// ReadComparisonFile decodes a comparison document from disk.
func ReadComparisonFile(path string) (*Comparison, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open comparison file: %w", err)
	}
	defer f.Close()
	return DecodeComparison(f)
}

// WriteFile encodes a snapshot document to disk.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()
	return doc.Encode(f)
}
