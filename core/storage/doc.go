// Package storage provides the object storage client used to fetch
// snapshot documents and to publish merged results.
//
// It wraps the MinIO S3 client behind a narrow interface so services
// can be tested against the mock in core/storage/mocks.
package storage
