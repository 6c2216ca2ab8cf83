package storage

import "github.com/mslee98/crawl/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(records []*models.ListingRecord) error
	Close() error
}
