package utils

import (
	"context"
	"io"
)

// ReceiptStorage persists uploaded receipts. FileStorage and R2Storage
// implement it.
type ReceiptStorage interface {
	// SaveFile stores reader under subDir and returns the object key.
	SaveFile(ctx context.Context, subDir, originalFilename string, reader io.Reader) (string, error)
	// DeleteFile removes key. Missing objects are not an error.
	DeleteFile(ctx context.Context, key string) error
	// URL returns a link an admin can open to view key.
	URL(ctx context.Context, key string) (string, error)
}

var (
	_ ReceiptStorage = (*FileStorage)(nil)
	_ ReceiptStorage = (*R2Storage)(nil)
)
