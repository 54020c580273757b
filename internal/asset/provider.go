package asset

import (
	"context"
	"io"

	"github.com/dairydock/catalog-service/internal/model"
)

// UploadHints carries what the caller knows about the binary being stored.
type UploadHints struct {
	FileName    string
	ContentType string
	// Folder namespaces the object key, e.g. "products" or "categories".
	Folder    string
	SizeBytes int64
}

// TransformOptions requests an on-the-fly resized variant. Transformation
// itself is the provider's business; providers that cannot transform return
// the original URL.
type TransformOptions struct {
	Width  int
	Height int
}

// Provider is the asset-storage capability consumed by the catalog. Release
// is idempotent on unknown ids so at-least-once release is safe.
type Provider interface {
	Store(ctx context.Context, r io.Reader, hints UploadHints) (model.AssetReference, error)
	Release(ctx context.Context, storageID string) error
	TransformedURL(storageID string, opts TransformOptions) string
	Name() string
}
