package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/model"
)

// LocalProvider stores binaries on the local filesystem and serves them from
// a static base URL. Meant for development and single-node deployments.
type LocalProvider struct {
	basePath string
	baseURL  string
}

type LocalConfig struct {
	BasePath string // e.g. ./uploads
	BaseURL  string // e.g. http://localhost:8080/uploads
}

func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}
	return &LocalProvider{
		basePath: cfg.BasePath,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

func (p *LocalProvider) Store(ctx context.Context, r io.Reader, hints asset.UploadHints) (model.AssetReference, error) {
	storageID := objectKey(hints)
	fullPath := filepath.Join(p.basePath, filepath.FromSlash(storageID))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return model.AssetReference{}, apperr.Wrap(apperr.KindAssetProvider, err, "create upload directory")
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return model.AssetReference{}, apperr.Wrap(apperr.KindAssetProvider, err, "create file")
	}
	defer dst.Close()

	written, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(fullPath)
		return model.AssetReference{}, apperr.Wrap(apperr.KindAssetProvider, err, "write file")
	}

	return model.AssetReference{
		StorageID: storageID,
		URL:       p.baseURL + "/" + storageID,
		Format:    strings.TrimPrefix(path.Ext(storageID), "."),
		SizeBytes: written,
	}, nil
}

func (p *LocalProvider) Release(ctx context.Context, storageID string) error {
	fullPath := filepath.Join(p.basePath, filepath.FromSlash(storageID))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.KindAssetProvider, err, "remove file")
	}
	return nil
}

// TransformedURL appends the requested dimensions as query parameters for a
// fronting resizer to honor. The local backend itself never transcodes.
func (p *LocalProvider) TransformedURL(storageID string, opts asset.TransformOptions) string {
	url := p.baseURL + "/" + storageID
	if opts.Width > 0 || opts.Height > 0 {
		url = fmt.Sprintf("%s?w=%d&h=%d", url, opts.Width, opts.Height)
	}
	return url
}

func (p *LocalProvider) Name() string { return "local" }

// objectKey builds a collision-free key: <folder>/<uuid><ext>.
func objectKey(hints asset.UploadHints) string {
	ext := strings.ToLower(path.Ext(hints.FileName))
	folder := hints.Folder
	if folder == "" {
		folder = "misc"
	}
	return folder + "/" + uuid.New().String() + ext
}
