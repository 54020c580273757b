package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
	"github.com/dairydock/catalog-service/internal/model"
)

// S3Provider stores binaries in any S3-compatible object store (MinIO,
// Cloudflare R2). Uploads are relayed through an in-process buffer so the
// object size is known up front and a failed read never leaves a partial
// object behind.
type S3Provider struct {
	client    *minio.Client
	bucket    string
	endpoint  string
	useSSL    bool
	publicURL string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string // optional CDN/public base URL
}

func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create s3 client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, errors.Wrap(err, "create bucket")
		}
	}

	return &S3Provider{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  cfg.Endpoint,
		useSSL:    cfg.UseSSL,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

func (p *S3Provider) Store(ctx context.Context, r io.Reader, hints asset.UploadHints) (model.AssetReference, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return model.AssetReference{}, apperr.Wrap(apperr.KindAssetProvider, err, "buffer upload")
	}

	storageID := objectKey(hints)
	_, err := p.client.PutObject(ctx, p.bucket, storageID, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: hints.ContentType,
	})
	if err != nil {
		return model.AssetReference{}, apperr.Wrap(apperr.KindAssetProvider, err, "put object")
	}

	return model.AssetReference{
		StorageID: storageID,
		URL:       p.objectURL(storageID),
		Format:    strings.TrimPrefix(path.Ext(storageID), "."),
		SizeBytes: int64(buf.Len()),
	}, nil
}

// Release removes the object. Removing a nonexistent object succeeds, which
// gives the at-least-once release semantics callers rely on.
func (p *S3Provider) Release(ctx context.Context, storageID string) error {
	err := p.client.RemoveObject(ctx, p.bucket, storageID, minio.RemoveObjectOptions{})
	if err != nil {
		return apperr.Wrap(apperr.KindAssetProvider, err, "remove object")
	}
	return nil
}

func (p *S3Provider) TransformedURL(storageID string, opts asset.TransformOptions) string {
	url := p.objectURL(storageID)
	if opts.Width > 0 || opts.Height > 0 {
		url = fmt.Sprintf("%s?width=%d&height=%d", url, opts.Width, opts.Height)
	}
	return url
}

func (p *S3Provider) Name() string { return "s3" }

func (p *S3Provider) objectURL(storageID string) string {
	if p.publicURL != "" {
		return p.publicURL + "/" + storageID
	}
	scheme := "http"
	if p.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.endpoint, p.bucket, storageID)
}
