package minio

import (
	"bytes"
	"context"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ReceiptRepo реализует хранилище квитанций заказов поверх MinIO.
type ReceiptRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewReceiptRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ReceiptRepo {
	return &ReceiptRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает квитанцию в MinIO и возвращает ключ объекта.
func (r *ReceiptRepo) Upload(ctx context.Context, receipt *domain.Receipt) (string, error) {
	reader := bytes.NewReader(receipt.Data)

	info, err := r.mc.PutObject(ctx, receipt.Bucket, receipt.ObjectKey, reader, int64(len(receipt.Data)), minio.PutObjectOptions{
		ContentType: receipt.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Exists проверяет наличие объекта в бакете квитанций.
func (r *ReceiptRepo) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.mc.StatObject(ctx, r.cfg.BucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return true, nil
}

// PresignedURL возвращает временную ссылку на скачивание квитанции.
func (r *ReceiptRepo) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := r.mc.PresignedGetObject(ctx, r.cfg.BucketName, key, ttl, nil)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return u.String(), nil
}
