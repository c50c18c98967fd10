// minio сохраняет нераспознанные страницы выдачи в MinIO/S3, чтобы
// изменения формата провайдера можно было разобрать по сырому ответу.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/go-maps-harvester/internal/config"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
)

// metaSourceURL — пользовательские метаданные объекта с адресом страницы.
const metaSourceURL = "Source-Url"

// PagesArchive — адаптер MinIO для архива страниц.
type PagesArchive struct {
	bucket string
	client *mclient.Client
	now    func() time.Time
}

// New создает клиент MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме
// и выполняет fail-fast-проверку наличия бакета.
func New(ctx context.Context, cfg config.S3Config) (*PagesArchive, error) {
	const op = "storage.minio.New"

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &PagesArchive{bucket: cfg.Bucket, client: client, now: time.Now}, nil
}

// Put сохраняет страницу под ключом "malformed/<YYYY-MM-DD>/<uuid>.txt"
// и возвращает ключ. Адрес страницы кладётся в метаданные объекта.
func (a *PagesArchive) Put(ctx context.Context, page models.RawPage) (string, error) {
	const op = "storage.minio.PagesArchive.Put"

	key := objectKey(a.now(), uuid.New())

	_, err := a.client.PutObject(ctx, a.bucket, key,
		strings.NewReader(page.Text), int64(len(page.Text)),
		mclient.PutObjectOptions{
			ContentType:  "text/plain; charset=utf-8",
			UserMetadata: map[string]string{metaSourceURL: page.URL},
		},
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return key, nil
}

// Get читает сохранённую страницу по ключу.
func (a *PagesArchive) Get(ctx context.Context, key string) (models.RawPage, error) {
	const op = "storage.minio.PagesArchive.Get"

	obj, err := a.client.GetObject(ctx, a.bucket, key, mclient.GetObjectOptions{})
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: %w", op, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: stat: %w", op, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return models.RawPage{}, fmt.Errorf("%s: read: %w", op, err)
	}

	return models.RawPage{URL: info.UserMetadata[metaSourceURL], Text: buf.String()}, nil
}

func objectKey(now time.Time, id uuid.UUID) string {
	return path.Join("malformed", now.UTC().Format("2006-01-02"), id.String()+".txt")
}
