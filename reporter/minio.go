package reporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/metadata"
)

const (
	bsonContentType     = "application/bson"
	bucketSetupTimeout  = 10 * time.Second
	xtraceObjectMetaKey = "X-Trace"
)

// ObjectPutter is the part of *minio.Client the minio reporter uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// minioTransport stores one object per event.
type minioTransport struct {
	client ObjectPutter
	bucket string
	prefix string
}

func newMinioTransport(cfg MinioConfig, putter ObjectPutter) (*minioTransport, error) {
	t := &minioTransport{client: putter, bucket: cfg.Bucket, prefix: cfg.Prefix}
	if putter != nil {
		return t, nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio reporter needs an endpoint", ErrInvalidConfig)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	if cfg.CreateBucket {
		ctx, cancel := context.WithTimeout(context.Background(), bucketSetupTimeout)
		defer cancel()
		if err := ensureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
			return nil, err
		}
	}

	t.client = client
	return t, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// objectKey returns <prefix>/<task id>/<op id>.bson.
func (t *minioTransport) objectKey(md metadata.Metadata) string {
	return path.Join(t.prefix, md.TaskIDString(), md.OpIDString()+".bson")
}

func (t *minioTransport) send(ctx context.Context, _ metadata.Metadata, e *event.Event, payload []byte) (int, error) {
	md := e.Metadata()
	_, err := t.client.PutObject(ctx, t.bucket, t.objectKey(md), bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType:  bsonContentType,
			UserMetadata: map[string]string{xtraceObjectMetaKey: md.String()},
		})
	if err != nil {
		return 0, err
	}
	return len(payload), nil
}

func (t *minioTransport) close() error { return nil }
