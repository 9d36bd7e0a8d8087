package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"study-assistant/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const keyPrefix = "profile_images/"

// S3Store 对象存储
type S3Store struct {
	client *s3.Client
	region string
	bucket string
}

// NewS3Store 根据配置创建 S3 客户端
func NewS3Store(ctx context.Context, cfg config.BlobConfig) (*S3Store, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("AWS region not set")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		region: cfg.Region,
		bucket: cfg.Bucket,
	}, nil
}

// Put 上传对象，返回公开访问 URL
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	uploader := manager.NewUploader(s.client)

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(keyPrefix + key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s%s", s.bucket, s.region, keyPrefix, key), nil
}

// Get 下载对象
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Delete 删除对象
func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctxDel, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctxDel, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

var _ Store = (*S3Store)(nil)
