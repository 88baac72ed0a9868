package aws

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type S3ImageStore struct {
	client     *s3.Client
	bucket     string
	publicBase string
	logger     *zap.Logger
}

func NewS3ImageStore(ctx context.Context, bucket, publicBase string, logger *zap.Logger) (*S3ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3ImageStore{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
	}, nil
}

func (s *S3ImageStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("s3 put object failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	s.logger.Debug("uploaded room image", zap.String("bucket", s.bucket), zap.String("key", key))
	return s.publicBase + "/" + key, nil
}
