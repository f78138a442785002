// Package photos issues presigned S3 URLs for movie photo uploads.
package photos

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	sc "github.com/dmitrijs2005/moviekeeper/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URLExpiry bounds how long an issued URL stays usable.
const URLExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// Presigner signs PUT and GET requests against the configured bucket.
// A Presigner built with an empty bucket reports common.ErrStorageDisabled.
type Presigner struct {
	bucket   string
	region   string
	user     string
	password string
	endpoint string
}

func NewPresigner(cfg *sc.Config) *Presigner {
	return &Presigner{
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		user:     cfg.S3RootUser,
		password: cfg.S3RootPassword,
		endpoint: cfg.S3BaseEndpoint,
	}
}

// Enabled reports whether a bucket is configured.
func (p *Presigner) Enabled() bool {
	return p.bucket != ""
}

// StorageKey returns users/<owner>/<yyyy>/<mm>/<dd>/<uuid>.
func StorageKey(ownerID string) string {
	d := now()
	return fmt.Sprintf("users/%s/%04d/%02d/%02d/%v", ownerID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (p *Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(p.user, p.password, "")))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	c := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.endpoint)
		o.UsePathStyle = true
	})

	return s3.NewPresignClient(c), nil
}

// UploadURL returns a fresh storage key under ownerID and a presigned PUT
// URL for it.
func (p *Presigner) UploadURL(ctx context.Context, ownerID string) (key, url string, err error) {
	if !p.Enabled() {
		return "", "", common.ErrStorageDisabled
	}

	pc, err := p.client(ctx)
	if err != nil {
		return "", "", err
	}

	key = StorageKey(ownerID)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}

	return key, req.URL, nil
}

// DownloadURL returns a presigned GET URL for key.
func (p *Presigner) DownloadURL(ctx context.Context, key string) (string, error) {
	if !p.Enabled() {
		return "", common.ErrStorageDisabled
	}

	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}
