// Package s3store implements folio.Bucket on top of the AWS SDK for Go v2.
// It works with AWS S3 and with S3-compatible services such as MinIO when an
// endpoint and path-style addressing are configured.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sagarc03/folio"
)

// Client is the subset of the S3 API used by Bucket. *s3.Client satisfies it.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds the connection settings for the remote bucket.
type Config struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Endpoint      string `mapstructure:"endpoint"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	UsePathStyle  bool   `mapstructure:"use_path_style"`
}

// Bucket stores objects in a single S3 bucket.
type Bucket struct {
	client  Client
	name    string
	baseURL string
}

// New builds an S3 client from cfg and returns a Bucket using it. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new bucket: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("new bucket: region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new bucket: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewBucket(client, cfg), nil
}

// NewBucket returns a Bucket using an existing client.
func NewBucket(client Client, cfg Config) *Bucket {
	return &Bucket{
		client:  client,
		name:    cfg.Bucket,
		baseURL: publicBaseURL(cfg),
	}
}

// Put uploads size bytes of content under key.
func (b *Bucket) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          content,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Returns folio.ErrNotFound when the service reports the
// key as missing.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
		return fmt.Errorf("delete object %s: %w", key, folio.ErrNotFound)
	}

	return fmt.Errorf("delete object %s: %w", key, err)
}

// URL returns the public URL of key.
func (b *Bucket) URL(key string) string {
	return b.baseURL + "/" + url.PathEscape(key)
}

// publicBaseURL picks the URL prefix objects are served from: an explicit
// public base, the custom endpoint, or the regional virtual-hosted AWS URL.
func publicBaseURL(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}

	if cfg.Endpoint != "" {
		endpoint := strings.TrimRight(cfg.Endpoint, "/")
		if cfg.UsePathStyle {
			return endpoint + "/" + cfg.Bucket
		}
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			u.Host = cfg.Bucket + "." + u.Host
			return u.String()
		}
		return endpoint + "/" + cfg.Bucket
	}

	if cfg.UsePathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s", cfg.Region, cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
