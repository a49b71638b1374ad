package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client S3Mailer needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configure an S3-compatible endpoint (AWS or MinIO).
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Prefix       string
}

// S3Mailer stores each message as <prefix><id>.eml.
type S3Mailer struct {
	api    ObjectPutter
	bucket string
	prefix string
}

func NewS3Mailer(api ObjectPutter, bucket, prefix string) *S3Mailer {
	return &S3Mailer{api: api, bucket: bucket, prefix: prefix}
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3MailerFromOptions builds the S3 client with static credentials and a
// path-style endpoint override.
func NewS3MailerFromOptions(ctx context.Context, o S3Options) (*S3Mailer, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		opts.UsePathStyle = true
	})

	return NewS3Mailer(client, o.Bucket, o.Prefix), nil
}

func (m *S3Mailer) Send(ctx context.Context, msg Message) error {
	_, err := m.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.prefix + msg.ID + ".eml"),
		Body:        bytes.NewReader(msg.RFC822()),
		ContentType: aws.String("message/rfc822"),
	})
	if err != nil {
		return fmt.Errorf("s3 put mail %s: %w", msg.ID, err)
	}
	return nil
}
