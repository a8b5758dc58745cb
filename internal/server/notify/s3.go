package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config points at an S3-compatible bucket (MinIO in development).
type S3Config struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archive stores a copy of every sent message as an HTML object.
type S3Archive struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

func NewS3Archive(ctx context.Context, c S3Config) (*S3Archive, error) {
	if c.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: c.Bucket, now: time.Now}, nil
}

func (a *S3Archive) key() string {
	d := a.now().UTC()
	return fmt.Sprintf("notifications/%04d/%02d/%02d/%s.html", d.Year(), d.Month(), d.Day(), uuid.NewString())
}

func (a *S3Archive) Dispatch(ctx context.Context, msg Message) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key()),
		Body:        strings.NewReader(msg.HTML),
		ContentType: aws.String("text/html; charset=utf-8"),
		Metadata:    map[string]string{"to": msg.To},
	})
	if err != nil {
		return fmt.Errorf("archive notification: %w", err)
	}
	return nil
}
