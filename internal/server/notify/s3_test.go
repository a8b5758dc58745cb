package notify

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestNewS3Archive_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	_, err := NewS3Archive(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "load aws config: no region")
}

func TestNewS3Archive_AppliesEndpoint(t *testing.T) {
	var opts s3.Options
	origNew := newS3ClientFromConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &fakePutter{}
	}
	t.Cleanup(func() { newS3ClientFromConfig = origNew })

	a, err := NewS3Archive(context.Background(), S3Config{
		User: "admin", Password: "pw", Bucket: "mail", Region: "us-east-1", Endpoint: "http://127.0.0.1:9000/",
	})
	require.NoError(t, err)
	assert.Equal(t, "mail", a.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestS3Archive_Dispatch(t *testing.T) {
	p := &fakePutter{}
	a := &S3Archive{
		client: p,
		bucket: "mail",
		now:    func() time.Time { return time.Date(2026, 2, 14, 23, 0, 0, 0, time.UTC) },
	}

	require.NoError(t, a.Dispatch(context.Background(), Message{To: "owner@example.com", HTML: "<p>hi</p>"}))

	require.NotNil(t, p.in)
	assert.Equal(t, "mail", *p.in.Bucket)
	assert.Regexp(t, regexp.MustCompile(`^notifications/2026/02/14/[0-9a-f-]{36}\.html$`), *p.in.Key)
	body, err := io.ReadAll(p.in.Body)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(body))
	assert.Equal(t, "owner@example.com", p.in.Metadata["to"])
}

func TestS3Archive_DispatchError(t *testing.T) {
	a := &S3Archive{client: &fakePutter{err: errors.New("NoSuchBucket")}, bucket: "mail", now: time.Now}
	err := a.Dispatch(context.Background(), Message{})
	assert.ErrorContains(t, err, "archive notification: NoSuchBucket")
}
