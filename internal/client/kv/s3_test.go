package kv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
	lastPut *s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_ObjectLayout(t *testing.T) {
	f := newFakeS3()
	s := NewS3Store(f, "sessions", "mobile/")

	require.NoError(t, s.Set(context.Background(), "current-session-backup", []byte(`{"id":"1"}`)))

	assert.Equal(t, []byte(`{"id":"1"}`), f.objects["sessions/mobile/current-session-backup"])
	require.NotNil(t, f.lastPut)
	assert.Equal(t, "application/json", aws.ToString(f.lastPut.ContentType))
}

func TestS3Store_PropagatesErrors(t *testing.T) {
	f := newFakeS3()
	f.err = errors.New("connection refused")
	s := NewS3Store(f, "b", "")
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, f.err)
	require.ErrorIs(t, s.Set(ctx, "k", []byte("v")), f.err)
	require.ErrorIs(t, s.Delete(ctx, "k"), f.err)
}

func TestNewS3StoreFromOptions_BuildsClient(t *testing.T) {
	s, err := NewS3StoreFromOptions(context.Background(), S3Options{
		Bucket:       "sessions",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		Prefix:       "p/",
	})
	require.NoError(t, err)
	assert.Equal(t, "sessions", s.bucket)
	assert.Equal(t, "p/", s.prefix)
	_, ok := s.api.(*s3.Client)
	assert.True(t, ok)
}

func TestNewS3StoreFromOptions_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}

	_, err := NewS3StoreFromOptions(context.Background(), S3Options{Bucket: "b"})
	require.ErrorContains(t, err, "bad profile")
}
