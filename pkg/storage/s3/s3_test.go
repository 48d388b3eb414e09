package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/pkg/logger"
)

type object struct {
	data     []byte
	modified time.Time
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]object
	now     time.Time
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]object{}, now: time.Now()}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = object{data: data, modified: f.now}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key, obj := range f.objects {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			LastModified: aws.Time(obj.modified),
		})
	}
	return out, nil
}

func TestS3Storage_StoreGetDelete(t *testing.T) {
	ctx := context.Background()
	store := New(newFakeS3(), "bucket", logger.NewTestLogger())

	key, err := store.Store(ctx, bytes.NewReader([]byte("payload")), "uploads/t1/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "uploads/t1/a.txt", key)

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	var noSuchKey *types.NoSuchKey
	assert.True(t, errors.As(err, &noSuchKey))
}

func TestS3Storage_CleanupBefore(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := New(fake, "bucket", logger.NewTestLogger())

	fake.now = time.Now().Add(-48 * time.Hour)
	_, err := store.Store(ctx, bytes.NewReader([]byte("old")), "old")
	require.NoError(t, err)

	fake.now = time.Now()
	_, err = store.Store(ctx, bytes.NewReader([]byte("new")), "new")
	require.NoError(t, err)

	require.NoError(t, store.CleanupBefore(ctx, time.Now().Add(-24*time.Hour)))

	_, err = store.Get(ctx, "old")
	assert.Error(t, err)
	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}
