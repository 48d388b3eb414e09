package minio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/pkg/logger"
)

const testBucket = "documents"

type stubObject struct {
	data     []byte
	modified time.Time
}

// stubS3 answers the handful of S3 calls the storage makes: PUT, GET, DELETE
// on objects and ListObjectsV2 on the bucket.
type stubS3 struct {
	mu      sync.Mutex
	objects map[string]stubObject
}

func (s *stubS3) backdate(key string, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := s.objects[key]
	obj.modified = time.Now().Add(-age)
	s.objects[key] = obj
}

func (s *stubS3) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *stubS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/"+testBucket), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodPut && key != "":
		data, err := readPayload(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.objects[key] = stubObject{data: data, modified: time.Now()}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodGet && key == "":
		s.writeList(w)

	case r.Method == http.MethodGet:
		obj, ok := s.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>%s</Key><BucketName>%s</BucketName></Error>`, key, testBucket)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Last-Modified", obj.modified.UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(obj.data)

	case r.Method == http.MethodDelete:
		delete(s.objects, key)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (s *stubS3) writeList(w http.ResponseWriter) {
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, `<Name>%s</Name><Prefix></Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>`, testBucket, len(keys))
	for _, k := range keys {
		obj := s.objects[k]
		fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>%s</LastModified><ETag>"etag"</ETag><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>`,
			k, obj.modified.UTC().Format("2006-01-02T15:04:05.000Z"), len(obj.data))
	}
	b.WriteString(`</ListBucketResult>`)

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, b.String())
}

// readPayload strips aws-chunked framing when the client signs the stream.
func readPayload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
		return io.ReadAll(r.Body)
	}

	var out bytes.Buffer
	br := bufio.NewReader(r.Body)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex := strings.SplitN(strings.TrimSpace(line), ";", 2)[0]
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, err
		}
		if _, err := br.Discard(2); err != nil {
			return nil, err
		}
	}
}

func newTestStorage(t *testing.T) (*MinioStorage, *stubS3) {
	t.Helper()

	stub := &stubS3{objects: map[string]stubObject{}}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)

	return New(client, testBucket, logger.NewTestLogger()), stub
}

func TestMinioStorage_StoreGetDelete(t *testing.T) {
	store, stub := newTestStorage(t)
	ctx := context.Background()

	key, err := store.Store(ctx, strings.NewReader("Hello world"), "uploads/t1/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "uploads/t1/notes.txt", key)
	assert.Equal(t, []string{"uploads/t1/notes.txt"}, stub.keys())

	rc, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "Hello world", string(data))

	require.NoError(t, store.Delete(ctx, key))
	assert.Empty(t, stub.keys())
}

func TestMinioStorage_GetMissingKey(t *testing.T) {
	store, _ := newTestStorage(t)

	rc, err := store.Get(context.Background(), "result:missing")
	assert.Nil(t, rc)
	require.Error(t, err)

	var resp minio.ErrorResponse
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, "NoSuchKey", resp.Code)
}

func TestMinioStorage_CleanupBefore(t *testing.T) {
	store, stub := newTestStorage(t)
	ctx := context.Background()

	for _, key := range []string{"uploads/old/a.txt", "uploads/new/b.txt"} {
		_, err := store.Store(ctx, strings.NewReader(key), key)
		require.NoError(t, err)
	}
	stub.backdate("uploads/old/a.txt", 48*time.Hour)

	require.NoError(t, store.CleanupBefore(ctx, time.Now().Add(-24*time.Hour)))
	assert.Equal(t, []string{"uploads/new/b.txt"}, stub.keys())
}
