package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestS3Uploader_Upload(t *testing.T) {
	client := &fakeS3{}
	u := newS3Uploader(client, S3Config{Bucket: "media", PublicBaseURL: "https://cdn.example.com/"})
	u.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }

	asset, err := u.Upload(context.Background(), fileHeader(t, "Me.PNG", "image/png", []byte("png-bytes")), "avatars")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^avatars/2026/03/07/[0-9a-f-]{36}\.png$`), asset.Key)
	assert.Equal(t, "https://cdn.example.com/"+asset.Key, asset.URL)
	assert.Equal(t, "media", aws.ToString(client.input.Bucket))
	assert.Equal(t, asset.Key, aws.ToString(client.input.Key))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.Equal(t, int64(len("png-bytes")), aws.ToInt64(client.input.ContentLength))
	assert.Equal(t, []byte("png-bytes"), client.body)
}

func TestS3Uploader_UploadError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	u := newS3Uploader(client, S3Config{Bucket: "media", Endpoint: "http://minio:9000"})

	asset, err := u.Upload(context.Background(), fileHeader(t, "a.jpg", "image/jpeg", []byte("x")), "covers")

	assert.Nil(t, asset)
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Uploader_UploadNilFile(t *testing.T) {
	u := newS3Uploader(&fakeS3{}, S3Config{Bucket: "media"})

	_, err := u.Upload(context.Background(), nil, "avatars")

	assert.Error(t, err)
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"explicit", S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
		{"custom endpoint", S3Config{Bucket: "b", Endpoint: "http://localhost:9000/"}, "http://localhost:9000/b"},
		{"aws", S3Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{Region: "us-east-1"})

	assert.ErrorContains(t, err, "bucket")
}
