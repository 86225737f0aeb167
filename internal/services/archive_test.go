package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	err    error
	inputs []*s3.PutObjectInput
	bodies [][]byte
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(params.Body)
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archive_Store(t *testing.T) {
	putter := &fakePutter{}
	archive := &S3Archive{client: putter, bucket: "takeout-bucket"}

	key, err := archive.Store(context.Background(), "u1", "Watch-History.JSON", []byte(`[]`))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^takeouts/u1/[0-9a-f-]{36}\.json$`), key)

	require.Len(t, putter.inputs, 1)
	in := putter.inputs[0]
	assert.Equal(t, "takeout-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, key, aws.ToString(in.Key))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.Equal(t, int64(2), aws.ToInt64(in.ContentLength))
	assert.Equal(t, []byte(`[]`), putter.bodies[0])
}

func TestS3Archive_Store_ContentTypes(t *testing.T) {
	tests := map[string]string{
		"watch-history.html": "text/html",
		"history.htm":        "text/html",
		"history":            "application/octet-stream",
	}

	for filename, want := range tests {
		t.Run(filename, func(t *testing.T) {
			putter := &fakePutter{}
			archive := &S3Archive{client: putter, bucket: "b"}

			_, err := archive.Store(context.Background(), "u1", filename, []byte("x"))
			require.NoError(t, err)
			assert.Equal(t, want, aws.ToString(putter.inputs[0].ContentType))
		})
	}
}

func TestS3Archive_Store_Error(t *testing.T) {
	archive := &S3Archive{client: &fakePutter{err: errors.New("AccessDenied")}, bucket: "b"}

	_, err := archive.Store(context.Background(), "u1", "watch-history.json", []byte("[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}
