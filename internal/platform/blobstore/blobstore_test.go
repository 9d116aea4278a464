package blobstore

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

func TestFoodPhotoKey(t *testing.T) {
	key := FoodPhotoKey(12, "image/jpeg")
	assert.Regexp(t, regexp.MustCompile(`^food-photos/12/[0-9a-f-]{36}\.jpg$`), key)
	assert.NotEqual(t, key, FoodPhotoKey(12, "image/jpeg"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("image/png"))
	assert.Equal(t, ".jpg", Extension("image/jpg"))
	assert.Equal(t, ".bin", Extension("application/x-unknown-thing"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("http://localhost:8000/photos/")

	url, err := s.Put(ctx, "food-photos/1/a.jpg", "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/photos/food-photos/1/a.jpg", url)

	data, ct, err := s.Get(ctx, "food-photos/1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte{0xff, 0xd8}, data)

	require.NoError(t, s.Delete(ctx, "food-photos/1/a.jpg"))
	assert.Equal(t, 0, s.Len())
	assert.ErrorIs(t, s.Delete(ctx, "food-photos/1/a.jpg"), ErrNotFound)

	_, _, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Validation(t *testing.T) {
	s := NewMemoryStore("")
	_, err := s.Put(context.Background(), "", "image/png", []byte{1})
	assert.Error(t, err)
	_, err = s.Put(context.Background(), "k", "image/png", nil)
	assert.Error(t, err)
	_, err = s.Put(context.Background(), "k", "image/png", make([]byte, MaxObjectSize+1))
	assert.Error(t, err)
}

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    []byte
	deleted string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, f.err
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{}
	s := NewS3StoreWithClient(fake, "bp-photos", "eu-west-1", "")

	url, err := s.Put(context.Background(), "food-photos/3/x.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://bp-photos.s3.eu-west-1.amazonaws.com/food-photos/3/x.png", url)
	assert.Equal(t, "bp-photos", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.put.ContentType))
	assert.Equal(t, []byte("png"), fake.body)

	require.NoError(t, s.Delete(context.Background(), "food-photos/3/x.png"))
	assert.Equal(t, "food-photos/3/x.png", fake.deleted)

	fake.err = errors.New("access denied")
	_, err = s.Put(context.Background(), "k", "image/png", []byte("x"))
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Store_CustomBaseURL(t *testing.T) {
	s := NewS3StoreWithClient(&fakeS3{}, "b", "us-east-1", "https://cdn.bptrack.test")
	url, err := s.Put(context.Background(), "food-photos/1/y.jpg", "image/jpeg", []byte("j"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.bptrack.test/food-photos/1/y.jpg", url)
}
