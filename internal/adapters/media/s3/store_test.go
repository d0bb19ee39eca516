package s3

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
	"github.com/ogurasousui/codex-graphql-employee/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeObjectAPI struct {
	puts      []*awss3.PutObjectInput
	bodies    [][]byte
	deletes   []*awss3.DeleteObjectInput
	putErr    error
	deleteErr error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &awss3.DeleteObjectOutput{}, nil
}

func newTestStore(api *fakeObjectAPI) *Store {
	s := newStore(api, config.MediaConfig{
		Bucket:        "employee-media",
		PublicBaseURL: "https://media.example.com/employee-media/",
		Folder:        "employee_photos",
	})
	s.newKey = func() string { return "fixed-key" }
	return s
}

func TestStore_Upload_DataURL(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newTestStore(api)

	url, err := store.Upload(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com/employee-media/employee_photos/fixed-key.png", url)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "employee-media", aws.ToString(api.puts[0].Bucket))
	assert.Equal(t, "employee_photos/fixed-key.png", aws.ToString(api.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(api.puts[0].ContentType))
	assert.Equal(t, pngBytes, api.bodies[0])
}

func TestStore_Upload_RawBase64(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newTestStore(api)

	encoded := base64.RawStdEncoding.EncodeToString(pngBytes)
	url, err := store.Upload(context.Background(), encoded)
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/employee-media/employee_photos/fixed-key.png", url)
}

func TestStore_Upload_RemoteURLPassthrough(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newTestStore(api)

	url, err := store.Upload(context.Background(), " https://cdn.example.com/photo.jpg ")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/photo.jpg", url)
	assert.Empty(t, api.puts)
}

func TestStore_Upload_Rejects(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newTestStore(api)

	cases := map[string]string{
		"not base64":      "%%%not-base64%%%",
		"not an image":    base64.StdEncoding.EncodeToString([]byte("hello world")),
		"non image mime":  "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello")),
		"missing payload": "data:image/png;base64",
	}
	for name, data := range cases {
		_, err := store.Upload(context.Background(), data)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), name)
	}
	assert.Empty(t, api.puts)
}

func TestStore_Upload_PutError(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{putErr: errors.New("access denied")}
	store := newTestStore(api)

	_, err := store.Upload(context.Background(), base64.StdEncoding.EncodeToString(pngBytes))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.ErrorIs(t, err, api.putErr)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newTestStore(api)

	require.NoError(t, store.Delete(context.Background(), "https://media.example.com/employee-media/employee_photos/a.png"))
	require.Len(t, api.deletes, 1)
	assert.Equal(t, "employee_photos/a.png", aws.ToString(api.deletes[0].Key))

	require.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/photo.jpg"))
	assert.Len(t, api.deletes, 1)
}

func TestStore_Delete_Error(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{deleteErr: errors.New("boom")}
	store := newTestStore(api)

	err := store.Delete(context.Background(), "https://media.example.com/employee-media/employee_photos/a.png")
	assert.ErrorIs(t, err, api.deleteErr)
}
