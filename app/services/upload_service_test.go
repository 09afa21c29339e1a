package services

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/pkg/bind"
	"github.com/shashiranjanraj/furnivision/pkg/storage"
)

// smallest valid PNG header, enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newUploads(t *testing.T) (*UploadService, storage.Disk) {
	disk := storage.NewLocal(t.TempDir(), "http://cdn.test/storage")
	return NewUploadService().WithDisk(disk), disk
}

func TestCheckModel_RulesInOrder(t *testing.T) {
	const limit = 50 << 20
	cases := []struct {
		name string
		size int64
		msg  string
	}{
		{"room.gltf", 10, MsgGLTF},
		{"ROOM.GLTF", limit + 1, MsgGLTF},
		{"chair.obj", 10, MsgNotGLB},
		{"chair", 10, MsgNotGLB},
		{"chair.glb", limit + 1, MsgModelTooBig},
		{"chair.glb", limit, ""},
	}
	for _, tc := range cases {
		err := CheckModel(tc.name, tc.size, limit)
		if tc.msg == "" {
			assert.NoError(t, err, tc.name)
			continue
		}
		assert.Equal(t, tc.msg, MessageOf(err), tc.name)
	}
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusOf(CheckModel("a.glb", limit+1, limit)))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(CheckModel("a.gltf", 1, limit)))
}

func TestCheckModelName_IgnoresSize(t *testing.T) {
	assert.Equal(t, MsgGLTF, MessageOf(CheckModelName("scene.GLTF")))
	assert.Equal(t, MsgNotGLB, MessageOf(CheckModelName("scene.obj")))
	assert.NoError(t, CheckModelName("scene.glb"))
}

func TestStoreModel_WritesUnderModels(t *testing.T) {
	svc, disk := newUploads(t)
	data := []byte("glTF binary")

	up, err := svc.StoreModel(context.Background(), &bind.File{Name: "chair.glb", Size: int64(len(data)), Data: data})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Path, "products/models/"))
	assert.True(t, strings.HasSuffix(up.Path, ".glb"))
	assert.Equal(t, "http://cdn.test/storage/"+up.Path, up.URL)

	got, err := disk.Get(context.Background(), up.Path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStoreModel_RejectedIsNeverWritten(t *testing.T) {
	svc, disk := newUploads(t)
	_, err := svc.StoreModel(context.Background(), &bind.File{Name: "room.gltf", Size: 3, Data: []byte("abc")})
	require.ErrorIs(t, err, ErrInvalidUpload)
	assert.False(t, disk.Exists(context.Background(), "products/models"))
}

func TestStoreImage(t *testing.T) {
	svc, _ := newUploads(t)
	svc.maxImage = 64

	up, err := svc.StoreImage(context.Background(), &bind.File{Name: "photo.PNG", Size: int64(len(pngHeader)), Data: pngHeader})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Path, "products/images/"))
	assert.True(t, strings.HasSuffix(up.Path, ".png"))
	assert.Equal(t, "image/png", up.ContentType)

	big := bytes.Repeat([]byte{1}, 65)
	_, err = svc.StoreImage(context.Background(), &bind.File{Name: "big.png", Size: 65, Data: big})
	assert.Equal(t, MsgImageTooBig, MessageOf(err))

	_, err = svc.StoreImage(context.Background(), &bind.File{Name: "notes.txt", Size: 5, Data: []byte("hello")})
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestStoreImage_ExtensionFollowsContent(t *testing.T) {
	svc, disk := newUploads(t)
	jpeg := []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")

	cases := []struct {
		name string
		data []byte
		ext  string
	}{
		{"x.html", pngHeader, ".png"},
		{"payload.svg", pngHeader, ".png"},
		{"photo.gif", jpeg, ".jpg"},
		{"noext", jpeg, ".jpg"},
	}
	for _, tc := range cases {
		up, err := svc.StoreImage(context.Background(), &bind.File{Name: tc.name, Size: int64(len(tc.data)), Data: tc.data})
		require.NoError(t, err, tc.name)
		assert.True(t, strings.HasSuffix(up.Path, tc.ext), "%s stored as %s", tc.name, up.Path)
		assert.True(t, disk.Exists(context.Background(), up.Path))
	}
}
