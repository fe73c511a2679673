package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["photo"][0]
}

func TestSaveAndDeleteImage(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := storage.SaveImage(fileHeader(t, "me.gif", pngHeader), "profiles")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/profiles/"))
	assert.True(t, strings.HasSuffix(url, ".png"), "extension follows the sniffed type")

	stored := filepath.Join(dir, "profiles", filepath.Base(url))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	require.NoError(t, storage.DeleteFile(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.DeleteFile(url), "deleting twice is not an error")
}

func TestSaveImageRejectsOtherTypes(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = storage.SaveImage(fileHeader(t, "notes.png", []byte("just some text")), "profiles")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDetectImageTypeRejectsLargeFiles(t *testing.T) {
	fh := fileHeader(t, "big.jpg", []byte("\xff\xd8\xff\xe0"))
	fh.Size = MaxImageSize + 1

	_, err := DetectImageType(fh)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
}

func TestDeleteFileRejectsTraversal(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.Error(t, storage.DeleteFile("/uploads/../../etc/passwd"))
}
