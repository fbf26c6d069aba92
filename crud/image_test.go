package crud

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/domain"
	"yatube/errs"
)

// smallGif is a valid 1x1 transparent gif.
var smallGif = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageCreate(t *testing.T) {
	root := t.TempDir()
	is := NewImageService(root)

	img := &domain.Image{File: bytes.NewReader(smallGif), Filename: "small.gif"}
	require.NoError(t, is.Create(img))
	assert.Equal(t, ".gif", img.Extension)
	assert.Equal(t, "image/gif", img.ContentType)
	assert.EqualValues(t, len(smallGif), img.Size)
	assert.NotEqual(t, "small.gif", img.Filename)
	assert.True(t, strings.HasPrefix(img.RelativePath(), "posts/"))

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(img.RelativePath())))
	require.NoError(t, err)
	assert.Equal(t, smallGif, stored)

	require.NoError(t, is.Delete(img.RelativePath()))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(img.RelativePath())))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, is.Delete(img.RelativePath()))
}

func TestImageValidate(t *testing.T) {
	is := NewImageService(t.TempDir())

	tests := []struct {
		name     string
		content  []byte
		filename string
		ok       bool
	}{
		{"gif", smallGif, "a.gif", true},
		{"png", pngHeader, "a.PNG", true},
		{"jpg renamed", []byte("\xff\xd8\xff\xe0\x00\x10JFIF"), "a.jpg", true},
		{"bad extension", smallGif, "a.txt", false},
		{"not an image", []byte("just some text"), "a.gif", false},
		{"extension mismatch", pngHeader, "a.gif", false},
		{"empty", []byte{}, "a.gif", false},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, domain.MaxUploadSize)...), "a.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &domain.Image{File: bytes.NewReader(tt.content), Filename: tt.filename}
			err := is.Validate(img)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
			assert.Equal(t, "image", errs.ErrorField(err))
		})
	}
}

func TestImageDeleteRefusesOtherPaths(t *testing.T) {
	is := NewImageService(t.TempDir())
	err := is.Delete("../secret.txt")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	assert.NoError(t, is.Delete(""))
}

// brokenUpload serves its first read and fails every read after it.
type brokenUpload struct {
	r     *bytes.Reader
	reads int
}

func (b *brokenUpload) Read(p []byte) (int, error) {
	b.reads++
	if b.reads > 1 {
		return 0, errors.New("connection reset")
	}
	return b.r.Read(p)
}

func (b *brokenUpload) Seek(offset int64, whence int) (int64, error) {
	return b.r.Seek(offset, whence)
}

func TestImageCreateRemovesPartialFile(t *testing.T) {
	root := t.TempDir()
	is := NewImageService(root)

	img := &domain.Image{File: &brokenUpload{r: bytes.NewReader(smallGif)}, Filename: "small.gif"}
	require.Error(t, is.Create(img))

	entries, err := os.ReadDir(filepath.Join(root, domain.ImagesDir))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
