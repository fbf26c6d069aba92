package domain

import (
	"io"
	"net/url"
	"path"
)

const (
	// ImagesDir is the directory below the media root that post images are stored in.
	ImagesDir = "posts"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an uploaded image file. Images have no table of their own:
// they are stored in the filesystem below the media root, and a Post references
// its image by the relative path returned by RelativePath.
// An image stored for a post ends up in: <media root>/posts/<unique name>.<ext>.
type Image struct {
	File        io.ReadSeeker `json:"-"`
	Filename    string        `json:"-"`
	Extension   string        `json:"-"`
	ContentType string        `json:"-"`
	Size        int64         `json:"-"`
}

// ImageService is a set of methods to store and remove image files.
type ImageService interface {
	Create(img *Image) error
	Delete(relativePath string) error
}

// RelativePath returns the image's path relative to the media root.
func (i *Image) RelativePath() string {
	return path.Join(ImagesDir, i.Filename)
}

// MediaURL returns the public url of an image stored at the given relative path.
func MediaURL(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	u := url.URL{Path: "/media/" + relativePath}
	return u.String()
}
