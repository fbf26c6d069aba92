package crud

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"yatube/domain"
	"yatube/errs"
)

// ImageService manages Images.
// It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageCrud.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageCrud
}

// imageCrud runs CRUD operations on the filesystem using incoming Image data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type imageCrud struct {
	mediaRoot string
}

// NewImageService returns an instance of ImageService storing files below mediaRoot.
func NewImageService(mediaRoot string) *ImageService {
	return &ImageService{
		imageValidator{
			imageCrud{
				mediaRoot: mediaRoot,
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageService = &ImageService{}

// allowedTypes maps the accepted file extensions to their content types.
var allowedTypes = map[string]string{
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Validate checks an uploaded image without storing it.
// On success, the image's Extension, ContentType and Size are set.
func (iv *imageValidator) Validate(img *domain.Image) error {
	return runImageValFns(img,
		iv.fileRequired,
		iv.extensionValid,
		iv.belowMaxSize,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
	)
}

// Create validates an uploaded image, gives it a unique name and stores it in the filesystem.
func (iv *imageValidator) Create(img *domain.Image) error {
	if err := iv.Validate(img); err != nil {
		return err
	}
	if err := runImageValFns(img, iv.fileNameUnique); err != nil {
		return err
	}
	return iv.imageCrud.Create(img)
}

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// A imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// fileRequired makes sure there is something to read from.
func (iv *imageValidator) fileRequired(img *domain.Image) error {
	if img.File == nil {
		return errs.FieldErrorf(errs.EINVALID, "image", "No file was submitted.")
	}
	return nil
}

// belowMaxSize makes sure that the image to be uploaded does not exceed MaxUploadSize.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if size == 0 {
		return errs.FieldErrorf(errs.EINVALID, "image", "The submitted file is empty.")
	}
	if size > domain.MaxUploadSize {
		return errs.FieldErrorf(errs.EINVALID, "image",
			"Image %s exceeds upload size limit of %dMB.", img.Filename, domain.MaxUploadSize>>20)
	}
	img.Size = size
	return nil
}

// contentTypeValid makes sure that the image to be uploaded is a valid gif, jpeg or png file.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	n, err := img.File.Read(buffer)
	if err != nil && err != io.EOF {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer[:n])
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			img.ContentType = contentType
			return nil
		}
	}
	return errs.FieldErrorf(errs.EINVALID, "image",
		"Upload a valid image. The file %s was either not an image or a corrupted image.", img.Filename)
}

// contentTypeExtensionMatch makes sure that the image's filename extension and content type match.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	if allowedTypes[img.Extension] != img.ContentType {
		return errs.FieldErrorf(errs.EINVALID, "image",
			"Image %s content-type %s does not match extension %s.", img.Filename, img.ContentType, img.Extension)
	}
	return nil
}

// extensionValid makes sure that the image to be uploaded has the extension .gif, .jpeg,
// .jpg or .png. If the extension is .jpg it will be renamed to .jpeg for consistency.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	if _, ok := allowedTypes[ext]; !ok {
		return errs.FieldErrorf(errs.EINVALID, "image",
			"Image %s invalid extension, must be .gif, .jpeg or .png.", img.Filename)
	}
	img.Extension = ext
	return nil
}

// fileNameUnique replaces the image's name with a random UUID.
func (iv *imageValidator) fileNameUnique(img *domain.Image) error {
	img.Filename = uuid.NewString() + img.Extension
	return nil
}

// resetFilePointer sets the file pointer back to beginning of the file,
// so that subsequent reads can properly read from the beginning again.
func resetFilePointer(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// Create creates the images directory if necessary and copies the file data
// from the domain.Image object into a new file inside it.
func (ic *imageCrud) Create(img *domain.Image) error {
	dir, err := ic.mkImagePath()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, img.Filename)
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = io.Copy(dst, img.File); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return fmt.Errorf("err storing image %s: %w", img.Filename, err)
	}
	if err = dst.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("err storing image %s: %w", img.Filename, err)
	}
	return nil
}

// Delete removes a stored image from the filesystem. Paths escaping the images directory are refused.
func (ic *imageCrud) Delete(relativePath string) error {
	if relativePath == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.Dir(clean) != domain.ImagesDir {
		return errs.Errorf(errs.EINVALID, "Invalid image path.")
	}
	err := os.Remove(filepath.Join(ic.mediaRoot, clean))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// mkImagePath creates the directory post images are stored in.
func (ic *imageCrud) mkImagePath() (string, error) {
	dir := filepath.Join(ic.mediaRoot, domain.ImagesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
