package forms

import (
	"io"
	"strconv"
	"strings"

	"yatube/domain"
	"yatube/errs"
)

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// Upload is a file submitted with a form.
type Upload struct {
	File     io.ReadSeeker
	Filename string
}

// PostInput holds the raw values of a submitted post form.
type PostInput struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group"`
	// Image is nil if no file was submitted.
	Image *Upload `form:"-"`
	// ClearImage asks for an existing image to be removed.
	ClearImage bool `form:"-"`
}

// PostData is a validated post form.
type PostData struct {
	Text  string
	Group *domain.Group
	// Image is nil unless a new, valid image has been submitted.
	Image      *domain.Image
	ClearImage bool
}

// Apply copies the validated values onto post. Author and ID are left alone.
func (d *PostData) Apply(post *domain.Post) {
	post.Text = d.Text
	post.Group = d.Group
	post.GroupID = nil
	if d.Group != nil {
		id := d.Group.ID
		post.GroupID = &id
	}
}

// Post validates a submitted post form. On failure the returned error is FieldErrors,
// unless looking up the referenced group failed for reasons other than it not existing.
func (v *Validator) Post(in PostInput) (*PostData, error) {
	in.Text = strings.TrimSpace(in.Text)
	fe := v.check(in)

	data := &PostData{
		Text:       in.Text,
		ClearImage: in.ClearImage,
	}

	group, err := v.group(in.Group)
	if err != nil {
		if errs.ErrorCode(err) != errs.ENOTFOUND && errs.ErrorCode(err) != errs.EINVALID {
			return nil, err
		}
		fe.Add("group", invalidChoice)
	}
	data.Group = group

	if in.Image != nil {
		img := &domain.Image{
			File:     in.Image.File,
			Filename: in.Image.Filename,
		}
		if err := v.images.Validate(img); err != nil {
			if errs.ErrorCode(err) == errs.EINVALID {
				fe.Add("image", errs.ErrorMessage(err))
			} else {
				fe.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
			}
		} else {
			data.Image = img
		}
	}

	if len(fe) > 0 {
		return nil, fe
	}
	return data, nil
}

// group resolves the raw group reference. An empty reference means no group.
func (v *Validator) group(raw string) (*domain.Group, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil, errs.Errorf(errs.EINVALID, invalidChoice)
	}
	return v.groups.ByID(id)
}
