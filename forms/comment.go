package forms

import "strings"

// CommentInput holds the raw values of a submitted comment form.
type CommentInput struct {
	Text string `form:"text" validate:"required"`
}

// CommentData is a validated comment form.
type CommentData struct {
	Text string
}

// Comment validates a submitted comment form. On failure the error is FieldErrors.
func (v *Validator) Comment(in CommentInput) (*CommentData, error) {
	in.Text = strings.TrimSpace(in.Text)
	if fe := v.check(in); len(fe) > 0 {
		return nil, fe
	}
	return &CommentData{Text: in.Text}, nil
}
