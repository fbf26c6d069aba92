package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/domain"
	"yatube/errs"
)

type groupStub map[int]*domain.Group

func (g groupStub) ByID(id int) (*domain.Group, error) {
	if group, ok := g[id]; ok {
		return group, nil
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
}

type failingGroups struct{}

func (failingGroups) ByID(int) (*domain.Group, error) {
	return nil, errors.New("connection refused")
}

type imageStub struct {
	err error
}

func (s imageStub) Validate(img *domain.Image) error {
	if s.err != nil {
		return s.err
	}
	img.Extension = ".gif"
	img.ContentType = "image/gif"
	return nil
}

func newTestValidator() *Validator {
	groups := groupStub{1: {ID: 1, Title: "Cats", Slug: "cats"}}
	return New(groups, imageStub{})
}

func TestPostValid(t *testing.T) {
	v := newTestValidator()
	data, err := v.Post(PostInput{Text: "  hello  ", Group: "1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", data.Text)
	require.NotNil(t, data.Group)
	assert.Equal(t, "cats", data.Group.Slug)
	assert.Nil(t, data.Image)

	var post domain.Post
	data.Apply(&post)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, 1, *post.GroupID)
	assert.Zero(t, post.AuthorID)
}

func TestPostWithoutGroup(t *testing.T) {
	v := newTestValidator()
	data, err := v.Post(PostInput{Text: "hello"})
	require.NoError(t, err)
	assert.Nil(t, data.Group)

	post := domain.Post{GroupID: new(int)}
	data.Apply(&post)
	assert.Nil(t, post.GroupID)
}

func TestPostFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"empty text", PostInput{Text: ""}, "text"},
		{"blank text", PostInput{Text: " \n\t "}, "text"},
		{"group not a number", PostInput{Text: "x", Group: "cats"}, "group"},
		{"group negative", PostInput{Text: "x", Group: "-1"}, "group"},
		{"unknown group", PostInput{Text: "x", Group: "42"}, "group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestValidator().Post(tt.in)
			fe, ok := AsFieldErrors(err)
			require.True(t, ok, "expected field errors, got %v", err)
			assert.NotEmpty(t, fe.Get(tt.field))
		})
	}
}

func TestPostInvalidImage(t *testing.T) {
	v := New(groupStub{}, imageStub{err: errs.Errorf(errs.EINVALID, "Image x.txt invalid extension.")})
	_, err := v.Post(PostInput{Text: "x", Image: &Upload{File: strings.NewReader("nope"), Filename: "x.txt"}})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Image x.txt invalid extension."}, fe.Get("image"))

	v = New(groupStub{}, imageStub{err: errors.New("read failed")})
	_, err = v.Post(PostInput{Text: "x", Image: &Upload{File: strings.NewReader(""), Filename: "x.gif"}})
	fe, ok = AsFieldErrors(err)
	require.True(t, ok)
	assert.Len(t, fe.Get("image"), 1)
}

func TestPostValidImage(t *testing.T) {
	v := newTestValidator()
	data, err := v.Post(PostInput{Text: "x", Image: &Upload{File: strings.NewReader("GIF89a"), Filename: "small.gif"}})
	require.NoError(t, err)
	require.NotNil(t, data.Image)
	assert.Equal(t, "small.gif", data.Image.Filename)
}

func TestPostGroupLookupFailure(t *testing.T) {
	v := New(failingGroups{}, imageStub{})
	_, err := v.Post(PostInput{Text: "x", Group: "1"})
	require.Error(t, err)
	_, ok := AsFieldErrors(err)
	assert.False(t, ok)
}

func TestComment(t *testing.T) {
	v := newTestValidator()
	data, err := v.Comment(CommentInput{Text: " nice post "})
	require.NoError(t, err)
	assert.Equal(t, "nice post", data.Text)

	_, err = v.Comment(CommentInput{Text: "   "})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This field is required."}, fe.Get("text"))
}

func TestSignup(t *testing.T) {
	v := newTestValidator()
	data, err := v.Signup(SignupInput{Username: "leo", Password: "password1", Password2: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "leo", data.Username)

	_, err = v.Signup(SignupInput{Username: "bad name!", Password: "short", Password2: "other"})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.NotEmpty(t, fe.Get("username"))
	assert.NotEmpty(t, fe.Get("password1"))
	assert.NotEmpty(t, fe.Get("password2"))
}

func TestGroup(t *testing.T) {
	v := newTestValidator()
	_, err := v.Group(GroupInput{Title: "Cats", Slug: "cats-and-dogs"})
	require.NoError(t, err)

	_, err = v.Group(GroupInput{Title: "", Slug: "not a slug"})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.NotEmpty(t, fe.Get("title"))
	assert.NotEmpty(t, fe.Get("slug"))
}

func TestAsFieldErrorsFromServiceError(t *testing.T) {
	err := errs.FieldErrorf(errs.EINVALID, "username", "This username is already taken.")
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This username is already taken."}, fe.Get("username"))

	_, ok = AsFieldErrors(errors.New("boom"))
	assert.False(t, ok)
}
