// Package forms validates untrusted input before it reaches the services.
// Every validator returns either a typed value ready for persistence or a
// FieldErrors value describing what is wrong with each field. Validators never
// set ownership fields such as a post's author; that is up to the caller.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"yatube/domain"
	"yatube/errs"
)

// FieldErrors maps form field names to their validation messages.
// The empty string key holds errors that belong to no particular field.
type FieldErrors map[string][]string

// Add appends a message to a field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Get returns the messages of a field. It is safe to call on a nil map.
func (fe FieldErrors) Get(field string) []string {
	return fe[field]
}

// Error implements the error interface, listing the fields in a stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(fe[f], " ")))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// AsFieldErrors extracts FieldErrors from err. An application error of code
// EINVALID, like a taken username, is turned into a single field message.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	if errs.ErrorCode(err) == errs.EINVALID {
		fe = FieldErrors{}
		fe.Add(errs.ErrorField(err), errs.ErrorMessage(err))
		return fe, true
	}
	return nil, false
}

// GroupFinder looks up the group a post is tagged with.
type GroupFinder interface {
	ByID(id int) (*domain.Group, error)
}

// ImageValidator checks an uploaded image before it is stored.
type ImageValidator interface {
	Validate(img *domain.Image) error
}

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Validator validates all forms of the application.
type Validator struct {
	validate *validator.Validate
	groups   GroupFinder
	images   ImageValidator
}

// New returns a Validator resolving group references with groups and checking
// uploads with images.
func New(groups GroupFinder, images ImageValidator) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	return &Validator{
		validate: v,
		groups:   groups,
		images:   images,
	}
}

// check runs the struct rules of in and collects their messages.
func (v *Validator) check(in interface{}) FieldErrors {
	fe := FieldErrors{}
	err := v.validate.Struct(in)
	if err == nil {
		return fe
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add("", "Invalid form data.")
		return fe
	}
	for _, e := range verrs {
		fe.Add(e.Field(), message(e))
	}
	return fe
}

// message turns a failed rule into a human-readable message.
func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", e.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	default:
		return "Enter a valid value."
	}
}
