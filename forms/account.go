package forms

import "strings"

// SignupInput holds the raw values of a submitted signup form.
type SignupInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Name      string `form:"name" validate:"max=150"`
	Password  string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

// SignupData is a validated signup form.
type SignupData struct {
	Username string
	Name     string
	Password string
}

// Signup validates a submitted signup form. Username availability is checked
// by the user service when the account is stored.
func (v *Validator) Signup(in SignupInput) (*SignupData, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if fe := v.check(in); len(fe) > 0 {
		return nil, fe
	}
	return &SignupData{
		Username: in.Username,
		Name:     in.Name,
		Password: in.Password,
	}, nil
}

// LoginInput holds the raw values of a submitted login form.
type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Login validates that both credentials have been submitted.
func (v *Validator) Login(in LoginInput) (*LoginInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	if fe := v.check(in); len(fe) > 0 {
		return nil, fe
	}
	return &in, nil
}

// GroupInput holds the raw values of a new group.
type GroupInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description"`
}

// Group validates a new group. Slug availability is checked by the group service.
func (v *Validator) Group(in GroupInput) (*GroupInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if fe := v.check(in); len(fe) > 0 {
		return nil, fe
	}
	return &in, nil
}
