package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"yatube/auth"
	"yatube/domain"
	"yatube/forms"
)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/auth/signup/", s.withIdentity(s.handleSignup)).Methods("GET", "POST")
	r.HandleFunc("/auth/login/", s.withIdentity(s.handleLogin)).Methods("GET", "POST")
	r.HandleFunc("/auth/logout/", s.withIdentity(s.handleLogout)).Methods("POST")
}

type signupPage struct {
	Username string
	Name     string
	Errors   forms.FieldErrors
}

// handleSignup handles the route "/auth/signup/".
// It creates a new account, signs the new user in and redirects to the index page.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "signup.html", signupPage{})
		return
	}

	// Validate the submitted form.
	in := forms.SignupInput{
		Username:  r.PostFormValue("username"),
		Name:      r.PostFormValue("name"),
		Password:  r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
	page := signupPage{Username: in.Username, Name: in.Name}
	data, err := s.forms.Signup(in)
	if fe, ok := forms.AsFieldErrors(err); ok {
		page.Errors = fe
		s.render(w, r, http.StatusOK, "signup.html", page)
		return
	} else if err != nil {
		s.handleError(w, r, err)
		return
	}

	// Store the user. A taken username is reported on the form.
	user := &domain.User{
		Username: data.Username,
		Name:     data.Name,
		Password: data.Password,
	}
	if err := s.us.Create(user); err != nil {
		if fe, ok := forms.AsFieldErrors(err); ok {
			page.Errors = fe
			s.render(w, r, http.StatusOK, "signup.html", page)
			return
		}
		s.handleError(w, r, err)
		return
	}

	if err := s.signIn(w, user); err != nil {
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

type loginPage struct {
	Username string
	Next     string
	Errors   forms.FieldErrors
}

// handleLogin handles the route "/auth/login/".
// On success it redirects to the local path given by the "next" parameter, or to the index page.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	page := loginPage{Next: r.FormValue("next")}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "login.html", page)
		return
	}

	page.Username = r.PostFormValue("username")
	if !s.logins.Allow() {
		page.Errors = forms.FieldErrors{}
		page.Errors.Add("", "Too many login attempts. Please try again later.")
		s.render(w, r, http.StatusTooManyRequests, "login.html", page)
		return
	}

	creds, err := s.forms.Login(forms.LoginInput{
		Username: page.Username,
		Password: r.PostFormValue("password"),
	})
	if fe, ok := forms.AsFieldErrors(err); ok {
		page.Errors = fe
		s.render(w, r, http.StatusOK, "login.html", page)
		return
	} else if err != nil {
		s.handleError(w, r, err)
		return
	}

	user, err := s.us.Authenticate(creds.Username, creds.Password)
	if err != nil {
		if fe, ok := forms.AsFieldErrors(err); ok {
			page.Errors = fe
			s.render(w, r, http.StatusOK, "login.html", page)
			return
		}
		s.handleError(w, r, err)
		return
	}

	if err := s.signIn(w, user); err != nil {
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, safeNext(page.Next), http.StatusFound)
}

// handleLogout handles the route "POST /auth/logout/".
// It rotates the user's remember token, so the old cookie stops working everywhere.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	cookie := http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)

	if id.Authenticated() {
		token, err := s.us.MakeRememberToken()
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		id.User.Remember = token
		if err := s.us.Update(id.User); err != nil {
			s.handleError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// signIn is used to sign the given user in via cookies.
// A user loaded from the database has no plain remember token, so a new one is issued.
func (s *Server) signIn(w http.ResponseWriter, user *domain.User) error {
	if user.Remember == "" {
		token, err := s.us.MakeRememberToken()
		if err != nil {
			return err
		}
		user.Remember = token
		if err = s.us.Update(user); err != nil {
			return err
		}
	}

	cookie := http.Cookie{
		Name:     auth.CookieName,
		Value:    user.Remember,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
	return nil
}

// loginURL is the login page that sends the user back to r's path afterwards.
func loginURL(r *http.Request) string {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	return "/auth/login/?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext returns next if it is a path on this site, and "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
