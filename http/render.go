package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"

	"yatube/domain"
	"yatube/errs"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages lists every template rendered by a handler. Each one is parsed together with base.html.
var pages = []string{
	"index.html",
	"group.html",
	"profile.html",
	"post_detail.html",
	"post_form.html",
	"follow.html",
	"signup.html",
	"login.html",
	"not_found.html",
	"error.html",
}

var funcs = template.FuncMap{
	"mediaURL": domain.MediaURL,
}

// parseTemplates parses all pages up front, so a broken template fails at startup.
func parseTemplates() (map[string]*template.Template, error) {
	tpls := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, err
		}
		tpls[page] = t
	}
	return tpls, nil
}

// templateData is handed to every template. Data holds the page specific values.
type templateData struct {
	CSRF template.HTML
	Data interface{}
}

// render executes a page into a buffer first, so a failing template never produces half a page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	t, ok := s.templates[page]
	if !ok {
		errs.ReturnError(w, r, errs.Errorf(errs.EINTERNAL, "Unknown template %s.", page))
		return
	}
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "base", templateData{
		CSRF: csrf.TemplateField(r),
		Data: data,
	})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		errs.LogError(r, err)
	}
}

// handleNotFound renders the 404 page. It is also the router's NotFoundHandler.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found.html", struct{ Path string }{r.URL.Path})
}

// handleError maps an error to its page: unknown records yield the 404 page,
// everything else is logged and answered with the 500 page.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		s.handleNotFound(w, r)
		return
	}
	errs.LogError(r, err)
	s.render(w, r, http.StatusInternalServerError, "error.html", struct{ Message string }{errs.ErrorMessage(err)})
}
