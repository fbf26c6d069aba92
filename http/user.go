package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"yatube/auth"
	"yatube/domain"
)

func (s *Server) registerProfileRoutes(r *mux.Router) {
	// The posts of a specific user.
	r.HandleFunc("/profile/{username}/", s.withIdentity(s.handleProfile)).Methods("GET")
}

type profilePage struct {
	Author *domain.User
	Page   *domain.Page
	// CanFollow is false for anonymous visitors and for the author's own profile.
	CanFollow bool
	// Following reports whether the visitor follows the author.
	Following bool
}

// handleProfile handles the route "GET /profile/{username}/".
// It lists the user's posts and whether the visitor already follows them.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	// Fetch the user from the database.
	author, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	page, err := s.ps.ByAuthor(author.ID, r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	// Check if the authed user is following that user.
	data := profilePage{Author: author, Page: page}
	if id.Authenticated() && !id.Is(author.ID) {
		data.CanFollow = true
		data.Following, err = s.fs.Exists(id.ID(), author.ID)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
	}
	s.render(w, r, http.StatusOK, "profile.html", data)
}
