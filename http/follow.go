package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"yatube/auth"
	"yatube/domain"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/follow/", s.requireAuth(s.handleFollowFeed)).Methods("GET")
	r.HandleFunc("/profile/{username}/follow/", s.requireAuth(s.handleCreateFollow)).Methods("GET")
	r.HandleFunc("/profile/{username}/unfollow/", s.requireAuth(s.handleDeleteFollow)).Methods("GET")
}

// handleFollowFeed handles the route "GET /follow/".
// It lists the posts of all authors the requesting user follows.
func (s *Server) handleFollowFeed(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	page, err := s.ps.ByFollower(id.ID(), r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "follow.html", listPage{Page: page})
}

// handleCreateFollow handles the route "GET /profile/{username}/follow/".
// Following an author twice changes nothing, and following yourself is silently ignored.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	author, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if !id.Is(author.ID) {
		follow := domain.Follow{FollowerID: id.ID(), AuthorID: author.ID}
		if err := s.fs.Create(&follow); err != nil {
			s.handleError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}

// handleDeleteFollow handles the route "GET /profile/{username}/unfollow/".
// Unfollowing an author that isn't followed yields the 404 page.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	author, err := s.us.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	follow := domain.Follow{FollowerID: id.ID(), AuthorID: author.ID}
	if err := s.fs.Delete(&follow); err != nil {
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusFound)
}
