package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"yatube/auth"
	"yatube/domain"
	"yatube/errs"
	"yatube/forms"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	// Public listings. Only the index is served from the page cache.
	r.HandleFunc("/", s.cachePage(s.withIdentity(s.handleIndex))).Methods("GET")
	r.HandleFunc("/group/{slug}/", s.withIdentity(s.handleGroupPosts)).Methods("GET")

	// A single post with its comments. POST binds the comment form without storing it.
	r.HandleFunc("/posts/{id:[0-9]+}/", s.withIdentity(s.handlePostDetail)).Methods("GET", "POST")

	// Writing posts and comments.
	r.HandleFunc("/create/", s.requireAuth(s.handleCreatePost)).Methods("GET", "POST")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", s.requireAuth(s.handleEditPost)).Methods("GET", "POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comment/", s.requireAuth(s.handleAddComment)).Methods("POST")
}

type listPage struct {
	Page *domain.Page
}

// handleIndex handles the route "GET /". It lists all posts, newest first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	page, err := s.ps.All(r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", listPage{Page: page})
}

type groupPage struct {
	Group *domain.Group
	Page  *domain.Page
}

// handleGroupPosts handles the route "GET /group/{slug}/".
func (s *Server) handleGroupPosts(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	group, err := s.gs.BySlug(mux.Vars(r)["slug"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	page, err := s.ps.ByGroup(group.ID, r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "group.html", groupPage{Group: group, Page: page})
}

type postDetailPage struct {
	Post        *domain.Post
	Comments    []domain.Comment
	AuthorPosts int64
	CanEdit     bool
	CommentText string
	Errors      forms.FieldErrors
}

// handlePostDetail handles the route "/posts/{id}/".
// A POST validates the submitted comment and shows its errors, but stores nothing;
// comments are stored by handleAddComment.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	var fe forms.FieldErrors
	text := ""
	if r.Method == http.MethodPost {
		text = r.PostFormValue("text")
		if _, err := s.forms.Comment(forms.CommentInput{Text: text}); err != nil {
			var isForm bool
			if fe, isForm = forms.AsFieldErrors(err); !isForm {
				s.handleError(w, r, err)
				return
			}
		}
	}
	s.renderPostDetail(w, r, id, post, text, fe)
}

// renderPostDetail renders a post with its comments and the comment form.
func (s *Server) renderPostDetail(w http.ResponseWriter, r *http.Request, id auth.Identity,
	post *domain.Post, commentText string, fe forms.FieldErrors) {
	comments, err := s.cs.ByPost(post.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	authorPosts, err := s.ps.ByAuthor(post.AuthorID, "")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "post_detail.html", postDetailPage{
		Post:        post,
		Comments:    comments,
		AuthorPosts: authorPosts.Total,
		CanEdit:     id.Is(post.AuthorID),
		CommentText: commentText,
		Errors:      fe,
	})
}

type postFormPage struct {
	IsEdit bool
	PostID int
	Text   string
	Group  string
	Image  string
	Groups []domain.Group
	Errors forms.FieldErrors
}

// renderPostForm renders the create and edit form, together with the groups to choose from.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, page postFormPage) {
	groups, err := s.gs.All()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	page.Groups = groups
	s.render(w, r, http.StatusOK, "post_form.html", page)
}

// handleCreatePost handles the route "/create/".
// It stores a new post by the requesting user and redirects to the user's profile.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method == http.MethodGet {
		s.renderPostForm(w, r, postFormPage{})
		return
	}

	// Parse and validate the submitted form.
	in, closeFile, err := parsePostForm(w, r)
	defer closeFile()
	page := postFormPage{Text: in.Text, Group: in.Group}
	if s.formFailed(w, r, err, page) {
		return
	}
	data, err := s.forms.Post(in)
	if s.formFailed(w, r, err, page) {
		return
	}

	// The author is always the requesting user, never a form value.
	post := &domain.Post{AuthorID: id.User.ID}
	data.Apply(post)

	// Store the image first, so the post can reference it.
	if data.Image != nil {
		if err := s.is.Create(data.Image); s.formFailed(w, r, err, page) {
			return
		}
		post.Image = data.Image.RelativePath()
	}

	if err := s.ps.Create(post); err != nil {
		s.removeImage(r, post.Image)
		s.formFailed(w, r, err, page)
		return
	}
	http.Redirect(w, r, "/profile/"+id.User.Username+"/", http.StatusFound)
}

// handleEditPost handles the route "/posts/{id}/edit/".
// Only the author may edit a post; anybody else is sent back to the post without changes.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	detailURL := "/posts/" + strconv.Itoa(post.ID) + "/"

	// Check if the post belongs to the authed user.
	if !id.Is(post.AuthorID) {
		http.Redirect(w, r, detailURL, http.StatusFound)
		return
	}

	page := postFormPage{IsEdit: true, PostID: post.ID, Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		page.Group = strconv.Itoa(*post.GroupID)
	}
	if r.Method == http.MethodGet {
		s.renderPostForm(w, r, page)
		return
	}

	// Parse and validate the submitted form.
	in, closeFile, err := parsePostForm(w, r)
	defer closeFile()
	page.Text, page.Group = in.Text, in.Group
	if s.formFailed(w, r, err, page) {
		return
	}
	data, err := s.forms.Post(in)
	if s.formFailed(w, r, err, page) {
		return
	}

	oldImage := post.Image
	data.Apply(post)
	if data.Image != nil {
		if err := s.is.Create(data.Image); s.formFailed(w, r, err, page) {
			return
		}
		post.Image = data.Image.RelativePath()
	} else if data.ClearImage {
		post.Image = ""
	}

	if err := s.ps.Update(post); err != nil {
		if post.Image != oldImage {
			s.removeImage(r, post.Image)
		}
		s.formFailed(w, r, err, page)
		return
	}

	// The replaced image is no longer referenced by any post.
	if post.Image != oldImage {
		s.removeImage(r, oldImage)
	}
	http.Redirect(w, r, detailURL, http.StatusFound)
}

// handleAddComment handles the route "POST /posts/{id}/comment/".
// An invalid comment is shown on the post page together with its errors.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	text := r.PostFormValue("text")
	data, err := s.forms.Comment(forms.CommentInput{Text: text})
	if fe, isForm := forms.AsFieldErrors(err); isForm {
		s.renderPostDetail(w, r, id, post, text, fe)
		return
	} else if err != nil {
		s.handleError(w, r, err)
		return
	}

	// Post and author come from the url and the identity, never from the form.
	comment := &domain.Comment{
		PostID:   post.ID,
		AuthorID: id.User.ID,
		Text:     data.Text,
	}
	if err := s.cs.Create(comment); err != nil {
		if fe, isForm := forms.AsFieldErrors(err); isForm {
			s.renderPostDetail(w, r, id, post, text, fe)
			return
		}
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/posts/"+strconv.Itoa(post.ID)+"/", http.StatusFound)
}

// loadPost fetches the post named by the url. If that fails, the response has been written.
func (s *Server) loadPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	pid, ok := postID(r)
	if !ok {
		s.handleNotFound(w, r)
		return nil, false
	}
	post, err := s.ps.ByID(pid)
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	return post, true
}

// formFailed reports whether err stops a post form submission. Validation errors
// re-render the form with status 200; anything else is handled as a server error.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, err error, page postFormPage) bool {
	if err == nil {
		return false
	}
	if fe, ok := forms.AsFieldErrors(err); ok {
		page.Errors = fe
		s.renderPostForm(w, r, page)
		return true
	}
	s.handleError(w, r, err)
	return true
}

// removeImage deletes an image file that no post references. Failures are only logged.
func (s *Server) removeImage(r *http.Request, relativePath string) {
	if relativePath == "" {
		return
	}
	if err := s.is.Delete(relativePath); err != nil {
		s.logger.Warn("err removing image",
			zap.String("image", relativePath),
			zap.String("code", errs.ErrorCode(err)),
			zap.Error(err))
	}
}
