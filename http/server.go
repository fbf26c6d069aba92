package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"yatube/auth"
	"yatube/crud"
	"yatube/domain"
	"yatube/forms"
)

// Config holds the settings of the web server that don't come from the services.
type Config struct {
	IsProd bool
	// CSRFKey enables CSRF protection of all unsafe requests if it's not empty.
	CSRFKey string
	// MediaRoot is the directory uploaded images are served from.
	MediaRoot string
	// CacheTTL is how long a cached page is served. Zero disables the page cache.
	CacheTTL time.Duration
	// LoginRate and LoginBurst throttle login attempts across all clients.
	LoginRate  rate.Limit
	LoginBurst int
}

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also resolves the identity of the
// requesting user before handing things over to one of the crud services.
type Server struct {
	router  *mux.Router
	handler http.Handler
	us      domain.UserService
	gs      domain.GroupService
	ps      domain.PostService
	cs      domain.CommentService
	fs      domain.FollowService
	is      domain.ImageService

	forms     *forms.Validator
	pages     domain.PageCache
	cacheTTL  time.Duration
	logins    *rate.Limiter
	templates map[string]*template.Template
	logger    *zap.Logger
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(services *crud.Services, pageCache domain.PageCache, logger *zap.Logger, cfg Config) (*Server, error) {
	tpls, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LoginRate == 0 {
		cfg.LoginRate = rate.Every(time.Second)
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 10
	}

	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router:    mux.NewRouter(),
		us:        services.User,
		gs:        services.Group,
		ps:        services.Post,
		cs:        services.Comment,
		fs:        services.Follow,
		is:        services.Image,
		forms:     forms.New(services.Group, services.Image),
		pages:     pageCache,
		cacheTTL:  cfg.CacheTTL,
		logins:    rate.NewLimiter(cfg.LoginRate, cfg.LoginBurst),
		templates: tpls,
		logger:    logger,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerPostRoutes(s.router)
	s.registerProfileRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerMediaRoutes(s.router, cfg.MediaRoot)
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	// Set up middleware that needs to run on every matched request. The CSRF
	// middleware issues a token with every page and checks it on every POST.
	userMw := &auth.UserMw{Users: s.us, Logger: logger}
	if cfg.CSRFKey != "" {
		csrfMw := csrf.Protect([]byte(cfg.CSRFKey), csrf.Secure(cfg.IsProd), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	s.router.Use(userMw.Apply)
	s.handler = s.logRequests(s.router)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens and serves on the specified port until ctx is cancelled,
// then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// An identityHandler is a handler that is told explicitly who is making the request.
type identityHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// withIdentity passes the identity resolved by auth.UserMw on to h. Anonymous requests pass too.
func (s *Server) withIdentity(h identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, auth.FromContext(r.Context()))
	}
}

// requireAuth redirects anonymous requests to the login page, which sends the
// user back to the requested page after signing in.
func (s *Server) requireAuth(h identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.FromContext(r.Context())
		if !id.Authenticated() {
			http.Redirect(w, r, loginURL(r), http.StatusFound)
			return
		}
		h(w, r, id)
	}
}

// postID parses the post ID route parameter. The route pattern only admits digits,
// so a failure means the number is out of range and can't belong to any post.
func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
