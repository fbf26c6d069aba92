package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"yatube/domain"
	"yatube/errs"
)

// CookieName is the name of the cookie holding a user's remember token.
const CookieName = "remember_token"

// RememberFinder looks up users by their remember token.
type RememberFinder interface {
	ByRemember(token string) (*domain.User, error)
}

// UserMw resolves the requesting user from the remember token cookie and
// stores it in the request context. Requests without a valid token pass on anonymously.
type UserMw struct {
	Users  RememberFinder
	Logger *zap.Logger
}

// Apply wraps next with the user lookup.
func (mw *UserMw) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Uploaded images never depend on the current user, so the lookup is skipped.
		if strings.HasPrefix(r.URL.Path, "/media/") {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := mw.Users.ByRemember(cookie.Value)
		if err != nil {
			if errs.ErrorCode(err) == errs.EINTERNAL && mw.Logger != nil {
				mw.Logger.Error("err looking up remember token", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), user)))
	})
}
