// Package auth carries the identity of the requesting user through a request.
// Handlers receive an Identity explicitly; it is resolved once per request by
// UserMw from the remember token cookie.
package auth

import (
	"context"

	"yatube/domain"
)

const (
	userKey privateKey = "user"
)

type privateKey string

// Identity is the requesting user, or anonymous if User is nil.
type Identity struct {
	User *domain.User
}

// Authenticated reports whether the request belongs to a signed in user.
func (i Identity) Authenticated() bool {
	return i.User != nil
}

// Is reports whether the identity is the user with the given ID.
func (i Identity) Is(userID int) bool {
	return i.User != nil && i.User.ID == userID
}

// ID returns the user's ID, or 0 for anonymous identities.
func (i Identity) ID() int {
	if i.User == nil {
		return 0
	}
	return i.User.ID
}

// SetUser returns a copy of ctx carrying user as the request's identity.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the signed in user stored in ctx, or nil.
func GetUser(ctx context.Context) *domain.User {
	if temp := ctx.Value(userKey); temp != nil {
		if user, ok := temp.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// FromContext returns the Identity stored in ctx. It is anonymous if none was stored.
func FromContext(ctx context.Context) Identity {
	return Identity{User: GetUser(ctx)}
}
