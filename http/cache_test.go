package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexIsServedFromCache(t *testing.T) {
	app := newTestApp(t, 10, Config{CacheTTL: time.Minute})
	leo := app.user("leo")
	posts := []int{app.post(leo, "first").ID, app.post(leo, "second").ID}

	cached := app.do(http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, cached.Code)
	assert.Contains(t, cached.Body.String(), "second")

	for _, id := range posts {
		p, err := app.services.Post.ByID(id)
		require.NoError(t, err)
		require.NoError(t, app.services.Post.Delete(p))
	}

	rec := app.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cached.Body.Bytes(), rec.Body.Bytes())

	// The page holds nothing viewer specific, so signed in users share the entry.
	rec = app.do(http.MethodGet, "/", nil, leo)
	assert.Equal(t, cached.Body.Bytes(), rec.Body.Bytes())

	require.NoError(t, app.pages.Clear(context.Background()))
	rec = app.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, cached.Body.Bytes(), rec.Body.Bytes())
	assert.Contains(t, rec.Body.String(), "No posts yet.")
}

func TestCacheKeysIncludeQuery(t *testing.T) {
	app := newTestApp(t, 1, Config{CacheTTL: time.Minute})
	leo := app.user("leo")
	app.post(leo, "older")
	app.post(leo, "newer")

	one := app.do(http.MethodGet, "/?page=1", nil, nil)
	two := app.do(http.MethodGet, "/?page=2", nil, nil)
	assert.Contains(t, one.Body.String(), "newer")
	assert.Contains(t, two.Body.String(), "older")

	_, ok, err := app.pages.Get(context.Background(), "/?page=2")
	require.NoError(t, err)
	assert.True(t, ok)
}
