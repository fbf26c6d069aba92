package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/domain"
)

func follows(t *testing.T, app *testApp, follower, author *domain.User) bool {
	t.Helper()
	ok, err := app.services.Follow.Exists(follower.ID, author.ID)
	require.NoError(t, err)
	return ok
}

func TestFollowAndUnfollow(t *testing.T) {
	app := newTestApp(t, 10, Config{})
	reader := app.user("reader")
	leo := app.user("leo")

	rec := app.do(http.MethodGet, "/profile/leo/", nil, reader)
	assert.Contains(t, rec.Body.String(), "/profile/leo/follow/")

	// Following twice leaves one follow behind.
	for i := 0; i < 2; i++ {
		rec = app.do(http.MethodGet, "/profile/leo/follow/", nil, reader)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))
	}
	assert.True(t, follows(t, app, reader, leo))

	rec = app.do(http.MethodGet, "/profile/leo/", nil, reader)
	assert.Contains(t, rec.Body.String(), "/profile/leo/unfollow/")

	rec = app.do(http.MethodGet, "/profile/leo/unfollow/", nil, reader)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))
	assert.False(t, follows(t, app, reader, leo))

	rec = app.do(http.MethodGet, "/profile/leo/unfollow/", nil, reader)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowSelfIsIgnored(t *testing.T) {
	app := newTestApp(t, 10, Config{})
	leo := app.user("leo")

	rec := app.do(http.MethodGet, "/profile/leo/follow/", nil, leo)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))
	assert.False(t, follows(t, app, leo, leo))

	rec = app.do(http.MethodGet, "/profile/leo/", nil, leo)
	assert.NotContains(t, rec.Body.String(), "/profile/leo/follow/")

	rec = app.do(http.MethodGet, "/profile/nobody/follow/", nil, leo)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowFeed(t *testing.T) {
	app := newTestApp(t, 10, Config{})
	reader := app.user("reader")
	leo := app.user("leo")
	anna := app.user("anna")
	app.post(leo, "from leo")
	app.post(anna, "from anna")

	rec := app.do(http.MethodGet, "/follow/", nil, reader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, strings.Count(rec.Body.String(), "<article>"))

	app.do(http.MethodGet, "/profile/leo/follow/", nil, reader)
	rec = app.do(http.MethodGet, "/follow/", nil, reader)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "<article>"))
	assert.Contains(t, body, "from leo")
	assert.NotContains(t, body, "from anna")

	// Follows are directed: leo's feed doesn't include the reader's subscriptions.
	rec = app.do(http.MethodGet, "/follow/", nil, leo)
	assert.Equal(t, 0, strings.Count(rec.Body.String(), "<article>"))
}
