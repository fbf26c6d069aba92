package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yatube/cache"
	"yatube/crud"
	"yatube/domain"
)

// testConfig writes a config using a sqlite database inside dir and returns its path.
func testConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeConfig(t, dir, fmt.Sprintf(`{
		"media_root": %q,
		"database": {"dialect": "sqlite", "path": %q}
	}`, filepath.Join(dir, "media"), filepath.Join(dir, "yatube.db")))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func openServices(t *testing.T, dir string) *crud.Services {
	t.Helper()
	db := NewDB(DatabaseConfig{Dialect: "sqlite", Path: filepath.Join(dir, "yatube.db")})
	require.NoError(t, Open(db, true))
	t.Cleanup(func() { _ = Close(db) })
	services, err := crud.NewServices(db.Gorm,
		crud.WithUser("secret-random-string", "secret-hmac-key"),
		crud.WithGroup(),
		crud.WithPost(10),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(filepath.Join(dir, "media")),
	)
	require.NoError(t, err)
	return services
}

func TestMigrateAndGroupCreate(t *testing.T) {
	dir := t.TempDir()
	config := testConfig(t, dir)

	out, err := runCommand(t, "--config", config, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated")

	out, err = runCommand(t, "--config", config, "group", "create", "--title", "Cats", "--slug", "cats")
	require.NoError(t, err)
	assert.Contains(t, out, "cats")

	_, err = runCommand(t, "--config", config, "group", "create", "--title", "Cats again", "--slug", "cats")
	assert.Error(t, err)
	_, err = runCommand(t, "--config", config, "group", "create", "--title", "Bad", "--slug", "not a slug")
	assert.Error(t, err)

	group, err := openServices(t, dir).Group.BySlug("cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats", group.Title)
}

func TestPostDelete(t *testing.T) {
	dir := t.TempDir()
	config := testConfig(t, dir)
	_, err := runCommand(t, "--config", config, "migrate")
	require.NoError(t, err)

	services := openServices(t, dir)
	u := &domain.User{Username: "leo", Password: "password-leo"}
	require.NoError(t, services.User.Create(u))
	p := &domain.Post{Text: "bye", AuthorID: u.ID}
	require.NoError(t, services.Post.Create(p))
	require.NoError(t, services.Comment.Create(&domain.Comment{PostID: p.ID, AuthorID: u.ID, Text: "so long"}))

	out, err := runCommand(t, "--config", config, "post", "delete", fmt.Sprint(p.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "deleted post")

	_, err = services.Post.ByID(p.ID)
	assert.Error(t, err)
	comments, err := services.Comment.ByPost(p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = runCommand(t, "--config", config, "post", "delete", "abc")
	assert.Error(t, err)
}

func TestCacheClearWithMemoryDriver(t *testing.T) {
	dir := t.TempDir()
	out, err := runCommand(t, "--config", testConfig(t, dir), "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "memory cache")
	assert.Contains(t, out, "SIGHUP")
}

func TestClearOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pages := cache.NewMemory()
	require.NoError(t, pages.Set(ctx, "/", []byte("index"), time.Minute))

	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		clearOnSignal(ctx, pages, sig, zap.NewNop())
		close(done)
	}()

	sig <- syscall.SIGHUP
	assert.Eventually(t, func() bool {
		_, ok, err := pages.Get(ctx, "/")
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clearOnSignal did not return after cancel")
	}
}
