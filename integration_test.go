//go:build integration
// +build integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"yatube/crud"
	"yatube/domain"
	"yatube/errs"
)

// setupPostgres starts a PostgreSQL container and returns services migrated against it.
func setupPostgres(t *testing.T) *crud.Services {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("yatube"),
		postgres.WithUsername("yatube"),
		postgres.WithPassword("yatube"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("err terminating container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db := NewDB(DatabaseConfig{
		Dialect:  "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "yatube",
		Password: "yatube",
		Name:     "yatube",
	})
	require.NoError(t, Open(db, true))
	t.Cleanup(func() { _ = Close(db) })

	services, err := crud.NewServices(db.Gorm,
		crud.WithUser("secret-random-string", "secret-hmac-key"),
		crud.WithGroup(),
		crud.WithPost(10),
		crud.WithComment(),
		crud.WithFollow(),
	)
	require.NoError(t, err)
	require.NoError(t, services.AutoMigrate())
	return services
}

func TestPostgresFollowAndFeed(t *testing.T) {
	s := setupPostgres(t)

	reader := &domain.User{Username: "reader", Password: "password-reader"}
	author := &domain.User{Username: "author", Password: "password-author"}
	require.NoError(t, s.User.Create(reader))
	require.NoError(t, s.User.Create(author))

	first := &domain.Follow{FollowerID: reader.ID, AuthorID: author.ID}
	require.NoError(t, s.Follow.Create(first))
	again := &domain.Follow{FollowerID: reader.ID, AuthorID: author.ID}
	require.NoError(t, s.Follow.Create(again))
	assert.Equal(t, first.ID, again.ID)

	for i := 0; i < 12; i++ {
		require.NoError(t, s.Post.Create(&domain.Post{Text: "hello", AuthorID: author.ID}))
	}
	feed, err := s.Post.ByFollower(reader.ID, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(12), feed.Total)
	assert.Len(t, feed.Posts, 2)

	require.NoError(t, s.Follow.Delete(&domain.Follow{FollowerID: reader.ID, AuthorID: author.ID}))
	err = s.Follow.Delete(&domain.Follow{FollowerID: reader.ID, AuthorID: author.ID})
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestPostgresUsernameTaken(t *testing.T) {
	s := setupPostgres(t)

	require.NoError(t, s.User.Create(&domain.User{Username: "leo", Password: "password-leo"}))
	err := s.User.Create(&domain.User{Username: "leo", Password: "password-other"})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	assert.Equal(t, "username", errs.ErrorField(err))
}
