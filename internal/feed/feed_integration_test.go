package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sofiagray/inkwell/backend/internal/config"
	"github.com/sofiagray/inkwell/backend/internal/database"
	"github.com/sofiagray/inkwell/backend/internal/feed"
	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/repository"
)

// setupDB starts a throwaway Postgres and opens the migrated database.
func setupDB(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("inkwell_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.New(config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "inkwell_test",
		SSLMode:         "disable",
		MaxIdleConns:    2,
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func seedUser(t *testing.T, db *database.Database, username string) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.DB.Create(&u).Error)
	return u
}

func seedGroup(t *testing.T, db *database.Database, slug string) models.Group {
	t.Helper()
	g := models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, db.DB.Create(&g).Error)
	return g
}

// seedPost creates a post with an explicit creation time so ordering is
// under test control.
func seedPost(t *testing.T, db *database.Database, author models.User, text string, groupID *int, at time.Time) models.Post {
	t.Helper()
	p := models.Post{
		Text:      text,
		AuthorID:  author.ID,
		GroupID:   groupID,
		CreatedAt: at,
	}
	require.NoError(t, db.DB.Create(&p).Error)
	return p
}

func TestFeedVariants(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	svc := feed.NewService(db.DB)

	anna := seedUser(t, db, "anna")
	bob := seedUser(t, db, "bob")
	group := seedGroup(t, db, "test-slug")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	// 12 posts by anna (even ones in the group), 1 by bob, oldest first.
	for i := 0; i < 12; i++ {
		var gid *int
		if i%2 == 0 {
			gid = &group.ID
		}
		seedPost(t, db, anna, fmt.Sprintf("anna post %d", i), gid, base.Add(time.Duration(i)*time.Minute))
	}
	seedPost(t, db, bob, "bob post", nil, base.Add(13*time.Minute))

	t.Run("index is newest first and windowed", func(t *testing.T) {
		page, err := svc.Index(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, page.Posts, 10)
		assert.Equal(t, "bob post", page.Posts[0].Text)
		assert.Equal(t, "anna post 11", page.Posts[1].Text)
		assert.Equal(t, 2, page.Meta.NumPages)
		assert.Equal(t, int64(13), page.Meta.Count)
		assert.True(t, page.Meta.HasNext)

		for i := 1; i < len(page.Posts); i++ {
			assert.False(t, page.Posts[i].CreatedAt.After(page.Posts[i-1].CreatedAt))
		}
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		page, err := svc.Index(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, page.Posts, 3)
		assert.False(t, page.Meta.HasNext)
		assert.True(t, page.Meta.HasPrevious)
	})

	t.Run("overshoot clamps to the last page", func(t *testing.T) {
		page, err := svc.Index(ctx, 99)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Meta.Page)
		assert.Len(t, page.Posts, 3)
	})

	t.Run("group feed filters by slug", func(t *testing.T) {
		page, g, err := svc.GroupPosts(ctx, "test-slug", 1)
		require.NoError(t, err)
		assert.Equal(t, group.ID, g.ID)
		assert.Equal(t, int64(6), page.Meta.Count)
		for _, p := range page.Posts {
			require.NotNil(t, p.GroupID)
			assert.Equal(t, group.ID, *p.GroupID)
		}
	})

	t.Run("unknown slug is ErrGroupNotFound", func(t *testing.T) {
		_, _, err := svc.GroupPosts(ctx, "no-such-slug", 1)
		assert.ErrorIs(t, err, feed.ErrGroupNotFound)
	})

	t.Run("profile feed holds exactly the author's posts", func(t *testing.T) {
		page, author, err := svc.ProfilePosts(ctx, "bob", 1)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, author.ID)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, "bob post", page.Posts[0].Text)

		annaPage, _, err := svc.ProfilePosts(ctx, "anna", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(12), annaPage.Meta.Count)
	})

	t.Run("unknown username is ErrUserNotFound", func(t *testing.T) {
		_, _, err := svc.ProfilePosts(ctx, "nobody", 1)
		assert.ErrorIs(t, err, feed.ErrUserNotFound)
	})
}

func TestFollowFeedAndIdempotence(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	svc := feed.NewService(db.DB)
	follows := repository.NewGormFollowRepository(db.DB)

	anna := seedUser(t, db, "anna")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	seedPost(t, db, bob, "bob before follow", nil, base)

	require.NoError(t, follows.Follow(ctx, anna.ID, bob.ID))

	t.Run("followed author's posts appear in the follow feed", func(t *testing.T) {
		seedPost(t, db, bob, "bob after follow", nil, base.Add(time.Minute))

		page, err := svc.FollowingPosts(ctx, anna.ID, 1)
		require.NoError(t, err)
		require.Len(t, page.Posts, 2)
		assert.Equal(t, "bob after follow", page.Posts[0].Text)
	})

	t.Run("non-follower's feed stays empty", func(t *testing.T) {
		page, err := svc.FollowingPosts(ctx, carol.ID, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
		assert.Equal(t, int64(0), page.Meta.Count)
	})

	t.Run("double follow leaves exactly one edge", func(t *testing.T) {
		require.NoError(t, follows.Follow(ctx, anna.ID, bob.ID))

		var edges int64
		require.NoError(t, db.DB.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", anna.ID, bob.ID).
			Count(&edges).Error)
		assert.Equal(t, int64(1), edges)
	})

	t.Run("unfollow empties the feed and is idempotent", func(t *testing.T) {
		require.NoError(t, follows.Unfollow(ctx, anna.ID, bob.ID))
		// No edge left; a second unfollow is a quiet no-op.
		require.NoError(t, follows.Unfollow(ctx, anna.ID, bob.ID))

		page, err := svc.FollowingPosts(ctx, anna.ID, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
	})

	t.Run("counts and listings", func(t *testing.T) {
		require.NoError(t, follows.Follow(ctx, carol.ID, bob.ID))

		n, err := follows.FollowerCount(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		followers, err := follows.Followers(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, followers, 1)
		assert.Equal(t, "carol", followers[0].Username)

		following, err := follows.Following(ctx, carol.ID)
		require.NoError(t, err)
		require.Len(t, following, 1)
		assert.Equal(t, "bob", following[0].Username)

		ok, err := follows.IsFollowing(ctx, carol.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
