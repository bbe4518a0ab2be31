package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sofiagray/inkwell/backend/internal/feed"
	"github.com/sofiagray/inkwell/backend/internal/middleware"
	"github.com/sofiagray/inkwell/backend/internal/models"
	"github.com/sofiagray/inkwell/backend/internal/repository"
)

type mockFollows struct {
	followFn    func(ctx context.Context, followerID, authorID int) error
	unfollowFn  func(ctx context.Context, followerID, authorID int) error
	isFollowing func(ctx context.Context, followerID, authorID int) (bool, error)
}

func (m *mockFollows) Follow(ctx context.Context, followerID, authorID int) error {
	return m.followFn(ctx, followerID, authorID)
}

func (m *mockFollows) Unfollow(ctx context.Context, followerID, authorID int) error {
	return m.unfollowFn(ctx, followerID, authorID)
}

func (m *mockFollows) IsFollowing(ctx context.Context, followerID, authorID int) (bool, error) {
	if m.isFollowing == nil {
		return false, nil
	}
	return m.isFollowing(ctx, followerID, authorID)
}

func (m *mockFollows) FollowerCount(context.Context, int) (int64, error)  { return 0, nil }
func (m *mockFollows) FollowingCount(context.Context, int) (int64, error) { return 0, nil }
func (m *mockFollows) Followers(context.Context, int) ([]models.User, error) {
	return nil, nil
}
func (m *mockFollows) Following(context.Context, int) ([]models.User, error) {
	return nil, nil
}

type mockUsers struct {
	byUsernameFn func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUsers) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.byUsernameFn(ctx, username)
}

// asUser fakes the auth middleware for a fixed user id.
func asUser(id int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func knownUsers(users ...models.User) *mockUsers {
	return &mockUsers{
		byUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			for _, u := range users {
				if u.Username == username {
					u := u
					return &u, nil
				}
			}
			return nil, repository.ErrUserNotFound
		},
	}
}

func newUserRouter(h *UserHandler, authedAs int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("", asUser(authedAs))
	grp.POST("/api/users/:username/follow", h.FollowUser)
	grp.DELETE("/api/users/:username/follow", h.UnfollowUser)
	grp.GET("/api/feed", h.GetFollowingFeed)
	r.GET("/api/users/:username", h.GetProfile)
	return r
}

func TestFollowCreatesEdge(t *testing.T) {
	var gotFollower, gotAuthor int
	follows := &mockFollows{
		followFn: func(_ context.Context, followerID, authorID int) error {
			gotFollower, gotAuthor = followerID, authorID
			return nil
		},
	}
	h := NewUserHandler(nil, follows, knownUsers(models.User{ID: 2, Username: "leo"}))
	r := newUserRouter(h, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/users/leo/follow", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotFollower)
	assert.Equal(t, 2, gotAuthor)
}

func TestFollowSelfRejected(t *testing.T) {
	follows := &mockFollows{
		followFn: func(context.Context, int, int) error {
			t.Fatal("repository must not be reached for a self-follow")
			return nil
		},
	}
	h := NewUserHandler(nil, follows, knownUsers(models.User{ID: 1, Username: "narcissus"}))
	r := newUserRouter(h, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/users/narcissus/follow", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot follow yourself")
}

func TestFollowUnknownAuthorIs404(t *testing.T) {
	h := NewUserHandler(nil, &mockFollows{}, knownUsers())
	r := newUserRouter(h, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/users/ghost/follow", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// A second follow of the same author reports success the same way the
// first did.
func TestFollowIdempotentAtHTTPBoundary(t *testing.T) {
	calls := 0
	follows := &mockFollows{
		followFn: func(context.Context, int, int) error {
			calls++
			return nil // repository swallows the duplicate-key case
		},
	}
	h := NewUserHandler(nil, follows, knownUsers(models.User{ID: 2, Username: "leo"}))
	r := newUserRouter(h, 1)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/api/users/leo/follow", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestUnfollowWithoutEdgeIsNoOp(t *testing.T) {
	follows := &mockFollows{
		unfollowFn: func(context.Context, int, int) error {
			return nil // zero rows deleted is still success
		},
	}
	h := NewUserHandler(nil, follows, knownUsers(models.User{ID: 2, Username: "leo"}))
	r := newUserRouter(h, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/users/leo/follow", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfileUnknownUserIs404(t *testing.T) {
	f := &mockFeed{
		profileFn: func(_ context.Context, username string, _ int) (*feed.Page, *models.User, error) {
			return nil, nil, feed.ErrUserNotFound
		},
	}
	h := NewUserHandler(f, &mockFollows{}, knownUsers())
	r := newUserRouter(h, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/users/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowingFeedPassesAuthenticatedUser(t *testing.T) {
	var gotFollower int
	f := &mockFeed{
		followingFn: func(_ context.Context, followerID, page int) (*feed.Page, error) {
			gotFollower = followerID
			return pageOf("followed author post"), nil
		},
	}
	h := NewUserHandler(f, &mockFollows{}, knownUsers())
	r := newUserRouter(h, 7)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/feed", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, gotFollower)
	assert.Contains(t, w.Body.String(), "followed author post")
}
