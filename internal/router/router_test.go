package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/discussion-system/discussion-system/internal/config"
	"github.com/discussion-system/discussion-system/internal/testutil"
	"github.com/discussion-system/discussion-system/pkg/cache"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/metrics"
	"github.com/discussion-system/discussion-system/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T, redis *cache.RedisClient) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Minute},
		Security: config.SecurityConfig{
			BcryptCost:       4,
			MaxLoginAttempts: 2,
			LoginWindow:      time.Minute,
		},
	}
	engine := New(Dependencies{
		Config:    cfg,
		DB:        testutil.NewDatabase(t),
		Redis:     redis,
		Publisher: queue.NopPublisher{},
		Metrics:   metrics.New(),
		Logger:    logger.NewDiscardLogger(),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(email, password string) *httptest.ResponseRecorder {
	s.t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type session struct {
	ID    uint
	Token string
}

func (s *testServer) signUp(name string) session {
	s.t.Helper()
	w := s.do(http.MethodPost, "/users/", map[string]string{
		"name":      name,
		"email":     name + "@example.com",
		"mobile_no": fmt.Sprintf("555%04d", len(name)*100+int(name[0])),
		"password":  "pw-" + name,
	}, "")
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var user struct {
		ID uint `json:"id"`
	}
	decode(s.t, w, &user)

	w = s.login(name+"@example.com", "pw-"+name)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	decode(s.t, w, &tok)
	require.Equal(s.t, "bearer", tok.TokenType)
	require.EqualValues(s.t, 60, tok.ExpiresIn)

	return session{ID: user.ID, Token: tok.AccessToken}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type discussionBody struct {
	ID        uint    `json:"id"`
	Text      string  `json:"text"`
	UserID    uint    `json:"user_id"`
	Image     *string `json:"image"`
	ViewCount int64   `json:"view_count"`
	LikeCount int64   `json:"like_count"`
	Hashtags  []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"hashtags"`
	Comments []commentBody `json:"comments"`
}

type commentBody struct {
	ID           uint          `json:"id"`
	Text         string        `json:"text"`
	DiscussionID uint          `json:"discussion_id"`
	ParentID     *uint         `json:"parent_id"`
	Replies      []commentBody `json:"replies"`
	Likes        []struct {
		UserID uint `json:"user_id"`
	} `json:"likes"`
}

func TestRegistrationAndToken(t *testing.T) {
	s := newTestServer(t, nil)
	ada := s.signUp("ada")

	w := s.do(http.MethodPost, "/users/", map[string]string{
		"name": "Imposter", "email": "ada@example.com", "mobile_no": "1", "password": "x",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, w.Body.String())

	w = s.do(http.MethodPost, "/users/", map[string]string{"name": "NoEmail"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.login("ada@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"Incorrect username or password"}`, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/users/%d", ada.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var user map[string]interface{}
	decode(t, w, &user)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "hashed_password")
	assert.EqualValues(t, 0, user["followers_count"])
	assert.Equal(t, []interface{}{}, user["discussions"])

	w = s.do(http.MethodGet, "/users/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	w = s.do(http.MethodGet, "/users/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserListingAndSearch(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUp("ada")
	s.signUp("bob")
	s.signUp("adalyn")

	var users []map[string]interface{}
	w := s.do(http.MethodGet, "/users/search/?name=ADA", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0]["name"])
	assert.Equal(t, "adalyn", users[1]["name"])

	w = s.do(http.MethodGet, "/users/?skip=1&limit=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0]["name"])

	w = s.do(http.MethodGet, "/users/?skip=-3&limit=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0]["name"])

	w = s.do(http.MethodGet, "/users/?limit=lots", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscussionLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	ada := s.signUp("ada")
	bob := s.signUp("bob")

	w := s.do(http.MethodPost, "/discussions/", map[string]interface{}{"text": "hello"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = s.do(http.MethodPost, "/discussions/", map[string]interface{}{"text": "hello"}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/discussions/", map[string]interface{}{
		"text":     "hello world",
		"hashtags": []string{"x", "y"},
	}, ada.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first discussionBody
	decode(t, w, &first)
	assert.Equal(t, ada.ID, first.UserID)
	require.Len(t, first.Hashtags, 2)

	w = s.do(http.MethodPost, "/discussions/", map[string]interface{}{
		"text":     "second",
		"hashtags": []string{"x", "z"},
	}, bob.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var second discussionBody
	decode(t, w, &second)
	assert.Equal(t, first.Hashtags[0].ID, second.Hashtags[0].ID)

	var list []discussionBody
	w = s.do(http.MethodGet, "/discussions/hashtag/x", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Len(t, list, 2)

	w = s.do(http.MethodGet, "/discussions/hashtag/nothing", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	path := fmt.Sprintf("/discussions/%d", first.ID)

	w = s.do(http.MethodPut, path, map[string]interface{}{"text": "hacked"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Not authorized to update this discussion"}`, w.Body.String())

	w = s.do(http.MethodPut, path, map[string]interface{}{"text": "edited"}, ada.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var updated discussionBody
	decode(t, w, &updated)
	assert.Equal(t, "edited", updated.Text)
	assert.Empty(t, updated.Hashtags)

	w = s.do(http.MethodPut, path, map[string]interface{}{"image": "cat.png"}, ada.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &updated)
	require.NotNil(t, updated.Image)
	assert.Equal(t, "cat.png", *updated.Image)

	w = s.do(http.MethodPut, path, map[string]interface{}{"image": nil}, ada.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated = discussionBody{}
	decode(t, w, &updated)
	assert.Nil(t, updated.Image)
	assert.Equal(t, "edited", updated.Text)

	for i := 0; i < 3; i++ {
		w = s.do(http.MethodPost, path+"/view", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	var viewed discussionBody
	decode(t, w, &viewed)
	assert.EqualValues(t, 3, viewed.ViewCount)

	w = s.do(http.MethodPost, path+"/like", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Discussion liked successfully"}`, w.Body.String())

	w = s.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got discussionBody
	decode(t, w, &got)
	assert.EqualValues(t, 1, got.LikeCount)

	w = s.do(http.MethodGet, fmt.Sprintf("/users/%d", ada.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var owner struct {
		Discussions []discussionBody `json:"discussions"`
	}
	decode(t, w, &owner)
	require.Len(t, owner.Discussions, 1)
	assert.EqualValues(t, 1, owner.Discussions[0].LikeCount)

	w = s.do(http.MethodDelete, path+"/like", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, path, nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, path, nil, ada.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())

	w = s.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Discussion not found"}`, w.Body.String())

	w = s.do(http.MethodPost, path+"/view", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentThreads(t *testing.T) {
	s := newTestServer(t, nil)
	ada := s.signUp("ada")
	bob := s.signUp("bob")

	w := s.do(http.MethodPost, "/discussions/", map[string]interface{}{"text": "thread"}, ada.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var d discussionBody
	decode(t, w, &d)
	commentsPath := fmt.Sprintf("/discussions/%d/comments/", d.ID)

	w = s.do(http.MethodPost, commentsPath, map[string]string{"text": "root"}, bob.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var root commentBody
	decode(t, w, &root)
	assert.Nil(t, root.ParentID)
	assert.NotNil(t, root.Replies)

	w = s.do(http.MethodPost, fmt.Sprintf("/comments/%d/reply", root.ID), map[string]string{"text": "reply"}, ada.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var reply commentBody
	decode(t, w, &reply)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)
	assert.Equal(t, d.ID, reply.DiscussionID)

	w = s.do(http.MethodPost, fmt.Sprintf("/comments/%d/reply", reply.ID), map[string]string{"text": "deeper"}, bob.Token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/comments/%d/like", reply.ID), nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Comment liked successfully"}`, w.Body.String())

	var tree []commentBody
	w = s.do(http.MethodGet, commentsPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tree)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Len(t, tree[0].Replies[0].Likes, 1)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "deeper", tree[0].Replies[0].Replies[0].Text)

	w = s.do(http.MethodGet, fmt.Sprintf("/discussions/%d", d.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var full discussionBody
	decode(t, w, &full)
	require.Len(t, full.Comments, 1)
	assert.Len(t, full.Comments[0].Replies, 1)

	w = s.do(http.MethodPut, fmt.Sprintf("/comments/%d", root.ID), map[string]string{"text": "mine now"}, ada.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/comments/%d", root.ID), map[string]string{"text": "<i>edited</i>"}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var edited commentBody
	decode(t, w, &edited)
	assert.Equal(t, "edited", edited.Text)

	w = s.do(http.MethodPost, "/comments/999/reply", map[string]string{"text": "lost"}, ada.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Comment not found"}`, w.Body.String())

	w = s.do(http.MethodPost, "/discussions/999/comments/", map[string]string{"text": "lost"}, ada.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/comments/%d", root.ID), nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Body.String())

	w = s.do(http.MethodGet, commentsPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodDelete, fmt.Sprintf("/comments/%d", reply.ID), nil, ada.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	ada := s.signUp("ada")
	bob := s.signUp("bob")

	followPath := fmt.Sprintf("/users/%d/follow/%d", ada.ID, bob.ID)

	w := s.do(http.MethodPost, followPath, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, followPath, nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Not authorized to perform this action"}`, w.Body.String())

	for i := 0; i < 2; i++ {
		w = s.do(http.MethodPost, followPath, nil, ada.Token)
		require.Equal(t, http.StatusOK, w.Code)
	}
	var follower map[string]interface{}
	decode(t, w, &follower)
	assert.EqualValues(t, ada.ID, follower["id"])
	assert.EqualValues(t, 1, follower["following_count"])

	w = s.do(http.MethodPost, fmt.Sprintf("/users/%d/follow/%d", ada.ID, ada.ID), nil, ada.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Cannot follow yourself"}`, w.Body.String())

	w = s.do(http.MethodPost, fmt.Sprintf("/users/%d/follow/999", ada.ID), nil, ada.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var users []map[string]interface{}
	w = s.do(http.MethodGet, fmt.Sprintf("/users/%d/followers", bob.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.EqualValues(t, ada.ID, users[0]["id"])

	w = s.do(http.MethodPost, fmt.Sprintf("/users/%d/unfollow/%d", ada.ID, bob.ID), nil, ada.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &follower)
	assert.EqualValues(t, 0, follower["following_count"])

	w = s.do(http.MethodGet, fmt.Sprintf("/users/%d/following", ada.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLoginLockout(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := cache.NewRedisClient(mr.Addr(), "", 0, 2, 0)
	t.Cleanup(func() { _ = redis.Close() })

	s := newTestServer(t, redis)
	s.signUp("ada")

	for i := 0; i < 2; i++ {
		w := s.login("ada@example.com", "wrong")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := s.login("ada@example.com", "pw-ada")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many failed login attempts"}`, w.Body.String())

	w = s.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, w, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["redis"])

	mr.Close()
	w = s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUp("ada")

	w := s.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "login_success_total 1")
	assert.Contains(t, body, "register_success_total 1")
	assert.Contains(t, body, `route="/users/"`)
}
