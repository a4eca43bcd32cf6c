package mcp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/birdwire/birdwire/internal/upload"
	"github.com/birdwire/birdwire/internal/xapi"
)

// ─── handleGetMe ──────────────────────────────────────────────────────────────

func TestHandleGetMe(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(m mocks)
		wantIsError bool
		wantText    string // substring expected in first text content
	}{
		{
			name: "returns user as JSON",
			setup: func(m mocks) {
				m.api.EXPECT().Me(gomock.Any()).Return(xapi.User{ID: "42", Username: "testuser"}, nil)
			},
			wantText: "testuser",
		},
		{
			name: "api error returns error result",
			setup: func(m mocks) {
				m.api.EXPECT().Me(gomock.Any()).Return(xapi.User{}, errors.New("rate limited"))
			},
			wantIsError: true,
			wantText:    "rate limited",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, m := newTestServer(t, ctrl)
			tt.setup(m)

			result, err := srv.handleGetMe(t.Context(), toolReq(nil))
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			assert.Contains(t, firstText(t, result), tt.wantText)
		})
	}
}

// ─── handlePost ───────────────────────────────────────────────────────────────

func TestHandlePost(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		setup       func(m mocks)
		wantIsError bool
		wantText    string
	}{
		{
			name: "text only",
			args: map[string]any{"text": "hello world"},
			setup: func(m mocks) {
				m.api.EXPECT().
					CreatePost(gomock.Any(), xapi.CreatePostRequest{Text: "hello world"}).
					Return(xapi.Post{ID: "900", Text: "hello world"}, nil)
			},
			wantText: "900",
		},
		{
			name:        "missing text",
			args:        nil,
			setup:       func(m mocks) {},
			wantIsError: true,
			wantText:    "text is required",
		},
		{
			name: "with media url",
			args: map[string]any{"text": "look", "media_url": "https://example.com/cat.png"},
			setup: func(m mocks) {
				m.fetch.EXPECT().
					Fetch(gomock.Any(), "https://example.com/cat.png").
					Return([]byte("png bytes"), "image/png", nil)
				m.up.EXPECT().
					Upload(gomock.Any(), upload.Bytes{Data: []byte("png bytes"), DeclaredType: "image/png"}).
					Return("777", nil)
				m.api.EXPECT().
					CreatePost(gomock.Any(), xapi.CreatePostRequest{
						Text:  "look",
						Media: &xapi.PostMedia{MediaIDs: []string{"777"}},
					}).
					Return(xapi.Post{ID: "901", Text: "look"}, nil)
			},
			wantText: "901",
		},
		{
			name: "fetch failure aborts before upload",
			args: map[string]any{"text": "look", "media_url": "https://example.com/gone.png"},
			setup: func(m mocks) {
				m.fetch.EXPECT().
					Fetch(gomock.Any(), "https://example.com/gone.png").
					Return(nil, "", errors.New("status 404"))
			},
			wantIsError: true,
			wantText:    "404",
		},
		{
			name: "upload failure aborts post creation",
			args: map[string]any{"text": "look", "media_url": "https://example.com/cat.png"},
			setup: func(m mocks) {
				m.fetch.EXPECT().
					Fetch(gomock.Any(), "https://example.com/cat.png").
					Return([]byte("png bytes"), "image/png", nil)
				m.up.EXPECT().
					Upload(gomock.Any(), gomock.Any()).
					Return("", &upload.InitError{Status: 401, Body: "bad token"})
			},
			wantIsError: true,
			wantText:    "bad token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, m := newTestServer(t, ctrl)
			tt.setup(m)

			result, err := srv.handlePost(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			assert.Contains(t, firstText(t, result), tt.wantText)
		})
	}
}

// ─── handleReply ──────────────────────────────────────────────────────────────

func TestHandleReply(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		CreatePost(gomock.Any(), xapi.CreatePostRequest{
			Text:  "agreed",
			Reply: &xapi.PostReply{InReplyToPostID: "123"},
		}).
		Return(xapi.Post{ID: "902", Text: "agreed"}, nil)

	result, err := srv.handleReply(t.Context(), toolReq(map[string]any{"text": "agreed", "post_id": "123"}))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
	assert.Contains(t, firstText(t, result), "902")
}

func TestHandleReply_withQuote(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		CreatePost(gomock.Any(), xapi.CreatePostRequest{
			Text:        "seen this?",
			Reply:       &xapi.PostReply{InReplyToPostID: "123"},
			QuotePostID: "456",
		}).
		Return(xapi.Post{ID: "903", Text: "seen this?"}, nil)

	result, err := srv.handleReply(t.Context(), toolReq(map[string]any{
		"text":          "seen this?",
		"post_id":       "123",
		"quote_post_id": "456",
	}))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
	assert.Contains(t, firstText(t, result), "903")
}

func TestHandleReply_missingArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"no text", map[string]any{"post_id": "123"}},
		{"no post_id", map[string]any{"text": "hi"}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, _ := newTestServer(t, ctrl)

			result, err := srv.handleReply(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			assert.True(t, isErrorResult(result))
		})
	}
}

// ─── handleGetTimeline ────────────────────────────────────────────────────────

func TestHandleGetTimeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		HomeTimeline(gomock.Any(), xapi.TimelineOpts{MaxResults: 5, StartTime: "2026-01-01T00:00:00Z"}).
		Return([]xapi.Post{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}}, nil)

	result, err := srv.handleGetTimeline(t.Context(), toolReq(map[string]any{
		"limit":      float64(5),
		"start_time": "2026-01-01T00:00:00Z",
	}))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
	assert.Contains(t, firstText(t, result), `"id":"1"`)
}

func TestHandleGetTimeline_defaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		HomeTimeline(gomock.Any(), xapi.TimelineOpts{MaxResults: defFeedLimit}).
		Return(nil, nil)

	result, err := srv.handleGetTimeline(t.Context(), toolReq(nil))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
}

func TestHandleGetTimeline_limitClamped(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		HomeTimeline(gomock.Any(), xapi.TimelineOpts{MaxResults: maxLimit}).
		Return(nil, nil)

	result, err := srv.handleGetTimeline(t.Context(), toolReq(map[string]any{"limit": float64(5000)}))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
}

// ─── handleSearchPosts ────────────────────────────────────────────────────────

func TestHandleSearchPosts(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		setup       func(m mocks)
		wantIsError bool
		wantText    string
	}{
		{
			name: "returns posts as JSON",
			args: map[string]any{"query": "golang", "limit": float64(2)},
			setup: func(m mocks) {
				m.api.EXPECT().
					SearchRecent(gomock.Any(), "golang", 2).
					Return([]xapi.Post{{ID: "1", Text: "go go go"}}, nil)
			},
			wantText: "go go go",
		},
		{
			name:        "missing query",
			args:        nil,
			setup:       func(m mocks) {},
			wantIsError: true,
			wantText:    "query is required",
		},
		{
			name: "api error",
			args: map[string]any{"query": "golang"},
			setup: func(m mocks) {
				m.api.EXPECT().
					SearchRecent(gomock.Any(), "golang", defLimit).
					Return(nil, errors.New("search unavailable"))
			},
			wantIsError: true,
			wantText:    "search unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, m := newTestServer(t, ctrl)
			tt.setup(m)

			result, err := srv.handleSearchPosts(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			assert.Contains(t, firstText(t, result), tt.wantText)
		})
	}
}

// ─── handleSearchAllPosts ─────────────────────────────────────────────────────

func TestHandleSearchAllPosts(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		setup       func(m mocks)
		wantIsError bool
		wantText    string
	}{
		{
			name: "returns posts as JSON",
			args: map[string]any{"query": "from:golang", "limit": float64(3)},
			setup: func(m mocks) {
				m.api.EXPECT().
					SearchAll(gomock.Any(), "from:golang", 3).
					Return([]xapi.Post{{ID: "7", Text: "archive hit"}}, nil)
			},
			wantText: "archive hit",
		},
		{
			name:        "missing query",
			args:        nil,
			setup:       func(m mocks) {},
			wantIsError: true,
			wantText:    "query is required",
		},
		{
			name: "access denied",
			args: map[string]any{"query": "from:golang"},
			setup: func(m mocks) {
				m.api.EXPECT().
					SearchAll(gomock.Any(), "from:golang", defLimit).
					Return(nil, &xapi.APIError{Status: 403, Body: `{"title":"Client Forbidden"}`})
			},
			wantIsError: true,
			wantText:    "403",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, m := newTestServer(t, ctrl)
			tt.setup(m)

			result, err := srv.handleSearchAllPosts(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			assert.Contains(t, firstText(t, result), tt.wantText)
		})
	}
}

// ─── handleGetUserPosts ───────────────────────────────────────────────────────

func TestHandleGetUserPosts_defaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		UserPosts(gomock.Any(), "42", defFeedLimit).
		Return([]xapi.Post{{ID: "3", Text: "hello"}}, nil)

	result, err := srv.handleGetUserPosts(t.Context(), toolReq(map[string]any{"user_id": "42"}))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
	assert.Contains(t, firstText(t, result), "hello")
}

// ─── engagement handlers ──────────────────────────────────────────────────────

func TestHandleLikeUnlike(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().Like(gomock.Any(), "55").Return(true, nil)
	m.api.EXPECT().Unlike(gomock.Any(), "55").Return(false, nil)

	result, err := srv.handleLikePost(t.Context(), toolReq(map[string]any{"post_id": "55"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"liked":true`)

	result, err = srv.handleUnlikePost(t.Context(), toolReq(map[string]any{"post_id": "55"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"liked":false`)
}

func TestHandleRepostUnrepost(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().Repost(gomock.Any(), "55").Return(true, nil)
	m.api.EXPECT().Unrepost(gomock.Any(), "55").Return(false, nil)

	result, err := srv.handleRepost(t.Context(), toolReq(map[string]any{"post_id": "55"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"reposted":true`)

	result, err = srv.handleUnrepost(t.Context(), toolReq(map[string]any{"post_id": "55"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"reposted":false`)
}

func TestHandleDeletePost(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().DeletePost(gomock.Any(), "55").Return(true, nil)

	result, err := srv.handleDeletePost(t.Context(), toolReq(map[string]any{"post_id": "55"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"deleted":true`)
}

// ─── user lookup handlers ─────────────────────────────────────────────────────

func TestHandleGetUserByUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		UserByUsername(gomock.Any(), "gopher").
		Return(xapi.User{ID: "7", Username: "gopher"}, nil)

	result, err := srv.handleGetUserByUsername(t.Context(), toolReq(map[string]any{"username": "gopher"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"id":"7"`)
}

func TestHandleGetUserByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		UserByID(gomock.Any(), "7").
		Return(xapi.User{ID: "7", Username: "gopher"}, nil)

	result, err := srv.handleGetUserByID(t.Context(), toolReq(map[string]any{"user_id": "7"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), "gopher")
}

// ─── follow handlers ──────────────────────────────────────────────────────────

func TestHandleFollowUnfollow(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().Follow(gomock.Any(), "9").Return(xapi.FollowResult{Following: true}, nil)
	m.api.EXPECT().Unfollow(gomock.Any(), "9").Return(xapi.FollowResult{Following: false}, nil)

	result, err := srv.handleFollowUser(t.Context(), toolReq(map[string]any{"user_id": "9"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"following":true`)

	result, err = srv.handleUnfollowUser(t.Context(), toolReq(map[string]any{"user_id": "9"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"following":false`)
}

func TestHandleGetFollowers(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		Followers(gomock.Any(), "7", defLimit).
		Return([]xapi.User{{ID: "1", Username: "a"}, {ID: "2", Username: "b"}}, nil)

	result, err := srv.handleGetFollowers(t.Context(), toolReq(map[string]any{"user_id": "7"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"username":"a"`)
}

func TestHandleGetFollowing(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.api.EXPECT().
		Following(gomock.Any(), "7", 20).
		Return([]xapi.User{{ID: "3", Username: "c"}}, nil)

	result, err := srv.handleGetFollowing(t.Context(), toolReq(map[string]any{"user_id": "7", "limit": float64(20)}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), `"username":"c"`)
}
