package mcp

// In this file: MCP tool definitions and handler implementations.  Handler
// failures are reported in-band as tool results with IsError=true; a handler
// error return would terminate the agent's call chain, which is never what we
// want for an API failure.

import (
	"context"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/birdwire/birdwire/internal/upload"
	"github.com/birdwire/birdwire/internal/xapi"
)

const (
	defLimit = 10
	// Timelines and per-user feeds default lower to keep agent context small.
	defFeedLimit = 5
	minLimit     = 1
	maxLimit     = 100
)

// clampLimit keeps a requested result count within the API's accepted window.
func clampLimit(n int) int {
	return max(min(n, maxLimit), minLimit)
}

// ─── get_me ───────────────────────────────────────────────────────────────────

func (s *Server) toolGetMe() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_me",
		mcplib.WithDescription("Get the authenticated X/Twitter user's profile (id, name, username)."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetMe}
}

func (s *Server) handleGetMe(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	u, err := s.api.Me(ctx)
	if err != nil {
		return resultErr(fmt.Errorf("get_me: %w", err)), nil
	}
	return resultJSON(u)
}

// ─── post ─────────────────────────────────────────────────────────────────────

func (s *Server) toolPost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("post",
		mcplib.WithDescription(`Create a new X/Twitter post as the authenticated user.

When media_url is given, the media is downloaded and uploaded to X via the
chunked media upload protocol, and the resulting media is attached to the
post.  Supported media: JPEG, PNG, WEBP, GIF images and MP4/QuickTime video.`),
		mcplib.WithString("text",
			mcplib.Description("The text content of the post."),
			mcplib.Required(),
		),
		mcplib.WithString("media_url",
			mcplib.Description("Optional URL of an image or video to attach to the post."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handlePost}
}

func (s *Server) handlePost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	text, ok := stringArg(req, "text")
	if !ok || text == "" {
		return resultErr(errors.New("post: text is required")), nil
	}

	createReq := xapi.CreatePostRequest{Text: text}

	if mediaURL, ok := stringArg(req, "media_url"); ok && mediaURL != "" {
		mediaID, err := s.attachMedia(ctx, mediaURL)
		if err != nil {
			return resultErr(fmt.Errorf("post: %w", err)), nil
		}
		createReq.Media = &xapi.PostMedia{MediaIDs: []string{mediaID}}
	}

	p, err := s.api.CreatePost(ctx, createReq)
	if err != nil {
		return resultErr(fmt.Errorf("post: %w", err)), nil
	}
	s.logger.InfoContext(ctx, "mcp: post created", "post_id", p.ID)
	return resultJSON(p)
}

// attachMedia downloads the media at mediaURL and uploads it to X, returning
// the media identifier to attach to a post.
func (s *Server) attachMedia(ctx context.Context, mediaURL string) (string, error) {
	data, contentType, err := s.fetch.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	mediaID, err := s.up.Upload(ctx, upload.Bytes{Data: data, DeclaredType: contentType})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "mcp: media uploaded", "media_id", mediaID, "url", mediaURL)
	return mediaID, nil
}

// ─── reply ────────────────────────────────────────────────────────────────────

func (s *Server) toolReply() mcpsrv.ServerTool {
	tool := mcplib.NewTool("reply",
		mcplib.WithDescription("Reply to an existing X/Twitter post as the authenticated user."),
		mcplib.WithString("text",
			mcplib.Description("The text content of the reply."),
			mcplib.Required(),
		),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to reply to."),
			mcplib.Required(),
		),
		mcplib.WithString("quote_post_id",
			mcplib.Description("Optional ID of a post to quote in the reply."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleReply}
}

func (s *Server) handleReply(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	text, ok := stringArg(req, "text")
	if !ok || text == "" {
		return resultErr(errors.New("reply: text is required")), nil
	}
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("reply: post_id is required")), nil
	}

	createReq := xapi.CreatePostRequest{
		Text:  text,
		Reply: &xapi.PostReply{InReplyToPostID: postID},
	}
	createReq.QuotePostID, _ = stringArg(req, "quote_post_id")

	p, err := s.api.CreatePost(ctx, createReq)
	if err != nil {
		return resultErr(fmt.Errorf("reply: %w", err)), nil
	}
	return resultJSON(p)
}

// ─── delete_post ──────────────────────────────────────────────────────────────

func (s *Server) toolDeletePost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("delete_post",
		mcplib.WithDescription("Delete a post owned by the authenticated user."),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to delete."),
			mcplib.Required(),
		),
		mcplib.WithDestructiveHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleDeletePost}
}

func (s *Server) handleDeletePost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("delete_post: post_id is required")), nil
	}
	deleted, err := s.api.DeletePost(ctx, postID)
	if err != nil {
		return resultErr(fmt.Errorf("delete_post: %w", err)), nil
	}
	return resultJSON(map[string]bool{"deleted": deleted})
}

// ─── get_post ─────────────────────────────────────────────────────────────────

func (s *Server) toolGetPost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_post",
		mcplib.WithDescription("Get a single X/Twitter post by its ID."),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to retrieve."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetPost}
}

func (s *Server) handleGetPost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("get_post: post_id is required")), nil
	}
	p, err := s.api.GetPost(ctx, postID)
	if err != nil {
		return resultErr(fmt.Errorf("get_post: %w", err)), nil
	}
	return resultJSON(p)
}

// ─── get_timeline ─────────────────────────────────────────────────────────────

func (s *Server) toolGetTimeline() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_timeline",
		mcplib.WithDescription("Get recent posts from the authenticated user's home timeline, newest first."),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of posts to return (1–100, default 5)."),
		),
		mcplib.WithString("start_time",
			mcplib.Description("ISO 8601 lower bound for post creation time (e.g. \"2026-01-02T15:04:05Z\")."),
		),
		mcplib.WithString("end_time",
			mcplib.Description("ISO 8601 upper bound for post creation time."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetTimeline}
}

func (s *Server) handleGetTimeline(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	opts := xapi.TimelineOpts{
		MaxResults: clampLimit(intArg(req, "limit", defFeedLimit)),
	}
	opts.StartTime, _ = stringArg(req, "start_time")
	opts.EndTime, _ = stringArg(req, "end_time")

	posts, err := s.api.HomeTimeline(ctx, opts)
	if err != nil {
		return resultErr(fmt.Errorf("get_timeline: %w", err)), nil
	}
	return resultJSON(posts)
}

// ─── get_user_posts ───────────────────────────────────────────────────────────

func (s *Server) toolGetUserPosts() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_user_posts",
		mcplib.WithDescription("Get the latest posts of a user by their user ID."),
		mcplib.WithString("user_id",
			mcplib.Description("The ID of the user whose posts to retrieve."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of posts to return (1–100, default 5)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUserPosts}
}

func (s *Server) handleGetUserPosts(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("get_user_posts: user_id is required")), nil
	}
	posts, err := s.api.UserPosts(ctx, userID, clampLimit(intArg(req, "limit", defFeedLimit)))
	if err != nil {
		return resultErr(fmt.Errorf("get_user_posts: %w", err)), nil
	}
	return resultJSON(posts)
}

// ─── search_posts ─────────────────────────────────────────────────────────────

func (s *Server) toolSearchPosts() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_posts",
		mcplib.WithDescription("Search recent X/Twitter posts (last 7 days) matching a query."),
		mcplib.WithString("query",
			mcplib.Description("The search query string (keywords, hashtags, operators)."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of posts to return (1–100, default 10)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchPosts}
}

func (s *Server) handleSearchPosts(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, ok := stringArg(req, "query")
	if !ok || query == "" {
		return resultErr(errors.New("search_posts: query is required")), nil
	}
	posts, err := s.api.SearchRecent(ctx, query, clampLimit(intArg(req, "limit", defLimit)))
	if err != nil {
		return resultErr(fmt.Errorf("search_posts: %w", err)), nil
	}
	return resultJSON(posts)
}

// ─── search_all_posts ─────────────────────────────────────────────────────────

func (s *Server) toolSearchAllPosts() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_all_posts",
		mcplib.WithDescription("Search the full X/Twitter post archive matching a query.  Requires Pro or Enterprise API access."),
		mcplib.WithString("query",
			mcplib.Description("The search query string (keywords, hashtags, operators)."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of posts to return (1–100, default 10)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchAllPosts}
}

func (s *Server) handleSearchAllPosts(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, ok := stringArg(req, "query")
	if !ok || query == "" {
		return resultErr(errors.New("search_all_posts: query is required")), nil
	}
	posts, err := s.api.SearchAll(ctx, query, clampLimit(intArg(req, "limit", defLimit)))
	if err != nil {
		return resultErr(fmt.Errorf("search_all_posts: %w", err)), nil
	}
	return resultJSON(posts)
}

// ─── like_post / unlike_post ──────────────────────────────────────────────────

func (s *Server) toolLikePost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("like_post",
		mcplib.WithDescription("Like a post as the authenticated user."),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to like."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleLikePost}
}

func (s *Server) handleLikePost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("like_post: post_id is required")), nil
	}
	liked, err := s.api.Like(ctx, postID)
	if err != nil {
		return resultErr(fmt.Errorf("like_post: %w", err)), nil
	}
	return resultJSON(map[string]bool{"liked": liked})
}

func (s *Server) toolUnlikePost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("unlike_post",
		mcplib.WithDescription("Remove the authenticated user's like from a post."),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to unlike."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleUnlikePost}
}

func (s *Server) handleUnlikePost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("unlike_post: post_id is required")), nil
	}
	liked, err := s.api.Unlike(ctx, postID)
	if err != nil {
		return resultErr(fmt.Errorf("unlike_post: %w", err)), nil
	}
	return resultJSON(map[string]bool{"liked": liked})
}

// ─── repost / unrepost ────────────────────────────────────────────────────────

func (s *Server) toolRepost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("repost",
		mcplib.WithDescription("Repost (retweet) a post as the authenticated user."),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to repost."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleRepost}
}

func (s *Server) handleRepost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("repost: post_id is required")), nil
	}
	reposted, err := s.api.Repost(ctx, postID)
	if err != nil {
		return resultErr(fmt.Errorf("repost: %w", err)), nil
	}
	return resultJSON(map[string]bool{"reposted": reposted})
}

func (s *Server) toolUnrepost() mcpsrv.ServerTool {
	tool := mcplib.NewTool("unrepost",
		mcplib.WithDescription("Remove the authenticated user's repost of a post."),
		mcplib.WithString("post_id",
			mcplib.Description("The ID of the post to un-repost."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleUnrepost}
}

func (s *Server) handleUnrepost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	postID, ok := stringArg(req, "post_id")
	if !ok || postID == "" {
		return resultErr(errors.New("unrepost: post_id is required")), nil
	}
	reposted, err := s.api.Unrepost(ctx, postID)
	if err != nil {
		return resultErr(fmt.Errorf("unrepost: %w", err)), nil
	}
	return resultJSON(map[string]bool{"reposted": reposted})
}

// ─── get_user_by_username / get_user_by_id ────────────────────────────────────

func (s *Server) toolGetUserByUsername() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_user_by_username",
		mcplib.WithDescription("Look up an X/Twitter user by their handle (without the @)."),
		mcplib.WithString("username",
			mcplib.Description("The username (handle) of the user."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUserByUsername}
}

func (s *Server) handleGetUserByUsername(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	username, ok := stringArg(req, "username")
	if !ok || username == "" {
		return resultErr(errors.New("get_user_by_username: username is required")), nil
	}
	u, err := s.api.UserByUsername(ctx, username)
	if err != nil {
		return resultErr(fmt.Errorf("get_user_by_username: %w", err)), nil
	}
	return resultJSON(u)
}

func (s *Server) toolGetUserByID() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_user_by_id",
		mcplib.WithDescription("Look up an X/Twitter user by their numeric user ID."),
		mcplib.WithString("user_id",
			mcplib.Description("The ID of the user."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetUserByID}
}

func (s *Server) handleGetUserByID(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("get_user_by_id: user_id is required")), nil
	}
	u, err := s.api.UserByID(ctx, userID)
	if err != nil {
		return resultErr(fmt.Errorf("get_user_by_id: %w", err)), nil
	}
	return resultJSON(u)
}

// ─── follow_user / unfollow_user ──────────────────────────────────────────────

func (s *Server) toolFollowUser() mcpsrv.ServerTool {
	tool := mcplib.NewTool("follow_user",
		mcplib.WithDescription("Follow a user as the authenticated user."),
		mcplib.WithString("user_id",
			mcplib.Description("The ID of the user to follow."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleFollowUser}
}

func (s *Server) handleFollowUser(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("follow_user: user_id is required")), nil
	}
	res, err := s.api.Follow(ctx, userID)
	if err != nil {
		return resultErr(fmt.Errorf("follow_user: %w", err)), nil
	}
	return resultJSON(res)
}

func (s *Server) toolUnfollowUser() mcpsrv.ServerTool {
	tool := mcplib.NewTool("unfollow_user",
		mcplib.WithDescription("Unfollow a user as the authenticated user."),
		mcplib.WithString("user_id",
			mcplib.Description("The ID of the user to unfollow."),
			mcplib.Required(),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleUnfollowUser}
}

func (s *Server) handleUnfollowUser(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("unfollow_user: user_id is required")), nil
	}
	res, err := s.api.Unfollow(ctx, userID)
	if err != nil {
		return resultErr(fmt.Errorf("unfollow_user: %w", err)), nil
	}
	return resultJSON(res)
}

// ─── get_followers / get_following ────────────────────────────────────────────

func (s *Server) toolGetFollowers() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_followers",
		mcplib.WithDescription("List the followers of a user."),
		mcplib.WithString("user_id",
			mcplib.Description("The ID of the user whose followers to list."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of users to return (1–100, default 10)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetFollowers}
}

func (s *Server) handleGetFollowers(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("get_followers: user_id is required")), nil
	}
	users, err := s.api.Followers(ctx, userID, clampLimit(intArg(req, "limit", defLimit)))
	if err != nil {
		return resultErr(fmt.Errorf("get_followers: %w", err)), nil
	}
	return resultJSON(users)
}

func (s *Server) toolGetFollowing() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_following",
		mcplib.WithDescription("List the users a user follows."),
		mcplib.WithString("user_id",
			mcplib.Description("The ID of the user whose following list to retrieve."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of users to return (1–100, default 10)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetFollowing}
}

func (s *Server) handleGetFollowing(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	userID, ok := stringArg(req, "user_id")
	if !ok || userID == "" {
		return resultErr(errors.New("get_following: user_id is required")), nil
	}
	users, err := s.api.Following(ctx, userID, clampLimit(intArg(req, "limit", defLimit)))
	if err != nil {
		return resultErr(fmt.Errorf("get_following: %w", err)), nil
	}
	return resultJSON(users)
}
