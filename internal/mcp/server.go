package mcp

// In this file: MCP server construction and transport management.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/birdwire/birdwire/internal/upload"
	"github.com/birdwire/birdwire/internal/xapi"
)

const (
	serverName    = "birdwire"
	serverVersion = "1.0.0"
)

//go:generate mockgen -destination=mock_mcp/mock_mcp.go . API,MediaUploader,Fetcher

// API is the subset of the X API client that the tool handlers call.
type API interface {
	Me(ctx context.Context) (xapi.User, error)
	CreatePost(ctx context.Context, req xapi.CreatePostRequest) (xapi.Post, error)
	DeletePost(ctx context.Context, postID string) (bool, error)
	GetPost(ctx context.Context, postID string) (xapi.Post, error)
	UserByUsername(ctx context.Context, username string) (xapi.User, error)
	UserByID(ctx context.Context, userID string) (xapi.User, error)
	SearchRecent(ctx context.Context, query string, maxResults int) ([]xapi.Post, error)
	SearchAll(ctx context.Context, query string, maxResults int) ([]xapi.Post, error)
	HomeTimeline(ctx context.Context, opts xapi.TimelineOpts) ([]xapi.Post, error)
	UserPosts(ctx context.Context, userID string, maxResults int) ([]xapi.Post, error)
	Like(ctx context.Context, postID string) (bool, error)
	Unlike(ctx context.Context, postID string) (bool, error)
	Repost(ctx context.Context, postID string) (bool, error)
	Unrepost(ctx context.Context, postID string) (bool, error)
	Follow(ctx context.Context, targetUserID string) (xapi.FollowResult, error)
	Unfollow(ctx context.Context, targetUserID string) (xapi.FollowResult, error)
	Followers(ctx context.Context, userID string, maxResults int) ([]xapi.User, error)
	Following(ctx context.Context, userID string, maxResults int) ([]xapi.User, error)
}

// MediaUploader pushes a payload through the chunked upload protocol and
// returns the remote media identifier.
type MediaUploader interface {
	Upload(ctx context.Context, p upload.Payload) (string, error)
}

// Fetcher downloads media referenced by URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Server wraps an MCP server and the X API collaborators it dispatches to.
type Server struct {
	mcp    *mcpsrv.MCPServer
	api    API
	up     MediaUploader
	fetch  Fetcher
	logger *slog.Logger
}

// New creates a new MCP server dispatching to the given API client.  up and
// fetch serve the media attachment path of the post tool.  The server is
// populated with all available tools but does not start listening until one
// of the Serve* methods is called.
func New(api API, up MediaUploader, fetch Fetcher, lg *slog.Logger) *Server {
	if lg == nil {
		lg = slog.Default()
	}
	s := &Server{
		api:    api,
		up:     up,
		fetch:  fetch,
		logger: lg,
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithInstructions(instructions),
	)

	// Register all tools.
	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}

	s.mcp = mcpServer
	return s
}

// instructions describe the server to the connecting agent.
const instructions = `You are connected to a birdwire MCP server, a bridge to the X (Twitter) API.

Available tools allow you to:
- Look up the authenticated user and other users
- Read timelines, user posts and search results
- Publish posts (optionally with an image or video attached via URL), reply, and quote
- Like, unlike, repost and un-repost posts
- Follow and unfollow users, list followers and following

Write tools act as the authenticated user. Post IDs and user IDs are opaque decimal strings.`

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
// This is the standard transport used by local agent integrations.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// ServeHTTP runs the MCP server as a Streamable HTTP server on addr until
// ctx is cancelled.  addr should be a host:port string such as "127.0.0.1:8420".
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := &http.Server{Addr: addr}
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp,
		mcpsrv.WithStreamableHTTPServer(httpSrv),
	)

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := streamSrv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		if err := streamSrv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolGetMe(),
		s.toolPost(),
		s.toolReply(),
		s.toolDeletePost(),
		s.toolGetPost(),
		s.toolGetTimeline(),
		s.toolGetUserPosts(),
		s.toolSearchPosts(),
		s.toolSearchAllPosts(),
		s.toolLikePost(),
		s.toolUnlikePost(),
		s.toolRepost(),
		s.toolUnrepost(),
		s.toolGetUserByUsername(),
		s.toolGetUserByID(),
		s.toolFollowUser(),
		s.toolUnfollowUser(),
		s.toolGetFollowers(),
		s.toolGetFollowing(),
	}
}

// AddTool adds an additional tool to the MCP server.  This can be called
// after New but before serving starts.
func (s *Server) AddTool(tool mcpsrv.ServerTool) {
	s.mcp.AddTool(tool.Tool, tool.Handler)
}

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON is a helper that serialises v to JSON and returns a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg extracts a named int argument from a tool call request.  The MCP
// protocol serialises numbers as float64, so we convert accordingly.
func intArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return defaultVal
}
