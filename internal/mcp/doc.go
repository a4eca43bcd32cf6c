// Package mcp implements a Model Context Protocol (MCP) server that exposes
// the X (Twitter) API as tools an AI agent can call: reading profiles,
// timelines and search results, publishing, liking and reposting posts, and
// managing follows.  Posting tools accept an optional media URL; the media
// is downloaded and pushed through the chunked upload client before the post
// is created.
//
// Transport: the server supports two transports selectable at runtime:
//   - stdio  – standard MCP stdio transport (default); suitable for local
//     agent integration (e.g. Claude Desktop, VS Code Copilot).
//   - http   – Streamable HTTP transport; suitable for remote agents or when
//     multiple concurrent clients are needed.
package mcp
