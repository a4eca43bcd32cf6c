// Command birdwire starts an MCP server that exposes the X (Twitter) API as
// tools for AI agents.
//
// Credentials are taken from the X_BEARER_TOKEN environment variable or the
// -token flag.  A .env file in the working directory is loaded automatically.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"

	"github.com/birdwire/birdwire/internal/fetch"
	"github.com/birdwire/birdwire/internal/mcp"
	"github.com/birdwire/birdwire/internal/upload"
	"github.com/birdwire/birdwire/internal/xapi"
)

var build = "dev"

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

// params is the command line parameters.
type params struct {
	token     string
	transport string
	listen    string
	chunkSize int

	verbose      bool
	printVersion bool
}

func main() {
	loadSecrets(secrets)

	p, err := parseCmdLine(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if p.printVersion {
		fmt.Println(build)
		return
	}

	// Logs go to stderr: with the stdio transport, stdout carries JSON-RPC.
	lvl := slog.LevelInfo
	if p.verbose {
		lvl = slog.LevelDebug
	}
	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, lg, p); err != nil {
		lg.ErrorContext(ctx, "fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *slog.Logger, p params) error {
	if p.token == "" {
		return fmt.Errorf("no token: set X_BEARER_TOKEN or pass -token")
	}

	api, err := xapi.New(p.token)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	up, err := upload.New(p.token,
		upload.WithChunkSize(p.chunkSize),
		upload.WithLogger(lg),
	)
	if err != nil {
		return fmt.Errorf("upload client: %w", err)
	}

	srv := mcp.New(api, up, fetch.New(lg), lg)

	switch strings.ToLower(p.transport) {
	case "stdio", "":
		return srv.ServeStdio(ctx)
	case "http":
		return srv.ServeHTTP(ctx, p.listen)
	default:
		return fmt.Errorf("unknown transport %q (use \"stdio\" or \"http\")", p.transport)
	}
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// parseCmdLine parses the command line arguments.
func parseCmdLine(args []string) (params, error) {
	fs := flag.NewFlagSet("birdwire", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			flag.CommandLine.Output(),
			"birdwire %s\n"+
				"MCP server for the X (Twitter) API: posting (with media), timelines,\n"+
				"search, likes, reposts and follows.\n\n"+
				"Usage:  %s [flags]\n\n",
			build, filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}

	var p params
	fs.StringVar(&p.token, "token", osenv.Secret("X_BEARER_TOKEN", ""), "X API bearer `token` (environment: X_BEARER_TOKEN)")
	fs.StringVar(&p.transport, "transport", "stdio", "MCP transport: \"stdio\" or \"http\"")
	fs.StringVar(&p.listen, "listen", "127.0.0.1:8420", "address to listen on when -transport=http")
	fs.IntVar(&p.chunkSize, "chunk-size", osenv.Value("CHUNK_SIZE", upload.DefaultChunkSize), "media upload segment size in `bytes`")
	fs.BoolVar(&p.verbose, "v", osenv.Value("DEBUG", false), "verbose messages")
	fs.BoolVar(&p.printVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return p, err
	}
	return p, nil
}
