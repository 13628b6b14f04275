// Package main is the entry point for the notion-export CLI tool.
//
// notion-export prints a Notion page as Markdown (or HTML) to stdout, using
// the same conversion as the notion2md server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/maruel/notion2md/internal/mdhtml"
	"github.com/maruel/notion2md/internal/notion"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Getenv); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "notion-export: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("notion-export", flag.ContinueOnError)
	token := fs.String("token", "", "Notion integration token (required, or set NOTION_TOKEN)")
	asHTML := fs.Bool("html", false, "Print HTML instead of Markdown")
	maxDepth := fs.Int("max-depth", 1, "Levels of nested blocks to fetch (0=unlimited, 1=page only)")
	output := fs.String("o", "", "Write to this file instead of stdout")
	baseURL := fs.String("base-url", notion.BaseURL, "Notion API base URL")
	verbose := fs.Bool("v", false, "Log API calls to stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: notion-export [flags] <page url>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one page URL")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	if *token == "" {
		*token = getenv("NOTION_TOKEN")
	}
	if *token == "" {
		return errors.New("-token or NOTION_TOKEN environment variable is required")
	}
	rawID, err := notion.ExtractPageID(fs.Arg(0))
	if err != nil {
		return err
	}
	pageID, err := notion.CanonicalID(rawID)
	if err != nil {
		return err
	}

	client := notion.NewClientWithOptions(*token, notion.Options{BaseURL: *baseURL})
	slog.DebugContext(ctx, "Fetching page", "page", pageID, "maxDepth", *maxDepth)
	blocks, err := client.GetBlockChildrenRecursive(ctx, pageID, *maxDepth)
	if err != nil {
		return fmt.Errorf("failed to fetch page %s: %w", pageID, err)
	}
	out := notion.BlocksToMarkdown(blocks)
	if *asHTML {
		if out, err = mdhtml.Render(out); err != nil {
			return err
		}
	}
	slog.DebugContext(ctx, "Converted page", "blocks", len(blocks), "bytes", len(out))

	if *output != "" {
		return os.WriteFile(*output, []byte(out), 0o644) //nolint:gosec // G306: exported documents are not secret
	}
	_, err = io.WriteString(stdout, out)
	return err
}
