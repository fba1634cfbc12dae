package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/refit/internal/config"
	"github.com/dusk-indust/refit/internal/mcptools"
	"github.com/dusk-indust/refit/internal/rules"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Root      string
	Check     bool
	Strict    bool
	Rules     string
	HistoryDB string
	ListRules bool
	History   bool
	ServeMCP  bool
	MCPAddr   string
	Verbose   bool
	Version   bool
	Paths     []string
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("refit", flag.ContinueOnError)
	fs.StringVar(&flags.Root, "root", ".", "path to the workspace to format")
	fs.BoolVar(&flags.Check, "check", false, "report diagnostics without modifying any file")
	fs.BoolVar(&flags.Strict, "strict", false, "treat warning diagnostics as errors")
	fs.StringVar(&flags.Rules, "rules", "", "comma-separated rule names (default: all, in precedence order)")
	fs.StringVar(&flags.HistoryDB, "history-db", "", "path of the run-history database")
	fs.BoolVar(&flags.ListRules, "list-rules", false, "print registered rules and exit")
	fs.BoolVar(&flags.History, "history", false, "print recent format runs and exit")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server exposing the format tools")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "127.0.0.1:8731", "listen address for the MCP server")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable per-phase progress output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	flags.Paths = fs.Args()

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.Root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.HistoryDB == "" {
		flags.HistoryDB = cfg.HistoryDB
	}
	if cfg.Verbose {
		flags.Verbose = true
	}
	if cfg.TreatWarningsAsErrors {
		flags.Strict = true
	}

	logger := newLogger(flags.Verbose)
	registry := rules.NewRegistry()

	switch {
	case flags.ListRules:
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return nil

	case flags.History:
		return runHistory(flags.HistoryDB)

	case flags.ServeMCP:
		ctx, stop := signalContext()
		defer stop()
		svc := mcptools.NewFormatService(registry, logger)
		logger.Info("serving MCP format tools", "addr", flags.MCPAddr)
		return mcptools.RunMCPServer(ctx, svc, flags.MCPAddr, version)

	default:
		ctx, stop := signalContext()
		defer stop()
		return runFormat(ctx, flags, cfg, registry, logger)
	}
}

// newLogger builds the process logger. Verbose mode lowers the level to debug.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
