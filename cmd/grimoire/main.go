package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/caarlos0/env/v11"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/fetch"
	"github.com/archerdnd/grimoire/fs"
	grimoirehttp "github.com/archerdnd/grimoire/http"
	"github.com/archerdnd/grimoire/session"
	grimoireslog "github.com/archerdnd/grimoire/slog"
	"github.com/archerdnd/grimoire/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config is populated from the environment in NewMain. Override
	// fields before calling Run() to redirect the cache or the remote.
	Config grimoire.Config

	// SQLite database backing the sync history journal.
	DB *sqlite.DB

	// Store is the file-backed content cache, opened by Run().
	Store *fs.Store
}

// NewMain returns a new instance of Main with configuration read from
// GRIMOIRE_* environment variables, defaults filled in.
func NewMain() *Main {
	var cfg grimoire.Config
	_ = env.Parse(&cfg)
	return &Main{Config: cfg.WithDefaults()}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Config: m.Config,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("grimoire"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'grimoire --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	// Open the content cache.
	var fsOpts []fs.Option
	if cli.AllowCorrupt {
		fsOpts = append(fsOpts, fs.WithAllowCorrupt())
	}
	m.Store = fs.NewStore(m.Config.CacheDir, fsOpts...)
	if err := m.Store.Open(); err != nil {
		if grimoire.ErrorCode(err) == grimoire.ECORRUPT {
			fmt.Fprintln(stderr, "Hint: Pass --allow-corrupt to start with the unreadable files skipped")
		}
		return fmt.Errorf("failed to open cache at %q: %w", m.Config.CacheDir, err)
	}
	for _, path := range m.Store.Corrupt() {
		fmt.Fprintf(stderr, "warning: skipping unreadable cache file %s\n", path)
	}

	store := grimoireslog.NewStore(m.Store, logger)
	deps.Store = m.Store
	deps.Tokens = grimoirehttp.NewTokenFile(m.Config.CacheDir)

	// The journal is optional; everything else works without it.
	if m.Config.HistoryDBPath != "" && m.Config.HistoryDBPath != grimoire.HistoryDisabled {
		m.DB = sqlite.NewDB(m.Config.HistoryDBPath)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open history db at %q: %w", m.Config.HistoryDBPath, err)
		}
		deps.History = sqlite.NewHistoryService(m.DB)
	}
	defer m.Close()

	clientOpts := []grimoirehttp.Option{grimoirehttp.WithTimeout(m.Config.Timeout)}
	if tok, err := deps.Tokens.Load(); err == nil {
		clientOpts = append(clientOpts, grimoirehttp.WithToken(tok.Access))
	}
	client := grimoirehttp.NewClient(m.Config.Endpoint, clientOpts...)
	deps.Auth = grimoirehttp.NewAuthClient(client, deps.Tokens)

	backoff := fetch.DefaultBackoff()
	backoff.MaxAttempts = m.Config.MaxRetries + 1
	syncer := &fetch.Syncer{
		Fetcher:     grimoireslog.NewFetcher(client, logger),
		Store:       store,
		Limiter:     fetch.NewLimiter(m.Config.RequestsPerMinute),
		MaxParallel: m.Config.MaxParallelKinds,
		Backoff:     backoff,
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if deps.History != nil {
		sessionOpts = append(sessionOpts, session.WithHistory(deps.History))
	}
	deps.Session = session.New(store, syncer, sessionOpts...)

	return kongCtx.Run(deps)
}
