package main

import (
	"context"
	"io"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/fs"
	grimoirehttp "github.com/archerdnd/grimoire/http"
	"github.com/archerdnd/grimoire/session"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Config  grimoire.Config
	Store   *fs.Store
	Session *session.Controller
	History grimoire.HistoryService
	Auth    *grimoirehttp.AuthClient
	Tokens  *grimoirehttp.TokenFile
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose      bool `short:"v" help:"Log engine activity to stderr"`
	AllowCorrupt bool `help:"Tolerate unreadable cache files instead of refusing to start"`

	Sync    SyncCmd    `cmd:"" help:"Fetch official content into the local cache"`
	Search  SearchCmd  `cmd:"" help:"Search the cached content"`
	Show    ShowCmd    `cmd:"" help:"Show one entry in full"`
	Brew    BrewCmd    `cmd:"" help:"Manage homebrew content"`
	History HistoryCmd `cmd:"" help:"Show past syncs"`
	Cache   CacheCmd   `cmd:"" help:"Manage the local cache"`
	Login    LoginCmd    `cmd:"" help:"Log in to the remote source"`
	Logout   LogoutCmd   `cmd:"" help:"Log out and discard the saved token"`
	Register RegisterCmd `cmd:"" help:"Create an account on the remote source"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	Kinds []string `arg:"" optional:"" help:"Kinds to sync (default: all)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query  string   `arg:"" optional:"" help:"Name or tag to search for"`
	Kind   string   `short:"k" help:"Restrict to one kind"`
	Tag    []string `short:"t" help:"Require one of these tags (repeatable)"`
	Origin string   `help:"Restrict to an origin (official or homebrew)"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Entry identifier, e.g. spell/fireball"`
}

// BrewCmd groups the homebrew subcommands.
type BrewCmd struct {
	Add  BrewAddCmd  `cmd:"" help:"Add or replace a homebrew entry"`
	Rm   BrewRmCmd   `cmd:"" help:"Remove a homebrew entry"`
	List BrewListCmd `cmd:"" help:"List homebrew entries"`
}

// BrewAddCmd is the "brew add" subcommand.
type BrewAddCmd struct {
	Kind    string   `arg:"" help:"Content kind, e.g. spell"`
	Name    string   `arg:"" help:"Entry name"`
	Payload string   `short:"p" help:"Path to a JSON payload file (default: empty object)"`
	Tag     []string `short:"t" help:"Tag the entry (repeatable)"`
}

// BrewRmCmd is the "brew rm" subcommand.
type BrewRmCmd struct {
	ID string `arg:"" help:"Entry identifier, e.g. spell/fireball"`
}

// BrewListCmd is the "brew list" subcommand.
type BrewListCmd struct{}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Number of syncs to show"`
}

// CacheCmd groups the cache subcommands.
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Drop cached official content"`
	Size  CacheSizeCmd  `cmd:"" help:"Report how much disk the cache uses"`
}

// CacheSizeCmd is the "cache size" subcommand.
type CacheSizeCmd struct{}

// CacheClearCmd is the "cache clear" subcommand.
type CacheClearCmd struct {
	Kind string `arg:"" optional:"" help:"Kind to clear (default: all)"`
}

// LoginCmd is the "login" subcommand.
type LoginCmd struct {
	Username string `arg:"" help:"Account username"`
	Password string `env:"GRIMOIRE_PASSWORD" help:"Account password (or set GRIMOIRE_PASSWORD)"`
}

// LogoutCmd is the "logout" subcommand.
type LogoutCmd struct{}

// RegisterCmd is the "register" subcommand.
type RegisterCmd struct {
	Username string `arg:"" help:"Desired username"`
	Password string `env:"GRIMOIRE_PASSWORD" help:"Account password (or set GRIMOIRE_PASSWORD)"`
}
