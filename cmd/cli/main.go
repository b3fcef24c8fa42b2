// Command stitchloom is a local knitting/crochet project tracker.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/marileigh/stitchloom/internal/config"
	pkgcrypto "github.com/marileigh/stitchloom/internal/crypto"
	"github.com/marileigh/stitchloom/internal/kv"
	"github.com/marileigh/stitchloom/internal/limiter"
	"github.com/marileigh/stitchloom/internal/repository/kvstore"
	"github.com/marileigh/stitchloom/internal/service"
	"github.com/marileigh/stitchloom/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type app struct {
	log      *zap.Logger
	store    *kv.Store
	auth     service.AuthService
	projects service.ProjectService
}

func usage() {
	fmt.Fprintf(os.Stderr, `stitchloom %s (%s)

Usage: stitchloom <command> [flags]

Accounts:
  register   -email -password      create an account and log in
  login      -email -password      log in
  logout                           log out
  whoami                           show the logged-in account

Projects:
  add        -name [-yarn -needle -notes -pattern -image -counter ...]
  list       [-status all|done|wip] [-q query]
  show       -id
  edit       -id [-name -yarn -needle -notes -pattern]
  rm         -id
  complete   -id [-undo]
  image      -id -uri
  counter    -id -index [-field rows|stitches] [-dec]
  reset                            delete all projects

`, version, buildDate)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	a, closeStore, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup", zap.Error(err))
	}
	defer closeStore()

	if err := dispatch(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

// buildApp wires the store, repositories, and services. Everything shares one
// kv namespace, constructed here and passed down by handle.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, func(), error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("data dir: %w", err)
	}

	signKey, err := loadOrCreateKey(filepath.Join(cfg.DataDir, "session.key"))
	if err != nil {
		return nil, nil, fmt.Errorf("session key: %w", err)
	}

	store, err := kv.Open(ctx, cfg.DBPath(), logger)
	if err != nil {
		return nil, nil, err
	}

	projectRepo := kvstore.NewProjectRepo(store)
	if err := projectRepo.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	userRepo := kvstore.NewUserRepo(store)

	sessions := session.NewManager(store, signKey, cfg.SessionTTL)
	lim := limiter.NewKV(store, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginLockFor)

	a := &app{
		log:      logger,
		store:    store,
		auth:     service.NewAuthService(userRepo, sessions, lim),
		projects: service.NewProjectService(projectRepo, sessions),
	}
	return a, func() { _ = store.Close() }, nil
}

// loadOrCreateKey returns the HS256 signing key, generating one on first run.
func loadOrCreateKey(path string) ([]byte, error) {
	if b, err := os.ReadFile(path); err == nil && len(b) >= 32 {
		return b, nil
	}
	key, err := pkgcrypto.RandBytes(32)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

func dispatch(ctx context.Context, a *app, cmd string, args []string) error {
	switch cmd {
	case "register":
		return cmdRegister(ctx, a, args)
	case "login":
		return cmdLogin(ctx, a, args)
	case "logout":
		return a.auth.Logout(ctx)
	case "whoami":
		return cmdWhoami(ctx, a)
	case "add":
		return cmdAdd(ctx, a, args)
	case "list":
		return cmdList(ctx, a, args)
	case "show":
		return cmdShow(ctx, a, args)
	case "edit":
		return cmdEdit(ctx, a, args)
	case "rm":
		return cmdRemove(ctx, a, args)
	case "complete":
		return cmdComplete(ctx, a, args)
	case "image":
		return cmdImage(ctx, a, args)
	case "counter":
		return cmdCounter(ctx, a, args)
	case "reset":
		return a.projects.Reset(ctx)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}
