// console-shell is the operator-side session host of the ops console. It
// resolves the stored credential against the gateway's identity endpoint,
// keeps the session fresh and prints the navigation the session's role may
// see.
//
// Usage:
//
//	console-shell login --token TOKEN   store a bearer credential
//	console-shell status                resolve once and print navigation
//	console-shell watch                 print navigation on every change
//	console-shell logout                clear the session and credential
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/upb/ops-console/config"
	"github.com/upb/ops-console/credentials"
	"github.com/upb/ops-console/internal/observability"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var token string

	flagSet := pflag.NewFlagSet("console-shell", pflag.ContinueOnError)
	flagSet.StringVar(&token, "token", "", "bearer credential to store (login)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	command := "status"
	if flagSet.NArg() > 0 {
		command = flagSet.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewShell(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := credentials.NewFileStore(cfg.Session.CredentialsDir)
	if err != nil {
		return err
	}

	sh := newShell(cfg, store, nil, os.Stdout, logger)

	switch command {
	case "login":
		return sh.Login(token)
	case "status":
		return sh.Status(ctx)
	case "watch":
		return sh.Watch(ctx)
	case "logout":
		return sh.Logout(ctx)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
