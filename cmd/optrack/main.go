// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the optrack command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/optrack"
	"github.com/matt-FFFFFF/optrack/cmd/optrack/cmdstate"
	"github.com/matt-FFFFFF/optrack/cmd/optrack/defaults"
	"github.com/matt-FFFFFF/optrack/cmd/optrack/run"
	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		defaults.DefaultsCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "optrack",
	Description: `optrack runs long operations, such as remote commands over SSH, under a
progress tracker. Progress is estimated against the expected duration, an
indeterminate indicator takes over once the estimate is exceeded, and the
operation can be cancelled cooperatively.`,
	Usage:     "optrack run --timeout 30s -- ssh host uptime",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	target := &cmdstate.CancelTarget{}
	ctx = cmdstate.WithCancelTarget(ctx, target)

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, func(sig os.Signal) {
		target.Press(ctx, sig)
	}, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", optrack.Version, optrack.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
