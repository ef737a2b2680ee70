// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the command that runs an external command as a tracked operation.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matt-FFFFFF/optrack/cmd/optrack/cmdstate"
	"github.com/matt-FFFFFF/optrack/internal/config"
	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/operation"
	"github.com/matt-FFFFFF/optrack/internal/progress"
	"github.com/matt-FFFFFF/optrack/internal/teereader"
	"github.com/matt-FFFFFF/optrack/internal/tracker"
	"github.com/matt-FFFFFF/optrack/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	timeoutFlag        = "timeout"
	configFlag         = "config"
	tuiFlag            = "tui"
	hideFlag           = "hide"
	confirmFlag        = "confirm"
	labelFlag          = "label"
	reporterBufferSize = 16
	outputLineWidth    = 72
	cliExitStr         = ""
)

var (
	// ErrNoCommand is returned when no command is given after the flags.
	ErrNoCommand = errors.New("no command given, usage: optrack run [flags] -- CMD [ARGS...]")
	// ErrIncompatibleFlags is returned when --confirm is combined with --tui.
	ErrIncompatibleFlags = errors.New("--confirm cannot be used with --tui")
)

// RunCmd runs an external command under a progress tracker.
var RunCmd = NewRunCmd()

// NewRunCmd builds the run command with fresh flag state.
func NewRunCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a command with progress estimation and cancellation",
		Description: `Run a command as a tracked operation.
Progress is estimated against the expected duration given by --timeout.
Once the estimate is exceeded the indicator becomes indeterminate.

The first interrupt asks the command to stop; a second one terminates optrack.
In the TUI, press 'c' or esc to cancel.

Tunables are read from --config, which accepts a local path or a
Hashicorp go-getter URL. See 'optrack defaults' for the format.`,
		ArgsUsage: "-- CMD [ARGS...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    timeoutFlag,
				Aliases: []string{"t"},
				Usage:   "Expected duration of the command. Defaults to the configured default_timeout",
				Value:   0,
			},
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Path or go-getter URL of a YAML file with tracker tunables",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:     labelFlag,
				Aliases:  []string{"l"},
				Usage:    "Label shown for the operation. Defaults to the command line",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:        tuiFlag,
				Aliases:     []string{"interactive"},
				Usage:       "Show an interactive progress bar",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        hideFlag,
				Usage:       "Hide the indicator shortly after the command finishes",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        confirmFlag,
				Usage:       "Ask for confirmation before running the command",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return cli.Exit(ErrNoCommand.Error(), 1)
	}

	if cmd.Bool(confirmFlag) && cmd.Bool(tuiFlag) {
		return cli.Exit(ErrIncompatibleFlags.Error(), 1)
	}

	cfg, err := config.Resolve(ctx, cmd.String(configFlag))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load configuration: %s", err.Error()), 1)
	}

	label := cmd.String(labelFlag)
	if label == "" {
		label = strings.Join(args, " ")
	}

	shell := &operation.ShellCommand{
		Path: args[0],
		Args: args[1:],
	}

	var fn operation.Func = shell.Func()
	if cmd.Bool(confirmFlag) {
		fn = confirmFunc(label, fn)
	}

	opts := []operation.Option{
		operation.WithTrackerOptions(tracker.WithConfig(cfg)),
	}

	if cmd.Bool(hideFlag) {
		opts = append(opts, operation.WithHideOnComplete())
	}

	inv := &invocation{
		label:   label,
		timeout: cmd.Duration(timeoutFlag),
		cfg:     cfg,
		shell:   shell,
		fn:      fn,
		opts:    opts,
		target:  cmdstate.CancelTargetFrom(ctx),
	}

	defer inv.target.Set(nil)

	root := cmd.Root()

	var runErr error

	switch cmd.Bool(tuiFlag) {
	case true:
		logger.Info("Starting interactive TUI mode...")

		runErr = inv.runTUI(ctx, root.Writer, root.ErrWriter)
	default:
		shell.Stdout = root.Writer
		shell.Stderr = root.ErrWriter

		runErr = inv.runHeadless(ctx)
	}

	if runErr != nil {
		logger.Error(fmt.Sprintf("Operation %q failed: %s", label, runErr.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	logger.Info(fmt.Sprintf("Operation %q completed", label))

	return nil
}

// invocation is one tracked run of an external command.
type invocation struct {
	label   string
	timeout time.Duration
	cfg     tracker.Config
	shell   *operation.ShellCommand
	fn      operation.Func
	opts    []operation.Option
	target  *cmdstate.CancelTarget
}

// runHeadless drives a LogSink from the ChannelReporter's listener goroutine.
func (inv *invocation) runHeadless(ctx context.Context) error {
	reporter := progress.NewChannelReporter(ctx, reporterBufferSize)
	reporter.Listen(progress.SinkListener(progress.NewLogSink(ctxlog.Logger(ctx).With("operation", inv.label))))

	defer reporter.Close()

	op := operation.New(inv.label, inv.timeout, inv.fn, reporter, inv.opts...)
	inv.target.Set(op.Cancel)

	return op.Run(ctx)
}

// runTUI runs the operation under the bubbletea front end. Logs and command
// output are buffered while the TUI owns the terminal and written afterwards.
func (inv *invocation) runTUI(ctx context.Context, stdout, stderr io.Writer) error {
	logBuf := new(bytes.Buffer)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	latest := teereader.NewLastLineWriter()

	inv.shell.Stdout = io.MultiWriter(outBuf, latest)
	inv.shell.Stderr = io.MultiWriter(errBuf, latest)

	tuiCtx := ctxlog.NewForTUI(ctx, logBuf)
	runner := tui.NewRunner(tuiCtx, inv.label, inv.cfg.ScaleMax, []tui.ModelOption{
		tui.WithOutputSource(func() string { return latest.LastLine(outputLineWidth) }),
	})

	op := operation.New(inv.label, inv.timeout, inv.fn, runner.Reporter(), inv.opts...)
	inv.target.Set(op.Cancel)

	err := runner.Run(tuiCtx, op)

	outBuf.WriteTo(stdout) //nolint:errcheck
	errBuf.WriteTo(stderr) //nolint:errcheck
	logBuf.WriteTo(stderr) //nolint:errcheck

	return err
}
