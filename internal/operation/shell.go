// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package operation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
)

// DefaultKillGrace is how long a cancelled command has to exit after being
// interrupted before it is killed.
const DefaultKillGrace = 10 * time.Second

// ShellCommand describes an external command run as an operation.
type ShellCommand struct {
	Path      string            // The command to run, looked up in PATH when not absolute.
	Args      []string          // Arguments, not including the command itself.
	Dir       string            // Working directory, defaults to the current one.
	Env       map[string]string // Extra environment variables.
	Stdout    io.Writer         // Defaults to discarding output.
	Stderr    io.Writer         // Defaults to discarding output.
	KillGrace time.Duration     // Defaults to DefaultKillGrace.
}

// Shell returns a Func that runs name with args, discarding its output.
func Shell(name string, args ...string) Func {
	return (&ShellCommand{Path: name, Args: args}).Func()
}

// Func returns the command as an operation function.
// On cancellation the process is interrupted, then killed after KillGrace.
func (c *ShellCommand) Func() Func {
	return func(ctx context.Context, _ Step) error {
		logger := ctxlog.Logger(ctx).With("command", c.Path)

		cmd := exec.CommandContext(ctx, c.Path, c.Args...)
		cmd.Dir = c.Dir
		cmd.Stdout = c.Stdout
		cmd.Stderr = c.Stderr
		cmd.WaitDelay = c.KillGrace

		if cmd.WaitDelay <= 0 {
			cmd.WaitDelay = DefaultKillGrace
		}

		if len(c.Env) > 0 {
			cmd.Env = os.Environ()
			for k, v := range c.Env {
				cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
			}
		}

		cmd.Cancel = func() error {
			logger.Info("context done, interrupting process")

			if err := cmd.Process.Signal(os.Interrupt); err != nil {
				logger.Debug("interrupt failed, killing process", "error", err)
				return cmd.Process.Kill()
			}

			return nil
		}

		logger.Debug("starting process", "args", c.Args, "cwd", c.Dir)

		if err := cmd.Start(); err != nil {
			return errors.Join(ErrCouldNotStartProcess, err)
		}

		logger.Debug("process started", "pid", cmd.Process.Pid)

		if err := cmd.Wait(); err != nil {
			if ctx.Err() != nil {
				return errors.Join(ctx.Err(), err)
			}

			return errors.Join(ErrCommandFailed, err)
		}

		return nil
	}
}
