// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package defaults implements the command that prints the default tracker tunables.
package defaults

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/optrack/internal/config"
	"github.com/urfave/cli/v3"
)

// DefaultsCmd prints the default tunables as YAML, ready to be edited and passed to run --config.
var DefaultsCmd = &cli.Command{
	Name:  "defaults",
	Usage: "Print the default tracker tunables as YAML",
	Description: `Print the default tracker tunables as YAML.
Save the output to a file, edit it and pass it to 'optrack run --config'.
Omitted keys keep their defaults.`,
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	data, err := config.Defaults()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to render defaults: %s", err.Error()), 1)
	}

	if _, err := cmd.Root().Writer.Write(data); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write defaults: %s", err.Error()), 1)
	}

	return nil
}
