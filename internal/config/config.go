// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/tracker"
	"github.com/spf13/afero"
)

var (
	// ErrInvalidConfig is returned when the YAML is malformed or a value fails validation.
	ErrInvalidConfig = errors.New("invalid tracker configuration")
	// ErrReadConfig is returned when a configuration file cannot be read.
	ErrReadConfig = errors.New("failed to read configuration file")
	// ErrFetchConfig is returned when a configuration URL cannot be fetched.
	ErrFetchConfig = errors.New("failed to fetch configuration file")
	// ErrInvalidValue is returned for each field that fails validation.
	ErrInvalidValue = errors.New("invalid value")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// File is the YAML representation of tracker.Config.
type File struct {
	TickInterval      string `yaml:"tick_interval,omitempty"`
	DisplayDelay      string `yaml:"display_delay,omitempty"`
	WatchdogThreshold string `yaml:"watchdog_threshold,omitempty"`
	HideDelay         string `yaml:"hide_delay,omitempty"`
	ScaleMax          int    `yaml:"scale_max,omitempty"`
	DefaultTimeout    string `yaml:"default_timeout,omitempty"`
}

// FromConfig converts tunables into their YAML representation.
func FromConfig(c tracker.Config) File {
	return File{
		TickInterval:      c.TickInterval.String(),
		DisplayDelay:      c.DisplayDelay.String(),
		WatchdogThreshold: c.WatchdogThreshold.String(),
		HideDelay:         c.HideDelay.String(),
		ScaleMax:          c.ScaleMax,
		DefaultTimeout:    c.DefaultTimeout.String(),
	}
}

// Config validates f and converts it to tunables with defaults applied.
// All invalid fields are reported together.
func (f File) Config() (tracker.Config, error) {
	var (
		c    tracker.Config
		merr *multierror.Error
	)

	for _, d := range []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"tick_interval", f.TickInterval, &c.TickInterval},
		{"display_delay", f.DisplayDelay, &c.DisplayDelay},
		{"watchdog_threshold", f.WatchdogThreshold, &c.WatchdogThreshold},
		{"hide_delay", f.HideDelay, &c.HideDelay},
		{"default_timeout", f.DefaultTimeout, &c.DefaultTimeout},
	} {
		if d.value == "" {
			continue
		}

		v, err := time.ParseDuration(d.value)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", ErrInvalidValue, d.key, err))
			continue
		}

		if v <= 0 {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s: must be positive, got %q", ErrInvalidValue, d.key, d.value))
			continue
		}

		*d.dst = v
	}

	if f.ScaleMax < 0 {
		merr = multierror.Append(merr, fmt.Errorf("%w: scale_max: must be positive, got %d", ErrInvalidValue, f.ScaleMax))
	}

	c.ScaleMax = f.ScaleMax

	if err := merr.ErrorOrNil(); err != nil {
		return tracker.Config{}, errors.Join(ErrInvalidConfig, err)
	}

	return c.WithDefaults(), nil
}

// Parse decodes YAML tunables. Unknown keys are rejected.
func Parse(data []byte) (tracker.Config, error) {
	var f File

	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return tracker.Config{}, errors.Join(ErrInvalidConfig, err)
	}

	return f.Config()
}

// Load reads and parses a YAML file from the FsFactory filesystem.
func Load(path string) (tracker.Config, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return tracker.Config{}, errors.Join(ErrReadConfig, err)
	}

	return Parse(data)
}

// Fetch retrieves a YAML file by go-getter URL and parses it.
func Fetch(ctx context.Context, url string) (tracker.Config, error) {
	data, err := getURL(ctx, url)
	if err != nil {
		return tracker.Config{}, err
	}

	return Parse(data)
}

// Resolve returns the tunables named by src. An empty src gives the defaults,
// a path that exists on the FsFactory filesystem is loaded, anything else is
// treated as a go-getter URL.
func Resolve(ctx context.Context, src string) (tracker.Config, error) {
	logger := ctxlog.Logger(ctx).With("config", src)

	if src == "" {
		logger.Debug("no configuration given, using defaults")
		return tracker.DefaultConfig(), nil
	}

	if _, err := FsFactory().Stat(src); err == nil {
		logger.Debug("loading configuration from file")
		return Load(src)
	} else if !errors.Is(err, os.ErrNotExist) {
		return tracker.Config{}, errors.Join(ErrReadConfig, err)
	}

	logger.Debug("fetching configuration from url")

	return Fetch(ctx, src)
}

// Defaults returns the default tunables as YAML.
func Defaults() ([]byte, error) {
	return yaml.Marshal(FromConfig(tracker.DefaultConfig()))
}
