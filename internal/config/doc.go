// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads tracker tunables from YAML.
//
// Durations are written as Go duration strings, e.g. "100ms" or "5m".
// Omitted keys keep their defaults. Files are read through FsFactory, and
// remote files are fetched with go-getter URLs.
package config
