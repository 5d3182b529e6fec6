// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads dispatch profiles.
//
// A profile holds default values for the dispatch flags so that a team can
// share server and tuning settings. Profiles are fetched with go-getter, so
// the location may be a local path, a git repository or an HTTP URL, and are
// decoded by file extension:
//
//   - .yaml and .yml files are YAML;
//   - .hcl files are HCL, where env.NAME refers to an environment variable.
//
// For example:
//
//	server    = "omero.example.org"
//	user      = env.USER
//	groupsize = 50
//	threads   = 8
//	tries     = 3
//
// Passwords are never read from a profile; a password key is an error.
//
// Settings are resolved in the order flag, profile, built-in default.
package config
