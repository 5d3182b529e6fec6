// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session logs in to the object server once and describes the resulting
// session so that every worker process can reuse it.
//
// A Session is handed to workers explicitly, either as command line arguments
// (see Session.LoginArgs) or as environment variables (see Session.Env).
// The production Client, ExecClient, drives the server's own command line client.
package session
