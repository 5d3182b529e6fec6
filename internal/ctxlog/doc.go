// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger built on log/slog.
//
// The logger travels on the context so that every worker, retry and session
// operation logs with the attributes of the dispatch it belongs to.
// The default is a pretty console handler that formats log messages in a human-readable way.
// The level is read from the MPCLI_LOG_LEVEL environment variable.
package ctxlog
