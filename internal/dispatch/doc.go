// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch logs in once, splits the inputs into groups and runs one
// worker process per group in parallel, retrying failed workers.
//
// In cli mode each worker runs the client CLI:
//
//	<client> <common...> [-s server -p port -k key] <group...>
//
// In script mode each worker runs the script:
//
//	<script> process <common...> -- <group...>
//
// and when no inputs are given the script is asked for them first with
// `<script> get <common...>`, one input per line of its output.
//
// Every worker receives the session through MPCLI_* environment variables.
package dispatch
