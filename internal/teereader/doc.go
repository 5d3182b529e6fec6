// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a reader that passes data through unchanged while
// splitting it into lines, so worker output can be streamed to the progress
// display as it arrives and still be captured in full.
package teereader
