// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client declares the abstract I/O collaborator the engine logs
// and errors through (spec §2, §4: "Client — abstract I/O: log, error,
// prompt, confirm"). A default terminal implementation lives alongside it,
// grounded on the teacher's own TTY-detection helpers.
package client

import (
	"context"

	"github.com/morganforge/clix/prompt"
)

// Level is the severity of a Log call.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Client is the engine's one door to the outside world for anything a
// handler, hook, or the run facade needs to tell a human or ask of one.
type Client interface {
	// Log writes a message at level. Info-level messages are the normal
	// path; Warn/Error are used by Context.Exit and uncaught-error
	// reporting.
	Log(level Level, message string)

	// Error reports err to the user and marks it as having been
	// presented — Run uses this to decide whether an error becomes a
	// ClientError (already printed) or is rethrown for the caller to
	// print itself.
	Error(err error)

	// Prompt asks req through the configured prompt.Transport and returns
	// the typed answer.
	Prompt(ctx context.Context, req prompt.Request) (any, error)

	// Confirm is a convenience wrapper over Prompt for the common
	// yes/no case.
	Confirm(ctx context.Context, message string, initial bool) (bool, error)
}
